package request

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/sirupsen/logrus"

	"core/internal/store"
)

// Check-in codes are short and human-typable; the alphabet drops the
// characters guests confuse at a reception desk (0/O, 1/I/L).
const (
	codeAlphabet    = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	codeLength      = 6
	maxCodeAttempts = 10
)

// ErrCodeSpaceExhausted means ten generated codes in a row collided.
// Surfacing this loudly beats silently issuing a duplicate that breaks
// the one-code-one-booking lookup invariant.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique check-in code")

// AssignCheckInCode allocates a fresh code for a booking and records it
// in the by-code index.
func (s *Service) AssignCheckInCode(ctx context.Context, bookingID string) (string, error) {
	if bookingID == "" {
		return "", &ValidationError{Msg: "bookingId is required"}
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.newCode()

		var existing string
		found, err := s.Store.Get(ctx, store.CheckInCodePath(code), &existing)
		if err != nil {
			return "", err
		}
		if found {
			logrus.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"code":    code,
			}).Warn("Check-in code collision, regenerating")
			continue
		}

		if err := s.Store.Set(ctx, store.CheckInCodePath(code), bookingID); err != nil {
			return "", err
		}
		return code, nil
	}

	logrus.WithField("booking_id", bookingID).Error("Exhausted check-in code attempts")
	return "", ErrCodeSpaceExhausted
}

func randomCode() string {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic(err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}
