// Package queue implements the messaging-queue core: failure
// classification, the pure record processor and the dispatching
// orchestration around the store.
package queue

import "errors"

// Class separates delivery failures that are worth retrying from those
// that never will succeed.
type Class string

const (
	ClassTransient Class = "transient"
	ClassPermanent Class = "permanent"
)

// Classifier maps a delivery failure to a Class. Injectable so tests
// and other delivery channels can override the default.
type Classifier func(err error) Class

// Failure metadata is duck-typed through small interfaces so the
// classifier stays decoupled from any one transport's error type.
type permanentError interface {
	IsPermanent() bool
}

type codedError interface {
	ErrorCode() string
}

type statusError interface {
	StatusCode() int
}

// Error codes providers use for failures no retry can fix.
var terminalCodes = map[string]bool{
	"invalid_payload":   true,
	"permission_denied": true,
	"unauthorized":      true,
	"forbidden":         true,
}

// Classify applies the default policy: an explicit permanent flag, a
// recognized terminal code, or a 4xx status other than 429 is
// permanent; everything else (network faults, 5xx, 429, unknown
// shapes) is transient.
func Classify(err error) Class {
	if err == nil {
		return ClassTransient
	}

	var perm permanentError
	if errors.As(err, &perm) && perm.IsPermanent() {
		return ClassPermanent
	}

	var coded codedError
	if errors.As(err, &coded) && terminalCodes[coded.ErrorCode()] {
		return ClassPermanent
	}

	var status statusError
	if errors.As(err, &status) {
		if code := status.StatusCode(); code >= 400 && code < 500 && code != 429 {
			return ClassPermanent
		}
	}

	return ClassTransient
}
