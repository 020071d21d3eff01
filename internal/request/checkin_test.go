package request

import (
	"context"
	"errors"
	"strings"
	"testing"

	"core/internal/store"
)

func TestAssignCheckInCode(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.AssignCheckInCode(ctx, "BOOK-42")
	if err != nil {
		t.Fatalf("AssignCheckInCode: %v", err)
	}
	if len(code) != codeLength {
		t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
	}

	var owner string
	found, err := st.Get(ctx, store.CheckInCodePath(code), &owner)
	if err != nil || !found {
		t.Fatalf("read code index: found=%v err=%v", found, err)
	}
	if owner != "BOOK-42" {
		t.Fatalf("code %q maps to %q, want BOOK-42", code, owner)
	}
}

func TestAssignCheckInCodeRetriesOnCollision(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()

	if err := st.Set(ctx, store.CheckInCodePath("AAAAAA"), "BOOK-1"); err != nil {
		t.Fatalf("seed colliding code: %v", err)
	}

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	svc.newCode = func() string {
		next := codes[0]
		codes = codes[1:]
		return next
	}

	code, err := svc.AssignCheckInCode(ctx, "BOOK-42")
	if err != nil {
		t.Fatalf("AssignCheckInCode: %v", err)
	}
	if code != "BBBBBB" {
		t.Fatalf("code = %q, want the first non-colliding candidate", code)
	}

	// The original owner keeps its code.
	var owner string
	if _, err := st.Get(ctx, store.CheckInCodePath("AAAAAA"), &owner); err != nil {
		t.Fatalf("read original code: %v", err)
	}
	if owner != "BOOK-1" {
		t.Fatalf("original code now maps to %q", owner)
	}
}

func TestAssignCheckInCodeExhaustsAttempts(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()

	if err := st.Set(ctx, store.CheckInCodePath("CCCCCC"), "BOOK-1"); err != nil {
		t.Fatalf("seed colliding code: %v", err)
	}

	attempts := 0
	svc.newCode = func() string {
		attempts++
		return "CCCCCC"
	}

	_, err := svc.AssignCheckInCode(ctx, "BOOK-42")
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("err = %v, want ErrCodeSpaceExhausted", err)
	}
	if attempts != maxCodeAttempts {
		t.Fatalf("generator called %d times, want %d", attempts, maxCodeAttempts)
	}
}

func TestAssignCheckInCodeRequiresBooking(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.AssignCheckInCode(context.Background(), "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want a ValidationError", err)
	}
}

func TestRandomCodeShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := randomCode()
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}
