package model

import (
	"testing"
	"time"
)

func TestGuestSessionExpired(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt string
		want      bool
	}{
		{name: "future expiry", expiresAt: "2026-03-05T12:00:00Z", want: false},
		{name: "past expiry", expiresAt: "2026-03-05T09:00:00Z", want: true},
		{name: "exact expiry instant", expiresAt: "2026-03-05T10:00:00Z", want: true},
		{name: "unparseable expiry", expiresAt: "soon", want: true},
		{name: "empty expiry", expiresAt: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := GuestSession{ExpiresAt: tt.expiresAt}
			if got := s.Expired(now); got != tt.want {
				t.Fatalf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
