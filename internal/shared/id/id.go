// Package id generates Stripe-style prefixed identifiers backed by UUIDv7, so
// ids sort roughly by creation time.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefixes for marketplace entities.
const (
	PrefixRequest      = "req"
	PrefixApplication  = "app"
	PrefixConversation = "conv"
	PrefixMessage      = "msg"
	PrefixAppointment  = "appt"
	PrefixOrder        = "ord"
	PrefixRating       = "rat"
)

// New returns "prefix_<32 hex chars>".
func New(prefix string) string {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return prefix + "_" + strings.ReplaceAll(u.String(), "-", "")
}

// HasPrefix reports whether s looks like an id with the given prefix.
func HasPrefix(s, prefix string) bool {
	return strings.HasPrefix(s, prefix+"_") && len(s) == len(prefix)+1+32
}

// Validate returns an error when s is not an id with the given prefix.
func Validate(s, prefix string) error {
	if !HasPrefix(s, prefix) {
		return fmt.Errorf("invalid %s id %q", prefix, s)
	}
	if _, err := uuid.Parse(s[len(prefix)+1:]); err != nil {
		return fmt.Errorf("invalid %s id %q: %w", prefix, s, err)
	}
	return nil
}
