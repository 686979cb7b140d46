package marketplace

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

// MessageCursor is a position in a conversation ledger. Messages are ordered
// by (created_at, id); the cursor points just after the named message.
type MessageCursor struct {
	CreatedAt time.Time
	ID        string
}

// IsZero reports whether the cursor points at the start of the ledger.
func (c MessageCursor) IsZero() bool {
	return c.ID == ""
}

// Encode returns an opaque URL-safe token.
func (c MessageCursor) Encode() string {
	if c.IsZero() {
		return ""
	}
	raw := strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by Encode. An empty token is the start.
func ParseCursor(token string) (MessageCursor, error) {
	if token == "" {
		return MessageCursor{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return MessageCursor{}, apperrors.NewValidationError("invalid cursor")
	}
	ts, msgID, ok := strings.Cut(string(raw), "|")
	if !ok || msgID == "" {
		return MessageCursor{}, apperrors.NewValidationError("invalid cursor")
	}
	micros, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return MessageCursor{}, apperrors.NewValidationError("invalid cursor", fmt.Sprintf("bad timestamp %q", ts))
	}
	return MessageCursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: msgID}, nil
}
