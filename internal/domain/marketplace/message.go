package marketplace

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/id"
)

const maxChatLength = 8000

// MessageKind separates human chat from transition records.
type MessageKind string

const (
	MessageKindChat  MessageKind = "chat"
	MessageKindEvent MessageKind = "event"
)

// Message is one append-only ledger entry.
type Message struct {
	id             string
	conversationID string
	senderID       string
	event          events.Event
	bodyHTML       string
	createdAt      time.Time
	dispatchedAt   *time.Time
	dispatch       DispatchState
}

// DispatchState tracks failed relay attempts of an undelivered entry. An
// entry is given up on once DeadLetteredAt is set.
type DispatchState struct {
	Attempts       int
	NextAttemptAt  *time.Time
	DeadLetteredAt *time.Time
}

// NewChatMessage records text written by a participant.
func NewChatMessage(conversationID, senderID, body, bodyHTML string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message text is required")
	}
	if utf8.RuneCountInString(body) > maxChatLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("message exceeds %d characters", maxChatLength))
	}
	return newMessage(conversationID, senderID, events.ChatText{Body: body}, bodyHTML), nil
}

// NewEventMessage records a state transition on behalf of senderID.
func NewEventMessage(conversationID, senderID string, e events.Event) *Message {
	return newMessage(conversationID, senderID, e, "")
}

func newMessage(conversationID, senderID string, e events.Event, bodyHTML string) *Message {
	// Cursors carry microseconds; keep stored times at the same precision.
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &Message{
		id:             id.New(id.PrefixMessage),
		conversationID: conversationID,
		senderID:       senderID,
		event:          e,
		bodyHTML:       bodyHTML,
		createdAt:      now,
	}
}

func ReconstructMessage(
	messageID, conversationID, senderID string,
	e events.Event,
	bodyHTML string,
	createdAt time.Time,
	dispatchedAt *time.Time,
) *Message {
	return &Message{
		id:             messageID,
		conversationID: conversationID,
		senderID:       senderID,
		event:          e,
		bodyHTML:       bodyHTML,
		createdAt:      createdAt,
		dispatchedAt:   dispatchedAt,
	}
}

func (m *Message) ID() string {
	return m.id
}

func (m *Message) ConversationID() string {
	return m.conversationID
}

func (m *Message) SenderID() string {
	return m.senderID
}

func (m *Message) Event() events.Event {
	return m.event
}

func (m *Message) Kind() MessageKind {
	if events.IsSystem(m.event) {
		return MessageKindEvent
	}
	return MessageKindChat
}

// BodyText is the chat text, empty for transition records.
func (m *Message) BodyText() string {
	if chat, ok := m.event.(events.ChatText); ok {
		return chat.Body
	}
	return ""
}

func (m *Message) BodyHTML() string {
	return m.bodyHTML
}

func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Message) DispatchedAt() *time.Time {
	return m.dispatchedAt
}

func (m *Message) DispatchState() DispatchState {
	return m.dispatch
}

// SetDispatchState restores the relay bookkeeping loaded with the entry.
func (m *Message) SetDispatchState(s DispatchState) {
	m.dispatch = s
}

// Cursor is the position just after m.
func (m *Message) Cursor() MessageCursor {
	return MessageCursor{CreatedAt: m.createdAt, ID: m.id}
}
