package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	conv := NewConversation("req_1", "partner-1", "consumer-1")
	o, err := NewOrder(conv, "owner-1", OrderTerms{Title: "Dachrinne", NetCents: 10000, TaxRateBP: 1900})
	require.NoError(t, err)
	return o
}

func TestOrderTerms_ComputeTotals(t *testing.T) {
	tests := []struct {
		name  string
		terms OrderTerms
		want  Totals
	}{
		{
			name:  "tax only",
			terms: OrderTerms{NetCents: 10000, TaxRateBP: 1900, DiscountType: vo.DiscountNone},
			want:  Totals{NetCents: 10000, TaxCents: 1900, GrossCents: 11900},
		},
		{
			name:  "percent discount",
			terms: OrderTerms{NetCents: 10000, TaxRateBP: 1900, DiscountType: vo.DiscountPercent, DiscountValue: 1000},
			want:  Totals{NetCents: 10000, DiscountCents: 1000, TaxCents: 1710, GrossCents: 10710},
		},
		{
			name:  "amount discount",
			terms: OrderTerms{NetCents: 10000, TaxRateBP: 700, DiscountType: vo.DiscountAmount, DiscountValue: 2500},
			want:  Totals{NetCents: 10000, DiscountCents: 2500, TaxCents: 525, GrossCents: 8025},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.terms.ComputeTotals())
		})
	}
}

func TestNewOrder_Validation(t *testing.T) {
	conv := NewConversation("req_1", "partner-1", "consumer-1")
	tests := []struct {
		name  string
		terms OrderTerms
	}{
		{"missing title", OrderTerms{NetCents: 100}},
		{"zero net", OrderTerms{Title: "x"}},
		{"tax above 100%", OrderTerms{Title: "x", NetCents: 100, TaxRateBP: 10001}},
		{"amount discount above net", OrderTerms{Title: "x", NetCents: 100, DiscountType: vo.DiscountAmount, DiscountValue: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(conv, "owner-1", tt.terms)
			assert.True(t, apperrors.IsValidationError(err))
		})
	}
}

func TestOrder_DeclineIsIdempotent(t *testing.T) {
	o := newTestOrder(t)

	changed, err := o.Decline()
	require.NoError(t, err)
	assert.True(t, changed)
	decidedAt := o.DecidedAt()

	changed, err = o.Decline()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, decidedAt, o.DecidedAt())
	assert.Equal(t, vo.OrderStatusDeclined, o.Status())
}

func TestOrder_TerminalStatesRejectChanges(t *testing.T) {
	accepted := newTestOrder(t)
	_, err := accepted.Accept()
	require.NoError(t, err)

	for name, op := range map[string]func() (bool, error){
		"accept again": accepted.Accept,
		"decline":      accepted.Decline,
		"cancel":       accepted.Cancel,
	} {
		_, err := op()
		assert.True(t, apperrors.HasReason(err, apperrors.ReasonOrderTerminal), name)
	}

	canceled := newTestOrder(t)
	_, err = canceled.Cancel()
	require.NoError(t, err)
	changed, err := canceled.Cancel()
	require.NoError(t, err)
	assert.False(t, changed)
	_, err = canceled.Accept()
	assert.True(t, apperrors.HasReason(err, apperrors.ReasonOrderTerminal))
}
