package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeKeepsConcreteType(t *testing.T) {
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	cases := []Event{
		ChatText{Body: "Hallo"},
		AppointmentProposed{AppointmentID: "appt_1", Kind: "onsite", StartAt: start, DurationMin: 60},
		OrderDeclined{OrderID: "ord_1", Title: "Dachrinne", TotalCents: 11900},
		RatingSubmitted{RequestID: "req_1", Stars: 9},
		InvoiceStatusChanged{InvoiceID: "inv_7", Status: "paid"},
	}

	for _, in := range cases {
		t.Run(string(in.Type()), func(t *testing.T) {
			typ, data, err := Encode(in)
			require.NoError(t, err)
			assert.Equal(t, in.Type(), typ)

			out, err := Decode(typ, data)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	_, err := Decode("APPT:PROPOSED", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")
}

func TestEnvelopeJSON(t *testing.T) {
	env, err := Wrap(OrderCanceled{OrderID: "ord_9", Title: "Fliesen"})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"order_canceled","data":{"order_id":"ord_9","title":"Fliesen"}}`, string(raw))

	var back Envelope
	require.NoError(t, json.Unmarshal(raw, &back))
	e, err := back.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, OrderCanceled{OrderID: "ord_9", Title: "Fliesen"}, e)
}

func TestIsSystem(t *testing.T) {
	assert.False(t, IsSystem(ChatText{Body: "x"}))
	assert.True(t, IsSystem(AppointmentConfirmed{AppointmentID: "appt_1"}))
}
