package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	sig := Sign(body, "whsec_test")

	assert.NoError(t, VerifySignature(body, sig, "whsec_test"))
}

func TestVerifySignatureFailsClosed(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)

	assert.ErrorIs(t, VerifySignature(body, "deadbeef", "whsec_test"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, "", "whsec_test"), ErrInvalidSignature)

	// tampered body
	sig := Sign(body, "whsec_test")
	assert.ErrorIs(t, VerifySignature([]byte(`{"id":"evt_2"}`), sig, "whsec_test"), ErrInvalidSignature)
}

func TestVerifySignatureDevBypass(t *testing.T) {
	// no secret configured: verification is skipped entirely
	assert.NoError(t, VerifySignature([]byte("anything"), "", ""))
}

func TestParseEvent(t *testing.T) {
	raw := []byte(`{
		"id": "evt_42",
		"type": "checkout.session.completed",
		"data": {
			"session_id": "cs_123",
			"metadata": {
				"user_id": 7,
				"product_ids": ["a", "b"],
				"quantities": [2, 1],
				"shipping_fee": "5.99"
			}
		}
	}`)

	event, err := ParseEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "evt_42", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_123", event.Data.SessionID)
	require.NotNil(t, event.Data.Metadata.UserID)
	assert.Equal(t, uint(7), *event.Data.Metadata.UserID)
	assert.Equal(t, []string{"a", "b"}, event.Data.Metadata.ProductIDs)
	assert.Equal(t, []int{2, 1}, event.Data.Metadata.Quantities)
}

func TestParseEventRejectsMalformed(t *testing.T) {
	_, err := ParseEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`{"type":"checkout.session.completed"}`))
	assert.Error(t, err, "missing event id")

	_, err = ParseEvent([]byte(`{"id":"evt_1"}`))
	assert.Error(t, err, "missing event type")
}
