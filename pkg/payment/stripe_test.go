package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

const intentEvent = `{
  "id": "evt_1",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "payment_intent.succeeded",
  "data": {"object": {
    "id": "pi_123",
    "object": "payment_intent",
    "status": "succeeded",
    "amount": 2500,
    "currency": "pkr",
    "metadata": {"orderId": "64b7f0c2a1b2c3d4e5f60718"}
  }}
}`

func TestStripeParseWebhook_Valid(t *testing.T) {
	p := NewStripe("sk_test_x", "whsec_abc")
	payload := []byte(intentEvent)

	ev, err := p.ParseWebhook(payload, sign(t, payload, "whsec_abc"))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventIntentSucceeded, ev.Type)
	require.NotNil(t, ev.Intent)
	assert.Equal(t, "pi_123", ev.Intent.ID)
	assert.Equal(t, int64(2500), ev.Intent.AmountCents)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", ev.Intent.Metadata["orderId"])
	assert.True(t, ev.Intent.Succeeded())
}

func TestStripeParseWebhook_BadSignature(t *testing.T) {
	p := NewStripe("sk_test_x", "whsec_abc")
	payload := []byte(intentEvent)

	_, err := p.ParseWebhook(payload, sign(t, payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = p.ParseWebhook(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripeParseWebhook_NoSecret(t *testing.T) {
	_, err := NewStripe("sk_test_x", "").ParseWebhook([]byte(intentEvent), "t=1,v1=00")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripeCreateIntent_RejectsNonPositive(t *testing.T) {
	_, err := NewStripe("sk_test_x", "").CreateIntent(t.Context(), IntentParams{AmountCents: 0, Currency: "pkr"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
