package stripe_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/buyzaar/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

func TestVerifyWebhookSignature(t *testing.T) {
	const secret = "whsec_test_secret"

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        stripe.EventPaymentIntentSucceeded,
		"api_version": stripego.APIVersion,
		"data":        map[string]any{"object": map[string]any{"id": "pi_1", "object": "payment_intent"}},
	})
	require.NoError(t, err)

	t.Run("Valid signature", func(t *testing.T) {
		client := stripe.NewStripeClient("sk_test", secret)
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret, Timestamp: time.Now()})

		event, err := client.VerifyWebhookSignature(signed.Payload, signed.Header)

		require.NoError(t, err)
		assert.Equal(t, stripe.EventPaymentIntentSucceeded, string(event.Type))
	})

	t.Run("Tampered signature", func(t *testing.T) {
		client := stripe.NewStripeClient("sk_test", secret)
		header := fmt.Sprintf("t=%d,v1=deadbeef", time.Now().Unix())

		_, err := client.VerifyWebhookSignature(payload, header)

		assert.Error(t, err)
	})

	t.Run("Secret not configured", func(t *testing.T) {
		client := stripe.NewStripeClient("sk_test", "")

		_, err := client.VerifyWebhookSignature(payload, "t=1,v1=x")

		assert.ErrorIs(t, err, stripe.ErrWebhookSecretMissing)
	})
}
