package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

type stripeCall struct {
	method string
	path   string
	form   url.Values
}

type fakeStripe struct {
	mu    sync.Mutex
	calls []stripeCall
	reply map[string]func(w http.ResponseWriter)
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	f.mu.Lock()
	f.calls = append(f.calls, stripeCall{method: r.Method, path: r.URL.Path, form: r.PostForm})
	reply, ok := f.reply[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "no such route"}}`))
		return
	}

	reply(w)
}

func (f *fakeStripe) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.method + " " + c.path
	}
	return out
}

func respond(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

const unexpectedStateBody = `{"error": {"type": "invalid_request_error", "code": "payment_intent_unexpected_state", "message": "unexpected state"}}`

func newFakeStripe(t *testing.T, reply map[string]func(w http.ResponseWriter)) *fakeStripe {
	t.Helper()

	fake := &fakeStripe{reply: reply}
	srv := httptest.NewServer(fake)

	previousKey := stripe.Key
	stripe.Key = "sk_test_fake"
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}))

	t.Cleanup(func() {
		srv.Close()
		stripe.Key = previousKey
		stripe.SetBackend(stripe.APIBackend, nil)
	})

	return fake
}

func TestStripePaymentAuthority_Authorize(t *testing.T) {
	tests := []struct {
		name         string
		reply        func(w http.ResponseWriter)
		wantChargeID string
		wantDeclined bool
	}{
		{
			name:         "should hold the amount for a later capture",
			reply:        respond(http.StatusOK, `{"id": "pi_1", "object": "payment_intent", "status": "requires_capture"}`),
			wantChargeID: "pi_1",
		},
		{
			name:         "should decline a card error",
			reply:        respond(http.StatusPaymentRequired, `{"error": {"type": "card_error", "code": "card_declined", "message": "Your card was declined."}}`),
			wantDeclined: true,
		},
		{
			name:         "should decline an intent that needs more authentication",
			reply:        respond(http.StatusOK, `{"id": "pi_2", "object": "payment_intent", "status": "requires_action"}`),
			wantDeclined: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeStripe(t, map[string]func(w http.ResponseWriter){
				"POST /v1/payment_intents": tt.reply,
			})

			authority := NewStripePaymentAuthority("usd")
			auth, err := authority.Authorize(context.Background(), "pm_card_visa", decimal.RequireFromString("24.50"),
				map[string]string{"holder_token": "token-1"})

			require.Len(t, fake.calls, 1)
			form := fake.calls[0].form
			assert.Equal(t, "manual", form.Get("capture_method"))
			assert.Equal(t, "true", form.Get("confirm"))
			assert.Equal(t, "2450", form.Get("amount"))

			if tt.wantDeclined {
				assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantChargeID, auth.ChargeID)
		})
	}
}

func TestStripePaymentAuthority_Capture(t *testing.T) {
	t.Run("should capture the intent", func(t *testing.T) {
		fake := newFakeStripe(t, map[string]func(w http.ResponseWriter){
			"POST /v1/payment_intents/pi_1/capture": respond(http.StatusOK, `{"id": "pi_1", "object": "payment_intent", "status": "succeeded"}`),
		})

		require.NoError(t, NewStripePaymentAuthority("usd").Capture(context.Background(), "pi_1"))
		assert.Equal(t, []string{"POST /v1/payment_intents/pi_1/capture"}, fake.paths())
	})

	t.Run("should accept an intent that is already captured", func(t *testing.T) {
		fake := newFakeStripe(t, map[string]func(w http.ResponseWriter){
			"POST /v1/payment_intents/pi_1/capture": respond(http.StatusBadRequest, unexpectedStateBody),
			"GET /v1/payment_intents/pi_1":          respond(http.StatusOK, `{"id": "pi_1", "object": "payment_intent", "status": "succeeded"}`),
		})

		require.NoError(t, NewStripePaymentAuthority("usd").Capture(context.Background(), "pi_1"))
		assert.Equal(t, []string{"POST /v1/payment_intents/pi_1/capture", "GET /v1/payment_intents/pi_1"}, fake.paths())
	})

	t.Run("should fail for a cancelled intent", func(t *testing.T) {
		newFakeStripe(t, map[string]func(w http.ResponseWriter){
			"POST /v1/payment_intents/pi_1/capture": respond(http.StatusBadRequest, unexpectedStateBody),
			"GET /v1/payment_intents/pi_1":          respond(http.StatusOK, `{"id": "pi_1", "object": "payment_intent", "status": "canceled"}`),
		})

		assert.Error(t, NewStripePaymentAuthority("usd").Capture(context.Background(), "pi_1"))
	})
}

func TestStripePaymentAuthority_Void(t *testing.T) {
	t.Run("should cancel an uncaptured intent", func(t *testing.T) {
		fake := newFakeStripe(t, map[string]func(w http.ResponseWriter){
			"POST /v1/payment_intents/pi_1/cancel": respond(http.StatusOK, `{"id": "pi_1", "object": "payment_intent", "status": "canceled"}`),
		})

		require.NoError(t, NewStripePaymentAuthority("usd").Void(context.Background(), "pi_1"))
		assert.Equal(t, []string{"POST /v1/payment_intents/pi_1/cancel"}, fake.paths())
		assert.Equal(t, "abandoned", fake.calls[0].form.Get("cancellation_reason"))
	})

	t.Run("should refund an intent that was captured", func(t *testing.T) {
		fake := newFakeStripe(t, map[string]func(w http.ResponseWriter){
			"POST /v1/payment_intents/pi_1/cancel": respond(http.StatusBadRequest, unexpectedStateBody),
			"POST /v1/refunds":                     respond(http.StatusOK, `{"id": "re_1", "object": "refund", "status": "succeeded"}`),
		})

		require.NoError(t, NewStripePaymentAuthority("usd").Void(context.Background(), "pi_1"))
		assert.Equal(t, []string{"POST /v1/payment_intents/pi_1/cancel", "POST /v1/refunds"}, fake.paths())
		assert.Equal(t, "pi_1", fake.calls[1].form.Get("payment_intent"))
	})

	t.Run("should report other errors so the caller retries", func(t *testing.T) {
		newFakeStripe(t, map[string]func(w http.ResponseWriter){
			"POST /v1/payment_intents/pi_1/cancel": respond(http.StatusBadRequest, `{"error": {"type": "invalid_request_error", "message": "bad"}}`),
		})

		assert.Error(t, NewStripePaymentAuthority("usd").Void(context.Background(), "pi_1"))
	})
}
