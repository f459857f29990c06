package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutRequest() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		AmountMinor:       1999,
		Currency:          "usd",
		ProductName:       "Go for tutors",
		SuccessURL:        "https://app.example.com/success",
		CancelURL:         "https://app.example.com/cancel",
		ClientReferenceID: "student-1",
		Metadata: map[string]string{
			domain.MetadataUserID:    "student-1",
			domain.MetadataCourseID:  "course-1",
			domain.MetadataPaymentID: "payment-1",
		},
	}
}

func TestCheckoutClient_CreateOneTimeSession(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	c := NewCheckoutClient(Config{APIKey: "sk_test_123", BackendURL: srv.URL}, logger.Discard())

	session, err := c.CreateOneTimeSession(context.Background(), checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)

	assert.Equal(t, "payment", form["mode"][0])
	assert.Equal(t, "1999", form["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"][0])
	assert.Equal(t, "1", form["line_items[0][quantity]"][0])
	assert.Equal(t, "https://app.example.com/success", form["success_url"][0])
	assert.Equal(t, "https://app.example.com/cancel", form["cancel_url"][0])
	assert.Equal(t, "student-1", form["client_reference_id"][0])
	assert.Equal(t, "course-1", form["metadata[courseId]"][0])
	assert.Equal(t, "payment-1", form["payment_intent_data[metadata][paymentId]"][0])
}

func TestCheckoutClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	c := NewCheckoutClient(Config{
		APIKey:     "sk_test_123",
		BackendURL: srv.URL,
		Breaker:    BreakerConfig{FailureThreshold: 2},
	}, logger.Discard())

	for i := 0; i < 2; i++ {
		_, err := c.CreateOneTimeSession(context.Background(), checkoutRequest())
		require.Error(t, err)
	}

	_, err := c.CreateOneTimeSession(context.Background(), checkoutRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkout unavailable")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCheckoutClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad amount"}}`))
	}))
	defer srv.Close()

	c := NewCheckoutClient(Config{
		APIKey:     "sk_test_123",
		BackendURL: srv.URL,
		Breaker:    BreakerConfig{FailureThreshold: 1},
	}, logger.Discard())

	for i := 0; i < 3; i++ {
		_, err := c.CreateOneTimeSession(context.Background(), checkoutRequest())
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "checkout unavailable")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
