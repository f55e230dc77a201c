package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testBillingHandler() *BillingHandler {
	config.Conf = &config.Config{
		Billing: config.BillingConfig{
			SecretKey:     "sk_test_x",
			WebhookSecret: "whsec_x",
			SuccessURL:    "http://localhost/success",
			CancelURL:     "http://localhost/cancel",
		},
	}
	return NewBillingHandler(zap.NewNop(), services.NewPaymentService(zap.NewNop()))
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestCreateCheckoutValidation(t *testing.T) {
	h := testBillingHandler()

	t.Run("malformed body", func(t *testing.T) {
		w := postJSON(t, h.CreateCheckout, "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing priceId", func(t *testing.T) {
		w := postJSON(t, h.CreateCheckout, `{"userEmail":"user@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "priceId is required")
	})

	t.Run("missing userEmail", func(t *testing.T) {
		w := postJSON(t, h.CreateCheckout, `{"priceId":"price_123"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "userEmail is required")
	})
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := testBillingHandler()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":"checkout.session.completed"}`))
	c.Request.Header.Set("Stripe-Signature", "t=1,v1=bogus")
	h.Webhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid webhook signature")
}
