package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BillingHandler struct {
	log      *zap.Logger
	payments *services.PaymentService
}

func NewBillingHandler(log *zap.Logger, payments *services.PaymentService) *BillingHandler {
	return &BillingHandler{log: log, payments: payments}
}

type checkoutRequest struct {
	PriceID   string `json:"priceId"`
	UserEmail string `json:"userEmail"`
	CouponID  string `json:"couponId"`
}

// CreateCheckout starts a payment session. priceId and userEmail are
// required; a missing field is a 400 with a descriptive message.
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priceId is required"})
		return
	}
	if req.UserEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userEmail is required"})
		return
	}

	sess, err := h.payments.CreateCheckoutSession(req.PriceID, req.UserEmail, req.CouponID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Webhook handles payment-processor events. Signature verification failure
// rejects the whole request with a 400.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := h.payments.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			h.log.Error("Failed to parse checkout session from webhook", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		h.markPaid(c, sess)
	default:
		h.log.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *BillingHandler) markPaid(c *gin.Context, sess stripe.CheckoutSession) {
	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	if email == "" {
		h.log.Warn("Checkout session completed without a customer email", zap.String("session", sess.ID))
		return
	}

	user, err := repository.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.log.Warn("Paid checkout for unknown user", zap.String("email", email))
			return
		}
		h.log.Error("Failed to load user for webhook", zap.String("email", email), zap.Error(err))
		return
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	if err := repository.UpdateUserStatus(c.Request.Context(), user.ID, models.StatusPaid, customerID); err != nil {
		h.log.Error("Failed to update user status after payment", zap.Uint("userID", user.ID), zap.Error(err))
	}
}
