package services

import (
	"fmt"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// CheckoutSession is the subset of a payment session the client needs.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// PaymentService wraps Stripe checkout and webhook verification.
type PaymentService struct {
	log *zap.Logger
}

func NewPaymentService(log *zap.Logger) *PaymentService {
	stripe.Key = config.Conf.Billing.SecretKey
	return &PaymentService{log: log}
}

// CreateCheckoutSession starts a checkout for the given price. couponID is
// optional.
func (p *PaymentService) CreateCheckoutSession(priceID, userEmail, couponID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(userEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(config.Conf.Billing.SuccessURL),
		CancelURL:  stripe.String(config.Conf.Billing.CancelURL),
	}
	if couponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(couponID)},
		}
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		p.log.Error("Failed to create checkout session", zap.String("priceID", priceID), zap.Error(err))
		return nil, fmt.Errorf("failed: %s", err.Error())
	}

	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhook checks the event signature and returns the parsed event. A
// bad signature is a hard failure for the whole request.
func (p *PaymentService) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, config.Conf.Billing.WebhookSecret)
}
