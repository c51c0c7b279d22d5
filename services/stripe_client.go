package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// ephemeralKeyAPIVersion is the mobile SDK API version ephemeral keys are
// scoped to.
const ephemeralKeyAPIVersion = "2022-11-15"

// PaymentIntentInput carries everything needed to prepare a pending card
// charge. Metadata travels opaquely through the gateway and comes back on the
// webhook.
type PaymentIntentInput struct {
	AmountMinor  int64
	Currency     string
	CustomerID   string
	ReceiptEmail string
	Metadata     map[string]string
}

type PaymentIntentResult struct {
	ID           string
	ClientSecret string
}

// PaymentGateway is the outbound gateway capability used by the order
// service.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context) (string, error)
	CreateEphemeralKey(ctx context.Context, customerID string) (string, error)
	CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*PaymentIntentResult, error)
}

// WebhookVerifier validates an inbound gateway notification against the
// shared webhook secret.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeService wraps an explicitly constructed Stripe client. Credentials
// are injected once at process start; nothing reads ambient global state.
type StripeService struct {
	api           *client.API
	webhookSecret string
}

func NewStripeService(secretKey, webhookSecret string) *StripeService {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeService{api: api, webhookSecret: webhookSecret}
}

func (s *StripeService) CreateCustomer(ctx context.Context) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	customer, err := s.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

func (s *StripeService) CreateEphemeralKey(ctx context.Context, customerID string) (string, error) {
	params := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customerID),
		StripeVersion: stripe.String(ephemeralKeyAPIVersion),
	}
	params.Context = ctx
	key, err := s.api.EphemeralKeys.New(params)
	if err != nil {
		return "", err
	}
	return key.Secret, nil
}

func (s *StripeService) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*PaymentIntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.AmountMinor),
		Currency: stripe.String(in.Currency),
		Customer: stripe.String(in.CustomerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(in.ReceiptEmail),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}
