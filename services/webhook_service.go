package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/errors"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/repository"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WebhookProcessor turns verified gateway notifications into card orders,
// at most once per payment intent. The gateway delivers at-least-once, so
// the unique order index on the intent id is the dedup authority; a
// duplicate-key hit means a previous delivery already won.
type WebhookProcessor struct {
	verifier  WebhookVerifier
	carts     repository.CartRepository
	users     repository.UserRepository
	orders    repository.OrderRepository
	products  repository.ProductRepository
	inventory InventoryAdjuster
	producer  EventPublisher
	logger    *zap.Logger
}

func NewWebhookProcessor(
	verifier WebhookVerifier,
	carts repository.CartRepository,
	users repository.UserRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	inventory InventoryAdjuster,
	producer EventPublisher,
	logger *zap.Logger,
) *WebhookProcessor {
	return &WebhookProcessor{
		verifier:  verifier,
		carts:     carts,
		users:     users,
		orders:    orders,
		products:  products,
		inventory: inventory,
		producer:  producer,
		logger:    logger,
	}
}

// Process verifies the raw notification and dispatches it. Only a signature
// failure is returned as an error (the caller answers 400 and nothing is
// mutated); every verified event is acknowledged regardless of downstream
// outcome, because the gateway will not retry on a 200 and must not retry
// forever on a malformed event. Post-verification failures are logged.
func (p *WebhookProcessor) Process(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := p.verifier.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return apperrors.New(apperrors.ErrSignatureInvalid.Code, apperrors.ErrSignatureInvalid.Message, err)
	}

	p.logger.Info("Processing payment webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "payment_intent.succeeded":
		p.handlePaymentSucceeded(ctx, event)
	default:
		p.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	return nil
}

func (p *WebhookProcessor) handlePaymentSucceeded(ctx context.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		p.logger.Error("Failed to unmarshal payment intent", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	cartID, err := primitive.ObjectIDFromHex(pi.Metadata[metadataCartID])
	if err != nil {
		p.logger.Error("Payment intent carries no usable cart id",
			zap.String("payment_intent_id", pi.ID),
			zap.String("cart_id", pi.Metadata[metadataCartID]),
			zap.Error(err),
		)
		return
	}

	var addr models.ShippingAddress
	if raw := pi.Metadata[metadataShippingAddress]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &addr); err != nil {
			p.logger.Warn("Failed to decode shipping address metadata",
				zap.String("payment_intent_id", pi.ID),
				zap.Error(err),
			)
		}
	}

	cart, err := p.carts.FindByID(ctx, cartID)
	if err != nil {
		p.logger.Error("Cart not found for paid intent; dropping event",
			zap.String("payment_intent_id", pi.ID),
			zap.String("cart_id", cartID.Hex()),
			zap.Error(err),
		)
		return
	}

	user, err := p.users.FindByEmail(ctx, pi.ReceiptEmail)
	if err != nil {
		p.logger.Error("User not found for receipt email; dropping event",
			zap.String("payment_intent_id", pi.ID),
			zap.String("receipt_email", pi.ReceiptEmail),
			zap.Error(err),
		)
		return
	}

	items, err := buildOrderItems(ctx, p.products, cart.CartItems)
	if err != nil {
		p.logger.Error("Failed to resolve order items",
			zap.String("payment_intent_id", pi.ID),
			zap.Error(err),
		)
		return
	}

	now := time.Now().UTC()
	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		User:            user.ID,
		Items:           items,
		ShippingAddress: addr,
		// The gateway-confirmed amount is authoritative, converted from
		// minor units; the cart total could have drifted since intent
		// creation and is deliberately not recomputed.
		TotalOrderPrice: float64(pi.AmountReceived) / 100,
		PaymentMethod:   models.PaymentMethodCard,
		PaymentIntentID: pi.ID,
		IsPaid:          true,
		PaidAt:          &now,
	}

	if err := p.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			p.logger.Info("Duplicate payment event; order already created",
				zap.String("payment_intent_id", pi.ID),
			)
			return
		}
		p.logger.Error("Failed to create card order",
			zap.String("payment_intent_id", pi.ID),
			zap.Error(err),
		)
		return
	}

	if err := p.inventory.Apply(ctx, order.Items); err != nil {
		p.logger.Error("Failed to apply inventory adjustments",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	} else if err := p.orders.SetInventoryApplied(ctx, order.ID, time.Now().UTC()); err != nil {
		p.logger.Warn("Failed to record inventory application",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	}

	if err := p.carts.Delete(ctx, cartID); err != nil {
		p.logger.Error("Failed to delete cart after card checkout",
			zap.String("cart_id", cartID.Hex()),
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	}

	if p.producer != nil {
		evt := models.OrderEvent{
			Type:          models.EventOrderPaid,
			OrderID:       order.ID.Hex(),
			OrderNumber:   order.OrderNumber,
			UserID:        order.User.Hex(),
			PaymentMethod: string(order.PaymentMethod),
			Total:         order.TotalOrderPrice,
			Timestamp:     now,
		}
		if err := p.producer.SendOrderEvent(ctx, evt); err != nil {
			p.logger.Warn("Order event publish failed", zap.Error(err))
		}
	}
}
