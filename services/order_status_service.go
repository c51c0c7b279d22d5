package services

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/errors"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderStatusService owns the paid and delivered transitions. Delivery
// triggers the revenue distribution to the order's stores.
type OrderStatusService struct {
	orders   repository.OrderRepository
	payouts  RevenueDistributor
	producer EventPublisher
	logger   *zap.Logger
}

func NewOrderStatusService(orders repository.OrderRepository, payouts RevenueDistributor, producer EventPublisher, logger *zap.Logger) *OrderStatusService {
	return &OrderStatusService{orders: orders, payouts: payouts, producer: producer, logger: logger}
}

func (s *OrderStatusService) MarkPaid(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.MarkPaid(ctx, orderID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("There is no such order with id %s", orderID.Hex())
		}
		return nil, err
	}
	return order, nil
}

// MarkDelivered transitions an order to delivered and distributes its
// revenue to the sellers. The transition is valid only from the undelivered
// state; a repeat request gets Conflict and never re-credits balances.
// Distribution failures are logged per store and do not undo the delivery.
func (s *OrderStatusService) MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.MarkDelivered(ctx, orderID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("There is no such order with id %s", orderID.Hex())
		case errors.Is(err, repository.ErrAlreadyDelivered):
			return nil, apperrors.Conflict("Order %s is already delivered", orderID.Hex())
		}
		return nil, err
	}

	for _, credit := range s.payouts.Distribute(ctx, order.Items) {
		if credit.Err != nil {
			s.logger.Error("Store payout failed",
				zap.String("order_id", order.ID.Hex()),
				zap.String("store_id", credit.StoreID.Hex()),
				zap.Float64("amount", credit.Credited),
				zap.Error(credit.Err),
			)
		}
	}

	if s.producer != nil {
		evt := models.OrderEvent{
			Type:          models.EventOrderDelivered,
			OrderID:       order.ID.Hex(),
			OrderNumber:   order.OrderNumber,
			UserID:        order.User.Hex(),
			PaymentMethod: string(order.PaymentMethod),
			Total:         order.TotalOrderPrice,
			Timestamp:     time.Now().UTC(),
		}
		if err := s.producer.SendOrderEvent(ctx, evt); err != nil {
			s.logger.Warn("Order event publish failed", zap.Error(err))
		}
	}

	return order, nil
}
