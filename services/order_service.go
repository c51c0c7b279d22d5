package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	apperrors "github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/errors"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Metadata keys carried opaquely through the payment gateway and read back
// by the webhook processor.
const (
	metadataCartID          = "cart_id"
	metadataShippingAddress = "shipping_address"
)

// EventPublisher pushes order lifecycle events to the message broker.
type EventPublisher interface {
	SendOrderEvent(ctx context.Context, evt models.OrderEvent) error
}

// PaymentSheet is the client payload for the mobile payment flow.
type PaymentSheet struct {
	PaymentIntent  string `json:"paymentIntent"`
	EphemeralKey   string `json:"ephemeralKey"`
	Customer       string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	HasMore     bool  `json:"has_more"`
}

// OrderService owns the cart-to-order transition: cash checkout creates the
// order synchronously, the card path only prepares a gateway payment intent
// and defers order creation to the webhook processor.
type OrderService struct {
	carts          repository.CartRepository
	orders         repository.OrderRepository
	products       repository.ProductRepository
	inventory      InventoryAdjuster
	gateway        PaymentGateway
	producer       EventPublisher
	publishableKey string
	currency       string
	logger         *zap.Logger
}

func NewOrderService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	inventory InventoryAdjuster,
	gateway PaymentGateway,
	producer EventPublisher,
	publishableKey string,
	currency string,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		carts:          carts,
		orders:         orders,
		products:       products,
		inventory:      inventory,
		gateway:        gateway,
		producer:       producer,
		publishableKey: publishableKey,
		currency:       currency,
		logger:         logger,
	}
}

// CreateCashOrder converts a cart into a cash-on-delivery order. The order
// row, the inventory adjustment and the cart deletion are a best-effort
// sequence, not a distributed transaction; an order without
// inventoryAppliedAt marks the interim state.
func (s *OrderService) CreateCashOrder(ctx context.Context, userID, cartID primitive.ObjectID, addr models.ShippingAddress) (*models.Order, error) {
	const taxPrice, shippingPrice = 0, 0

	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("There is no such cart with id %s", cartID.Hex())
		}
		return nil, err
	}

	items, err := buildOrderItems(ctx, s.products, cart.CartItems)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		User:            userID,
		Items:           items,
		ShippingAddress: addr,
		TaxPrice:        taxPrice,
		ShippingPrice:   shippingPrice,
		TotalOrderPrice: cart.CheckoutPrice() + taxPrice + shippingPrice,
		PaymentMethod:   models.PaymentMethodCash,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.finalizeCheckout(ctx, order, cartID)

	return order, nil
}

// CreatePaymentSheet prepares a pending card payment: gateway customer,
// ephemeral key and a payment intent carrying the cart id and shipping
// address as opaque metadata. No order or inventory mutation happens here;
// card charges can fail or be abandoned, so nothing is reserved until the
// gateway confirms payment.
func (s *OrderService) CreatePaymentSheet(ctx context.Context, user *models.User, cartID primitive.ObjectID, addr models.ShippingAddress) (*PaymentSheet, error) {
	const taxPrice, shippingPrice = 0, 0

	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("There is no such cart with id %s", cartID.Hex())
		}
		return nil, err
	}

	totalOrderPrice := cart.CheckoutPrice() + taxPrice + shippingPrice

	customerID, err := s.gateway.CreateCustomer(ctx)
	if err != nil {
		return nil, err
	}

	ephemeralKey, err := s.gateway.CreateEphemeralKey(ctx, customerID)
	if err != nil {
		return nil, err
	}

	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, PaymentIntentInput{
		AmountMinor:  toMinorUnits(totalOrderPrice),
		Currency:     s.currency,
		CustomerID:   customerID,
		ReceiptEmail: user.Email,
		Metadata: map[string]string{
			metadataCartID:          cartID.Hex(),
			metadataShippingAddress: string(addrJSON),
		},
	})
	if err != nil {
		return nil, err
	}

	return &PaymentSheet{
		PaymentIntent:  intent.ClientSecret,
		EphemeralKey:   ephemeralKey,
		Customer:       customerID,
		PublishableKey: s.publishableKey,
	}, nil
}

// GetOrders lists orders, user-scoped unless the requester is an admin.
func (s *OrderService) GetOrders(ctx context.Context, userID primitive.ObjectID, role string, page, limit int) (*OrderListResponse, error) {
	var (
		orders []models.Order
		total  int64
		err    error
	)
	if role == models.RoleAdmin {
		orders, total, err = s.orders.FindAll(ctx, page, limit)
	} else {
		orders, total, err = s.orders.FindByUserID(ctx, userID, page, limit)
	}
	if err != nil {
		return nil, err
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// GetOrder fetches one order. Non-admins only see their own.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID primitive.ObjectID, role string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("There is no such order with id %s", orderID.Hex())
		}
		return nil, err
	}
	if role != models.RoleAdmin && order.User != userID {
		return nil, apperrors.NotFound("There is no such order with id %s", orderID.Hex())
	}
	return order, nil
}

// finalizeCheckout applies inventory effects, consumes the cart and emits
// the order-created event. Failures here never fail the already-created
// order; they are logged for reconciliation.
func (s *OrderService) finalizeCheckout(ctx context.Context, order *models.Order, cartID primitive.ObjectID) {
	if err := s.inventory.Apply(ctx, order.Items); err != nil {
		s.logger.Error("Failed to apply inventory adjustments",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	} else if err := s.orders.SetInventoryApplied(ctx, order.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("Failed to record inventory application",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	}

	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.logger.Error("Failed to delete cart after checkout",
			zap.String("cart_id", cartID.Hex()),
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	}

	if s.producer != nil {
		evt := models.OrderEvent{
			Type:          models.EventOrderCreated,
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
}

// buildOrderItems copies cart lines into order lines and snapshots each
// product's store reference so the payout is attributed to the store the
// item was sold under. Shared by the cash path and the webhook processor.
func buildOrderItems(ctx context.Context, repo repository.ProductRepository, cartItems []models.CartItem) ([]models.OrderItem, error) {
	productIDs := make([]primitive.ObjectID, 0, len(cartItems))
	for _, item := range cartItems {
		productIDs = append(productIDs, item.Product)
	}

	products, err := repo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	storeByProduct := make(map[primitive.ObjectID]primitive.ObjectID, len(products))
	for _, p := range products {
		storeByProduct[p.ID] = p.Store
	}

	items := make([]models.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		items = append(items, models.OrderItem{
			Product:  item.Product,
			Store:    storeByProduct[item.Product],
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return items, nil
}

func newOrderNumber() string {
	return "ORD-" + uuid.NewString()
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
