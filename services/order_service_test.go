package services

import (
	"context"
	"testing"

	apperrors "github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/errors"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Details: "12 Nile St, Apt 3",
		Phone:   "+201001234567",
		City:    "Cairo",
	}
}

type checkoutFixture struct {
	carts    *memCartRepo
	orders   *memOrderRepo
	products *memProductRepo
	gateway  *fakeGateway
	producer *fakePublisher
	svc      *OrderService

	userID  primitive.ObjectID
	cartID  primitive.ObjectID
	storeA  primitive.ObjectID
	storeB  primitive.ObjectID
	prodA   primitive.ObjectID
	prodB   primitive.ObjectID
	cart    *models.Cart
}

// newCheckoutFixture builds a cart with 3×productA (price 50) and
// 1×productB (price 100); raw total 250.
func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		userID: primitive.NewObjectID(),
		cartID: primitive.NewObjectID(),
		storeA: primitive.NewObjectID(),
		storeB: primitive.NewObjectID(),
		prodA:  primitive.NewObjectID(),
		prodB:  primitive.NewObjectID(),
	}

	f.cart = &models.Cart{
		ID:   f.cartID,
		User: f.userID,
		CartItems: []models.CartItem{
			{Product: f.prodA, Quantity: 3, Price: 50},
			{Product: f.prodB, Quantity: 1, Price: 100},
		},
	}
	f.cart.RecomputeTotal()

	f.carts = newMemCartRepo(f.cart)
	f.orders = newMemOrderRepo()
	f.products = newMemProductRepo(
		&models.Product{ID: f.prodA, Price: 50, Quantity: 10, Store: f.storeA},
		&models.Product{ID: f.prodB, Price: 100, Quantity: 5, Store: f.storeB},
	)
	f.gateway = &fakeGateway{}
	f.producer = &fakePublisher{}

	inventory := NewInventoryService(f.products, zap.NewNop())
	f.svc = NewOrderService(f.carts, f.orders, f.products, inventory, f.gateway, f.producer, "pk_test", "egp", zap.NewNop())
	return f
}

func TestCreateCashOrder_UsesCartTotalAndConsumesCart(t *testing.T) {
	f := newCheckoutFixture()

	order, err := f.svc.CreateCashOrder(context.Background(), f.userID, f.cartID, testAddress())
	require.NoError(t, err)

	assert.Equal(t, 250.0, order.TotalOrderPrice)
	assert.Equal(t, models.PaymentMethodCash, order.PaymentMethod)
	assert.False(t, order.IsPaid)
	assert.Equal(t, f.userID, order.User)

	// The source cart no longer exists.
	_, err = f.carts.FindByID(context.Background(), f.cartID)
	assert.Error(t, err)

	// Store references are snapshotted into the order lines.
	require.Len(t, order.Items, 2)
	assert.Equal(t, f.storeA, order.Items[0].Store)
	assert.Equal(t, f.storeB, order.Items[1].Store)
}

func TestCreateCashOrder_PrefersDiscountedTotal(t *testing.T) {
	f := newCheckoutFixture()
	discounted := 200.0
	f.cart.TotalPriceAfterDiscount = &discounted

	order, err := f.svc.CreateCashOrder(context.Background(), f.userID, f.cartID, testAddress())
	require.NoError(t, err)
	assert.Equal(t, 200.0, order.TotalOrderPrice)
}

func TestCreateCashOrder_AdjustsInventory(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.CreateCashOrder(context.Background(), f.userID, f.cartID, testAddress())
	require.NoError(t, err)

	assert.Equal(t, 7, f.products.products[f.prodA].Quantity)
	assert.Equal(t, 3, f.products.products[f.prodA].Sold)
	assert.Equal(t, 4, f.products.products[f.prodB].Quantity)
	assert.Equal(t, 1, f.products.products[f.prodB].Sold)
	assert.Equal(t, 1, f.products.bulkCalls, "all adjustments go out as one batch")
}

func TestCreateCashOrder_MissingCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.CreateCashOrder(context.Background(), f.userID, primitive.NewObjectID(), testAddress())
	require.Error(t, err)

	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)

	// No side effects at all.
	assert.Empty(t, f.orders.orders)
	assert.Equal(t, 0, f.products.bulkCalls)
	assert.Equal(t, 10, f.products.products[f.prodA].Quantity)
}

func TestCreateCashOrder_PublishesEvent(t *testing.T) {
	f := newCheckoutFixture()

	order, err := f.svc.CreateCashOrder(context.Background(), f.userID, f.cartID, testAddress())
	require.NoError(t, err)

	require.Len(t, f.producer.events, 1)
	assert.Equal(t, models.EventOrderCreated, f.producer.events[0].Type)
	assert.Equal(t, order.ID.Hex(), f.producer.events[0].OrderID)
}

func TestCreatePaymentSheet_PreparesIntentWithoutSideEffects(t *testing.T) {
	f := newCheckoutFixture()
	user := &models.User{ID: f.userID, Email: "buyer@example.com"}

	sheet, err := f.svc.CreatePaymentSheet(context.Background(), user, f.cartID, testAddress())
	require.NoError(t, err)

	assert.Equal(t, "pi_test_secret", sheet.PaymentIntent)
	assert.Equal(t, "cus_1", sheet.Customer)
	assert.Equal(t, "ek_secret_cus_1", sheet.EphemeralKey)
	assert.Equal(t, "pk_test", sheet.PublishableKey)

	require.Len(t, f.gateway.intents, 1)
	intent := f.gateway.intents[0]
	assert.Equal(t, int64(25000), intent.AmountMinor, "price converted to minor units")
	assert.Equal(t, "egp", intent.Currency)
	assert.Equal(t, "buyer@example.com", intent.ReceiptEmail)
	assert.Equal(t, f.cartID.Hex(), intent.Metadata["cart_id"])
	assert.NotEmpty(t, intent.Metadata["shipping_address"])

	// Intent preparation must not create an order, move inventory or
	// consume the cart; the webhook does all of that after confirmation.
	assert.Empty(t, f.orders.orders)
	assert.Equal(t, 0, f.products.bulkCalls)
	_, err = f.carts.FindByID(context.Background(), f.cartID)
	assert.NoError(t, err)
}

func TestCreatePaymentSheet_MissingCart(t *testing.T) {
	f := newCheckoutFixture()
	user := &models.User{ID: f.userID, Email: "buyer@example.com"}

	_, err := f.svc.CreatePaymentSheet(context.Background(), user, primitive.NewObjectID(), testAddress())
	require.Error(t, err)

	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
	assert.Equal(t, 0, f.gateway.customers, "no gateway call for a missing cart")
}

func TestGetOrder_ScopedToOwnerUnlessAdmin(t *testing.T) {
	f := newCheckoutFixture()
	order, err := f.svc.CreateCashOrder(context.Background(), f.userID, f.cartID, testAddress())
	require.NoError(t, err)

	stranger := primitive.NewObjectID()

	_, err = f.svc.GetOrder(context.Background(), order.ID, stranger, models.RoleUser)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)

	got, err := f.svc.GetOrder(context.Background(), order.ID, stranger, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
