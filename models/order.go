package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod is a closed variant; invalid codes never reach storage.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "credit_card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

type ShippingAddress struct {
	Details    string `bson:"details" json:"details" binding:"required"`
	Phone      string `bson:"phone" json:"phone" binding:"required"`
	City       string `bson:"city" json:"city" binding:"required"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
}

// OrderItem is a line item copied from the cart at checkout time. Price and
// store are snapshots; later product changes never alter historical orders.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Store    primitive.ObjectID `bson:"store" json:"store"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"cartItems" json:"cartItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	TaxPrice        float64            `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice   float64            `bson:"shippingPrice" json:"shippingPrice"`
	TotalOrderPrice float64            `bson:"totalOrderPrice" json:"totalOrderPrice"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`

	// PaymentIntentID is the gateway idempotency key for card orders. A
	// unique sparse index guarantees at most one order per payment intent.
	PaymentIntentID string `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`

	IsPaid      bool       `bson:"isPaid" json:"isPaid"`
	PaidAt      *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	IsDelivered bool       `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`

	// InventoryAppliedAt is unset while an order exists whose inventory
	// effects have not committed yet; a reconciliation job can use it to
	// detect the interim state of the two-step write.
	InventoryAppliedAt *time.Time `bson:"inventoryAppliedAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
