package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a single line in a cart: product reference, quantity and the
// unit price snapshotted when the item was added.
type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

type Cart struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User                    primitive.ObjectID `bson:"user" json:"user"`
	CartItems               []CartItem         `bson:"cartItems" json:"cartItems"`
	TotalCartPrice          float64            `bson:"totalCartPrice" json:"totalCartPrice"`
	TotalPriceAfterDiscount *float64           `bson:"totalPriceAfterDiscount,omitempty" json:"totalPriceAfterDiscount,omitempty"`
	CreatedAt               time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecomputeTotal derives totalCartPrice from the current line items. Callers
// must invoke it after every line-item mutation so the stored total is never
// stale.
func (c *Cart) RecomputeTotal() {
	var total float64
	for _, item := range c.CartItems {
		total += float64(item.Quantity) * item.Price
	}
	c.TotalCartPrice = total
}

// CheckoutPrice is the price an order made from this cart must carry: the
// discounted total when a coupon is attached, the raw total otherwise.
func (c *Cart) CheckoutPrice() float64 {
	if c.TotalPriceAfterDiscount != nil {
		return *c.TotalPriceAfterDiscount
	}
	return c.TotalCartPrice
}
