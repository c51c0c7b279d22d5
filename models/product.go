package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is owned by the catalog; this service only reads price/store and
// moves the quantity/sold counters.
type Product struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Sold     int                `bson:"sold" json:"sold"`
	Store    primitive.ObjectID `bson:"store" json:"store"`
}
