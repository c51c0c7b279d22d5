package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Store is a seller account. CommissionRate is the platform's cut as a
// fraction in [0,1]; Balance accumulates net revenue owed to the seller.
type Store struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	CommissionRate float64            `bson:"commissionRate" json:"commissionRate"`
	Balance        float64            `bson:"balance" json:"balance"`
}
