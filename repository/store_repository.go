package repository

import (
	"context"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type StoreRepository interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Store, error)
	// IncrementBalance credits a store's balance atomically. Each call is its
	// own unit of work; there is no cross-store transaction.
	IncrementBalance(ctx context.Context, id primitive.ObjectID, amount float64) error
}

type MongoStoreRepository struct {
	collection *mongo.Collection
}

func NewMongoStoreRepository(db *mongo.Database) StoreRepository {
	return &MongoStoreRepository{collection: db.Collection("stores")}
}

func (r *MongoStoreRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Store, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stores []models.Store
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *MongoStoreRepository) IncrementBalance(ctx context.Context, id primitive.ObjectID, amount float64) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"balance": amount}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
