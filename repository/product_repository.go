package repository

import (
	"context"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterAdjustment moves one product's counters: quantity down, sold up.
type CounterAdjustment struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	// BulkAdjustCounters submits all adjustments as one unordered batch and
	// reports how many documents matched. A filter miss on one item does not
	// abort the rest.
	BulkAdjustCounters(ctx context.Context, adjustments []CounterAdjustment) (int64, error)
}

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) BulkAdjustCounters(ctx context.Context, adjustments []CounterAdjustment) (int64, error) {
	if len(adjustments) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(adjustments))
	for _, adj := range adjustments {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": adj.ProductID}).
			SetUpdate(bson.M{"$inc": bson.M{
				"quantity": -adj.Quantity,
				"sold":     adj.Quantity,
			}}))
	}

	opts := options.BulkWrite().SetOrdered(false)
	res, err := r.collection.BulkWrite(ctx, writes, opts)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
