package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error)
	MarkDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error)
	SetInventoryApplied(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

// Create inserts a new order. A collision with the unique paymentIntentId
// index is surfaced as ErrDuplicateOrder so callers can treat a duplicate
// payment event as already processed instead of a failure.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateOrder
	}
	return err
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserID retrieves orders for a specific user with pagination
func (r *MongoOrderRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	return r.find(ctx, bson.M{"user": userID}, page, limit)
}

// FindAll retrieves all orders with pagination
func (r *MongoOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	return r.find(ctx, bson.M{}, page, limit)
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, page, limit int) ([]models.Order, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// MarkPaid sets isPaid/paidAt and returns the updated order.
func (r *MongoOrderRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error) {
	update := bson.M{"$set": bson.M{
		"isPaid":    true,
		"paidAt":    at,
		"updatedAt": at,
	}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// MarkDelivered transitions an order to delivered. The filter requires the
// undelivered state so two concurrent requests cannot both win; the loser is
// told apart from a missing order by a follow-up existence check.
func (r *MongoOrderRepository) MarkDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error) {
	update := bson.M{"$set": bson.M{
		"isDelivered": true,
		"deliveredAt": at,
		"updatedAt":   at,
	}}
	order, err := r.findOneAndUpdate(ctx, bson.M{"_id": id, "isDelivered": false}, update)
	if errors.Is(err, ErrNotFound) {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, countErr
		}
		if count > 0 {
			return nil, ErrAlreadyDelivered
		}
		return nil, ErrNotFound
	}
	return order, err
}

func (r *MongoOrderRepository) SetInventoryApplied(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"inventoryAppliedAt": at}},
	)
	return err
}

func (r *MongoOrderRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
