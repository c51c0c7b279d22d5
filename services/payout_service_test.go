package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestDistribute_CreditsNetOfCommission(t *testing.T) {
	storeA := primitive.NewObjectID()
	storeB := primitive.NewObjectID()
	stores := newMemStoreRepo(
		&models.Store{ID: storeA, CommissionRate: 0.1},
		&models.Store{ID: storeB, CommissionRate: 0.2},
	)
	svc := NewPayoutService(stores, zap.NewNop())

	items := []models.OrderItem{
		{Store: storeA, Quantity: 2, Price: 25}, // 50
		{Store: storeA, Quantity: 1, Price: 50}, // 50, storeA revenue 100
		{Store: storeB, Quantity: 1, Price: 50}, // storeB revenue 50
	}

	results := svc.Distribute(context.Background(), items)
	require.Len(t, results, 2)
	for _, credit := range results {
		require.NoError(t, credit.Err)
	}

	assert.Equal(t, 90.0, stores.balance(storeA), "100 net of 10 percent commission")
	assert.Equal(t, 40.0, stores.balance(storeB), "50 net of 20 percent commission")
}

func TestDistribute_FailuresAreIndependent(t *testing.T) {
	storeA := primitive.NewObjectID()
	storeB := primitive.NewObjectID()
	stores := newMemStoreRepo(
		&models.Store{ID: storeA, CommissionRate: 0.1},
		&models.Store{ID: storeB, CommissionRate: 0.1},
	)
	stores.failOn[storeA] = fmt.Errorf("write conflict")
	svc := NewPayoutService(stores, zap.NewNop())

	items := []models.OrderItem{
		{Store: storeA, Quantity: 1, Price: 100},
		{Store: storeB, Quantity: 1, Price: 100},
	}

	results := svc.Distribute(context.Background(), items)
	require.Len(t, results, 2)

	byStore := make(map[primitive.ObjectID]StoreCredit)
	for _, credit := range results {
		byStore[credit.StoreID] = credit
	}

	assert.Error(t, byStore[storeA].Err)
	assert.NoError(t, byStore[storeB].Err)
	assert.Equal(t, 0.0, stores.balance(storeA))
	assert.Equal(t, 90.0, stores.balance(storeB), "one store's failure never blocks another's credit")
}

func TestDistribute_NoItems(t *testing.T) {
	svc := NewPayoutService(newMemStoreRepo(), zap.NewNop())
	assert.Nil(t, svc.Distribute(context.Background(), nil))
}

func TestDistribute_UnknownStore(t *testing.T) {
	known := primitive.NewObjectID()
	orphan := primitive.NewObjectID()
	stores := newMemStoreRepo(&models.Store{ID: known, CommissionRate: 0.1})
	svc := NewPayoutService(stores, zap.NewNop())

	items := []models.OrderItem{
		{Store: known, Quantity: 1, Price: 100},
		{Store: orphan, Quantity: 1, Price: 100},
	}

	results := svc.Distribute(context.Background(), items)
	require.Len(t, results, 2)

	byStore := make(map[primitive.ObjectID]StoreCredit)
	for _, credit := range results {
		byStore[credit.StoreID] = credit
	}

	assert.NoError(t, byStore[known].Err)
	assert.Error(t, byStore[orphan].Err)
	assert.Equal(t, 90.0, stores.balance(known))
}
