package services

import (
	"context"
	"sync"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StoreCredit is the outcome of crediting one store's balance.
type StoreCredit struct {
	StoreID  primitive.ObjectID
	Revenue  float64
	Credited float64
	Err      error
}

// RevenueDistributor splits an order's revenue across its sellers.
type RevenueDistributor interface {
	Distribute(ctx context.Context, items []models.OrderItem) []StoreCredit
}

// PayoutService credits each store's balance with its share of an order's
// revenue, net of the platform commission. Stores share no state, so credits
// run concurrently; every write is awaited and its outcome collected, and one
// store's failure never blocks or rolls back another's credit.
type PayoutService struct {
	stores repository.StoreRepository
	logger *zap.Logger
}

func NewPayoutService(stores repository.StoreRepository, logger *zap.Logger) *PayoutService {
	return &PayoutService{stores: stores, logger: logger}
}

func (s *PayoutService) Distribute(ctx context.Context, items []models.OrderItem) []StoreCredit {
	revenueByStore := make(map[primitive.ObjectID]float64)
	for _, item := range items {
		revenueByStore[item.Store] += item.Price * float64(item.Quantity)
	}
	if len(revenueByStore) == 0 {
		return nil
	}

	storeIDs := make([]primitive.ObjectID, 0, len(revenueByStore))
	for id := range revenueByStore {
		storeIDs = append(storeIDs, id)
	}

	stores, err := s.stores.FindByIDs(ctx, storeIDs)
	if err != nil {
		results := make([]StoreCredit, 0, len(storeIDs))
		for _, id := range storeIDs {
			results = append(results, StoreCredit{StoreID: id, Revenue: revenueByStore[id], Err: err})
		}
		return results
	}

	commissionByStore := make(map[primitive.ObjectID]float64, len(stores))
	for _, store := range stores {
		commissionByStore[store.ID] = store.CommissionRate
	}

	results := make([]StoreCredit, len(storeIDs))
	var wg sync.WaitGroup
	for i, id := range storeIDs {
		rate, known := commissionByStore[id]
		revenue := revenueByStore[id]
		if !known {
			results[i] = StoreCredit{StoreID: id, Revenue: revenue, Err: repository.ErrNotFound}
			continue
		}

		credit := revenue * (1 - rate)
		results[i] = StoreCredit{StoreID: id, Revenue: revenue, Credited: credit}

		wg.Add(1)
		go func(i int, id primitive.ObjectID, credit float64) {
			defer wg.Done()
			if err := s.stores.IncrementBalance(ctx, id, credit); err != nil {
				results[i].Err = err
				s.logger.Error("Failed to credit store balance",
					zap.String("store_id", id.Hex()),
					zap.Float64("amount", credit),
					zap.Error(err),
				)
			}
		}(i, id, credit)
	}
	wg.Wait()

	return results
}
