package services

import (
	"context"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/repository"
	"go.uber.org/zap"
)

// InventoryAdjuster applies the inventory effects of a completed checkout.
type InventoryAdjuster interface {
	Apply(ctx context.Context, items []models.OrderItem) error
}

// InventoryService moves product counters for ordered line items: quantity
// down by the ordered amount, sold up by the same amount, all submitted as a
// single batch. Decrements below zero are tolerated; a reconciliation pass
// owns fixing oversell.
type InventoryService struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewInventoryService(products repository.ProductRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{products: products, logger: logger}
}

func (s *InventoryService) Apply(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	adjustments := make([]repository.CounterAdjustment, 0, len(items))
	for _, item := range items {
		adjustments = append(adjustments, repository.CounterAdjustment{
			ProductID: item.Product,
			Quantity:  item.Quantity,
		})
	}

	matched, err := s.products.BulkAdjustCounters(ctx, adjustments)
	if err != nil {
		return err
	}

	if matched < int64(len(adjustments)) {
		// Filter misses do not abort the batch; surface them for reconciliation.
		s.logger.Warn("Inventory adjustment matched fewer products than ordered",
			zap.Int64("matched", matched),
			zap.Int("requested", len(adjustments)),
		)
	}
	return nil
}
