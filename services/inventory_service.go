package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/repository"
)

// InventoryService is the only writer of stock counters. Every decrement
// goes through the repository's conditional update, so concurrent orders
// racing for the same product serialize per product and never oversell.
type InventoryService interface {
	ReserveAndCommit(ctx context.Context, lines []models.StockLine) error
	Release(ctx context.Context, lines []models.StockLine) error
	GetStock(ctx context.Context, productID string) (*models.StockLevel, error)
	SetStock(ctx context.Context, productID string, available int) (*models.StockLevel, error)
}

type inventoryService struct {
	repo   repository.StockRepository
	logger *zap.Logger
}

func NewInventoryService(repo repository.StockRepository, logger *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, logger: logger}
}

// ReserveAndCommit decrements every line or none. If a later line fails,
// the decrements already taken for this order are put back before the
// error is returned, so a partially reserved order is never visible.
func (s *inventoryService) ReserveAndCommit(ctx context.Context, lines []models.StockLine) error {
	committed := make([]models.StockLine, 0, len(lines))

	for _, line := range lines {
		if line.Quantity < 1 {
			s.rollback(ctx, committed)
			return apperrors.ErrValidation.WithDetail(fmt.Sprintf("invalid quantity for product %s", line.ProductID))
		}

		err := s.repo.DecrementIfAvailable(ctx, line.ProductID, line.Quantity)
		if err == nil {
			committed = append(committed, line)
			continue
		}

		s.rollback(ctx, committed)

		if errors.Is(err, repository.ErrInsufficientStock) || errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrStockUnavailable.WithDetail(line.ProductID)
		}
		return apperrors.New(500, "stock commit failed", err)
	}

	return nil
}

// Release restores quantities, on order cancellation before shipment and
// when order creation fails after the stock was already committed.
func (s *inventoryService) Release(ctx context.Context, lines []models.StockLine) error {
	var failed []string
	for _, line := range lines {
		if err := s.repo.Increment(ctx, line.ProductID, line.Quantity); err != nil {
			// a failed release means the ledger is now wrong; this is a
			// correctness violation and must surface, not just log
			s.logger.Error("stock release failed",
				zap.String("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
			failed = append(failed, line.ProductID)
		}
	}
	if len(failed) > 0 {
		return apperrors.New(500, fmt.Sprintf("stock release failed for products %v", failed), nil)
	}
	return nil
}

func (s *inventoryService) GetStock(ctx context.Context, productID string) (*models.StockLevel, error) {
	level, err := s.repo.Get(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return level, nil
}

// SetStock writes the absolute counter for a product, creating the
// ledger entry on first use. Admin surface; checkout only ever moves
// stock through the conditional decrement.
func (s *inventoryService) SetStock(ctx context.Context, productID string, available int) (*models.StockLevel, error) {
	if productID == "" {
		return nil, apperrors.ErrValidation.WithDetail("product_id is required")
	}
	if available < 0 {
		return nil, apperrors.ErrValidation.WithDetail("available must not be negative")
	}

	level := &models.StockLevel{ProductID: productID, Available: available}
	if err := s.repo.Upsert(ctx, level); err != nil {
		return nil, apperrors.New(500, "failed to write stock level", err)
	}

	s.logger.Info("stock level set",
		zap.String("product_id", productID),
		zap.Int("available", available),
	)
	return level, nil
}

func (s *inventoryService) rollback(ctx context.Context, committed []models.StockLine) {
	if len(committed) == 0 {
		return
	}
	if err := s.Release(ctx, committed); err != nil {
		s.logger.Error("rollback of partial reservation failed", zap.Error(err))
	}
}
