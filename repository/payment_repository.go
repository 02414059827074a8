package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partspoint/autoparts-backend/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, request *models.PaymentRequest) error
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.PaymentRequest, error)
	FindLatestByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentRequest, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Create(ctx context.Context, request *models.PaymentRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *gormPaymentRepo) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.PaymentRequest, error) {
	var request models.PaymentRequest
	err := r.db.WithContext(ctx).
		First(&request, "checkout_request_id = ?", checkoutRequestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormPaymentRepo) FindLatestByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentRequest, error) {
	var request models.PaymentRequest
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormPaymentRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentRequest{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
