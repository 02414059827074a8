package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/repository"
)

func paymentRows(id, orderID uuid.UUID, ref string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "order_id", "checkout_request_id", "merchant_request_id",
		"amount", "phone_number", "outcome", "result_code", "result_desc",
		"raw_payload", "created_at", "updated_at",
	}).AddRow(
		id, orderID, ref, "merchant-1",
		1000.0, "254712345678", models.PaymentOutcomePending, nil, "",
		"", now, now,
	)
}

func TestPaymentFindByCheckoutRequestID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	id := uuid.New()
	orderID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_requests"`)).
		WillReturnRows(paymentRows(id, orderID, "ws_CO_0001"))

	request, err := repo.FindByCheckoutRequestID(context.Background(), "ws_CO_0001")
	assert.NoError(t, err)
	assert.Equal(t, orderID, request.OrderID)
	assert.Equal(t, models.PaymentOutcomePending, request.Outcome)
	assert.Nil(t, request.ResultCode)
}

func TestPaymentFindByCheckoutRequestID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_requests"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	request, err := repo.FindByCheckoutRequestID(context.Background(), "ws_CO_spoofed")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, request)
}

func TestPaymentFindLatestByOrderID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	orderID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_requests"`)).
		WillReturnRows(paymentRows(uuid.New(), orderID, "ws_CO_0002"))

	request, err := repo.FindLatestByOrderID(context.Background(), orderID)
	assert.NoError(t, err)
	assert.Equal(t, "ws_CO_0002", request.CheckoutRequestID)
}

func TestPaymentUpdate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payment_requests"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), uuid.New(), map[string]interface{}{
		"outcome":     models.PaymentOutcomeSuccess,
		"result_desc": "The service request is processed successfully.",
	})
	assert.NoError(t, err)
}

func TestPaymentUpdate_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payment_requests"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), uuid.New(), map[string]interface{}{
		"outcome": models.PaymentOutcomeFailed,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
