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

func orderRows(id uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "order_number", "user_id", "customer_name", "customer_email",
		"customer_phone", "customer_address", "total_amount", "status",
		"payment_status", "created_at", "updated_at",
	}).AddRow(
		id, "ORD-20260830-abcd1234", "user-7", "Grace Wanjiku", "grace@example.com",
		"254712345678", "Moi Avenue, Nairobi", 1000.0, models.OrderStatusPending,
		models.PaymentStatusUnpaid, now, now,
	)
}

func TestOrderFindByID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(orderRows(id))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "product_id", "product_name", "unit_price", "quantity", "subtotal",
		}).AddRow(uuid.New(), id, "brake-pad-01", "Brake Pad Set", 500.0, 2, 1000.0))

	order, err := repo.FindByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "ORD-20260830-abcd1234", order.OrderNumber)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestOrderFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	order, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, order)
}

func TestOrderUpdateStatus_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), uuid.New(),
		models.OrderStatusPending, models.OrderStatusConfirmed)
	assert.NoError(t, err)
}

// The update is conditional on the status the caller read; a row that
// moved on in the meantime matches nothing.
func TestOrderUpdateStatus_StaleStatusConflicts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), uuid.New(),
		models.OrderStatusPending, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestOrderUpdatePaymentStatusIf_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePaymentStatusIf(context.Background(), uuid.New(),
		models.PaymentStatusAwaiting, models.PaymentStatusUnpaid, models.PaymentStatusFailed)
	assert.NoError(t, err)
}

func TestOrderUpdatePaymentStatusIf_AlreadyClaimed(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdatePaymentStatusIf(context.Background(), uuid.New(),
		models.PaymentStatusAwaiting, models.PaymentStatusUnpaid)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestOrderUpdatePaymentStatus_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePaymentStatus(context.Background(), uuid.New(), models.PaymentStatusPaid)
	assert.NoError(t, err)
}

func TestOrderFindByUserID_Empty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	orders, err := repo.FindByUserID(context.Background(), "user-none")
	assert.NoError(t, err)
	assert.Empty(t, orders)
}
