package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/kafka"
	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/repository"
)

type PaymentService interface {
	InitiatePush(ctx context.Context, orderID uuid.UUID, phoneNumber string) (*models.PaymentRequest, error)
	HandleCallback(ctx context.Context, payload *STKCallbackPayload, rawPayload []byte) error
	Status(ctx context.Context, orderID uuid.UUID) (*PaymentStatusView, error)
}

// PaymentStatusView is the poll surface for a checkout page waiting on
// the asynchronous confirmation.
type PaymentStatusView struct {
	OrderID           string                `json:"order_id"`
	PaymentStatus     models.PaymentStatus  `json:"payment_status"`
	CheckoutRequestID string                `json:"checkout_request_id,omitempty"`
	Outcome           models.PaymentOutcome `json:"outcome,omitempty"`
	ResultDesc        string                `json:"result_desc,omitempty"`
}

type paymentService struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	gateway  PaymentGateway
	producer kafka.ProducerAPI
	logger   *zap.Logger
}

func NewPaymentService(
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	gateway PaymentGateway,
	producer kafka.ProducerAPI,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		producer: producer,
		logger:   logger,
	}
}

// InitiatePush asks the gateway to prompt the payer's device for the
// order's total. The order must be payable: no duplicate push for an
// order that is already paid or has one in flight. If the gateway is
// unreachable the order is left payable again, never stuck awaiting a
// confirmation that can't arrive.
func (s *paymentService) InitiatePush(ctx context.Context, orderID uuid.UUID, phoneNumber string) (*models.PaymentRequest, error) {
	if phoneNumber == "" {
		return nil, apperrors.ErrValidation.WithDetail("phone_number is required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithDetail("order")
	}
	if err != nil {
		return nil, apperrors.New(500, "failed to load order", err)
	}

	if order.PaymentStatus != models.PaymentStatusUnpaid && order.PaymentStatus != models.PaymentStatusFailed {
		return nil, apperrors.ErrInvalidPaymentState.WithDetail(string(order.PaymentStatus))
	}

	// claim the order with a conditional write: two concurrent pushes
	// both read a payable status, but only one claim lands, so there is
	// never more than one request in flight per order
	err = s.orders.UpdatePaymentStatusIf(ctx, orderID, models.PaymentStatusAwaiting,
		models.PaymentStatusUnpaid, models.PaymentStatusFailed)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperrors.ErrInvalidPaymentState.WithDetail("payment already in flight")
	}
	if err != nil {
		return nil, apperrors.New(500, "failed to update payment status", err)
	}

	pushResp, err := s.gateway.InitiateSTKPush(ctx, order.TotalAmount, phoneNumber, order.OrderNumber)
	if err != nil {
		s.logger.Warn("gateway push failed, reverting payment status",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		if revertErr := s.orders.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusUnpaid); revertErr != nil {
			s.logger.Error("failed to revert payment status",
				zap.String("order_id", orderID.String()),
				zap.Error(revertErr),
			)
		}
		return nil, apperrors.ErrGatewayUnavailable
	}

	request := &models.PaymentRequest{
		ID:                uuid.New(),
		OrderID:           orderID,
		CheckoutRequestID: pushResp.CheckoutRequestID,
		MerchantRequestID: pushResp.MerchantRequestID,
		Amount:            order.TotalAmount,
		PhoneNumber:       phoneNumber,
		Outcome:           models.PaymentOutcomePending,
	}
	if err := s.payments.Create(ctx, request); err != nil {
		if revertErr := s.orders.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusUnpaid); revertErr != nil {
			s.logger.Error("failed to revert payment status",
				zap.String("order_id", orderID.String()),
				zap.Error(revertErr),
			)
		}
		return nil, apperrors.New(500, "failed to record payment request", err)
	}

	s.logger.Info("push payment initiated",
		zap.String("order_id", orderID.String()),
		zap.String("checkout_request_id", request.CheckoutRequestID),
		zap.Float64("amount", request.Amount),
	)
	return request, nil
}

// HandleCallback applies the gateway's asynchronous result. Unknown
// transaction references are rejected without touching any order, so a
// spoofed callback cannot mutate state. Re-delivered callbacks land on a
// terminal payment and become no-ops: paid stays paid even if a late
// failure arrives for the same reference.
func (s *paymentService) HandleCallback(ctx context.Context, payload *STKCallbackPayload, rawPayload []byte) error {
	cb := payload.Body.StkCallback

	request, err := s.payments.FindByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("callback for unknown transaction reference",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
		)
		return apperrors.ErrUnknownTransaction
	}
	if err != nil {
		return apperrors.New(500, "failed to load payment request", err)
	}

	order, err := s.orders.FindByID(ctx, request.OrderID)
	if err != nil {
		return apperrors.New(500, "failed to load order for payment", err)
	}

	success := cb.ResultCode == 0
	outcome := models.PaymentOutcomeFailed
	newStatus := models.PaymentStatusFailed
	eventType := "payment.failed"
	if success {
		outcome = models.PaymentOutcomeSuccess
		newStatus = models.PaymentStatusPaid
		eventType = "payment.succeeded"
	}

	// the payment state machine decides whether this result still
	// applies: paid is terminal, and a re-delivered failure lands on a
	// state that already matches
	if !order.PaymentStatus.CanTransitionTo(newStatus) {
		s.logger.Info("callback ignored, no transition applies",
			zap.String("order_id", order.ID.String()),
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.String("payment_status", string(order.PaymentStatus)),
			zap.String("outcome", string(outcome)),
		)
		return nil
	}

	resultCode := cb.ResultCode
	if err := s.payments.Update(ctx, request.ID, map[string]interface{}{
		"outcome":     outcome,
		"result_code": &resultCode,
		"result_desc": cb.ResultDesc,
		"raw_payload": string(rawPayload),
		"updated_at":  time.Now(),
	}); err != nil {
		return apperrors.New(500, "failed to update payment request", err)
	}

	if err := s.orders.UpdatePaymentStatus(ctx, order.ID, newStatus); err != nil {
		return apperrors.New(500, "failed to update order payment status", err)
	}

	if err := s.producer.SendPaymentEvent(ctx, models.PaymentEvent{
		Type:      eventType,
		OrderID:   order.ID.String(),
		PaymentID: request.ID.String(),
		Amount:    request.Amount,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("payment callback applied",
		zap.String("order_id", order.ID.String()),
		zap.String("checkout_request_id", cb.CheckoutRequestID),
		zap.String("outcome", string(outcome)),
		zap.String("result_desc", fmt.Sprintf("%d: %s", cb.ResultCode, cb.ResultDesc)),
	)
	return nil
}

// Status reports the order's payment state and, when a push has been
// initiated, the latest attempt's outcome.
func (s *paymentService) Status(ctx context.Context, orderID uuid.UUID) (*PaymentStatusView, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithDetail("order")
	}
	if err != nil {
		return nil, apperrors.New(500, "failed to load order", err)
	}

	view := &PaymentStatusView{
		OrderID:       order.ID.String(),
		PaymentStatus: order.PaymentStatus,
	}

	request, err := s.payments.FindLatestByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		// no push initiated yet
		return view, nil
	}
	if err != nil {
		return nil, apperrors.New(500, "failed to load payment request", err)
	}

	view.CheckoutRequestID = request.CheckoutRequestID
	view.Outcome = request.Outcome
	view.ResultDesc = request.ResultDesc
	return view, nil
}
