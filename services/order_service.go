package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partspoint/autoparts-backend/catalog"
	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/kafka"
	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/repository"
)

type PlaceOrderRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required"`
	CustomerPhone   string `json:"customer_phone" binding:"required"`
	CustomerAddress string `json:"customer_address" binding:"required"`
	CartSessionID   string `json:"cart_session_id" binding:"required"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, req *PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orders    repository.OrderRepository
	carts     CartService
	inventory InventoryService
	catalog   catalog.Gateway
	producer  kafka.ProducerAPI
	logger    *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	carts CartService,
	inventory InventoryService,
	catalogGw catalog.Gateway,
	producer kafka.ProducerAPI,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orders:    orders,
		carts:     carts,
		inventory: inventory,
		catalog:   catalogGw,
		producer:  producer,
		logger:    logger,
	}
}

// PlaceOrder turns the session's cart into an order. Totals are always
// recomputed server-side from current catalog prices; a stale cart price
// never makes it into an order. The order and its stock commit succeed or
// fail together, and the cart is cleared only after both have.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, req *PlaceOrderRequest) (*models.Order, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}

	cart, err := s.carts.Snapshot(ctx, req.CartSessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.ErrValidation.WithDetail("cart is empty")
	}

	orderID := uuid.New()
	items := make([]models.OrderItem, 0, len(cart.Items))
	lines := make([]models.StockLine, 0, len(cart.Items))
	total := 0.0

	// Revalidate every line against the live catalog. All-or-nothing: a
	// single unavailable product fails the whole order.
	for _, cartItem := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, cartItem.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrProductNotFound) {
				return nil, apperrors.ErrStockUnavailable.WithDetail(cartItem.ProductName)
			}
			return nil, apperrors.New(500, "catalog lookup failed", err)
		}
		if product.StockQuantity < cartItem.Quantity {
			return nil, apperrors.ErrStockUnavailable.WithDetail(product.Name)
		}

		subtotal := product.Price * float64(cartItem.Quantity)
		items = append(items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   cartItem.ProductID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    cartItem.Quantity,
			Subtotal:    subtotal,
		})
		lines = append(lines, models.StockLine{
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
		})
		total += subtotal
	}

	// Commit stock before the order exists, so an observed order always
	// has its stock decremented.
	if err := s.inventory.ReserveAndCommit(ctx, lines); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              orderID,
		OrderNumber:     newOrderNumber(),
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
		Items:           items,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// no order row, so the reserved units go back
		if relErr := s.inventory.Release(ctx, lines); relErr != nil {
			s.logger.Error("failed to release stock after order create failure",
				zap.String("order_id", orderID.String()),
				zap.Error(relErr),
			)
		}
		return nil, apperrors.New(500, "failed to create order", err)
	}

	if err := s.carts.Clear(ctx, req.CartSessionID); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("session_id", req.CartSessionID),
			zap.Error(err),
		)
	}

	if err := s.producer.SendOrderCreatedEvent(ctx, models.OrderCreatedEvent{
		Event:       "order.created",
		OrderID:     orderID.String(),
		UserID:      userID,
		SessionID:   req.CartSessionID,
		TotalAmount: total,
		Items:       items,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish order.created event",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("order created",
		zap.String("order_id", orderID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total_amount", total),
		zap.Int("items", len(items)),
	)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithDetail("order")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.orders.FindAll(ctx, limit)
}

func (s *orderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.FindByUserID(ctx, userID)
}

// UpdateStatus applies an admin-driven fulfillment transition.
// Cancellation before shipment puts the order's units back on the ledger.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, apperrors.ErrValidation.WithDetail(fmt.Sprintf("unknown status %q", status))
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, apperrors.ErrInvalidTransition.WithDetail(
			fmt.Sprintf("%s -> %s", order.Status, status))
	}

	// compare-and-set on the status read above: of two racing
	// transitions only one lands, so a cancellation releases its
	// units exactly once
	if err := s.orders.UpdateStatus(ctx, id, order.Status, status); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.ErrInvalidTransition.WithDetail(
				fmt.Sprintf("%s -> %s", order.Status, status))
		}
		return nil, apperrors.New(500, "failed to update order status", err)
	}

	if status == models.OrderStatusCancelled {
		lines := make([]models.StockLine, 0, len(order.Items))
		for _, item := range order.Items {
			lines = append(lines, models.StockLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		if err := s.inventory.Release(ctx, lines); err != nil {
			return nil, err
		}
		s.logger.Info("released stock for cancelled order",
			zap.String("order_id", id.String()),
			zap.Int("lines", len(lines)),
		)
	}

	order.Status = status
	order.UpdatedAt = time.Now()
	return order, nil
}

func validateCustomer(req *PlaceOrderRequest) error {
	switch {
	case req.CustomerName == "":
		return apperrors.ErrValidation.WithDetail("customer_name is required")
	case req.CustomerEmail == "":
		return apperrors.ErrValidation.WithDetail("customer_email is required")
	case req.CustomerPhone == "":
		return apperrors.ErrValidation.WithDetail("customer_phone is required")
	case req.CustomerAddress == "":
		return apperrors.ErrValidation.WithDetail("customer_address is required")
	case req.CartSessionID == "":
		return apperrors.ErrValidation.WithDetail("cart_session_id is required")
	}
	return nil
}

func newOrderNumber() string {
	return "ORD-" + time.Now().Format("20060102-150405") + "-" + uuid.New().String()[:8]
}
