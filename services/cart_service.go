package services

import (
	"context"
	"sync"
	"time"

	"github.com/partspoint/autoparts-backend/catalog"
	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/repository"
)

// CartService manages session-scoped carts. Stock checks here are soft:
// availability is only reserved at checkout, never at add-time.
type CartService interface {
	Add(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error)
	Remove(ctx context.Context, sessionID, productID string) (*models.Cart, error)
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (*models.Cart, error)
}

type cartService struct {
	repo    repository.CartRepository
	catalog catalog.Gateway

	// serializes mutations per session so rapid repeated clicks merge
	// lines correctly; different sessions never contend
	locks sync.Map
}

func NewCartService(repo repository.CartRepository, catalogGw catalog.Gateway) CartService {
	return &cartService{
		repo:    repo,
		catalog: catalogGw,
	}
}

func (s *cartService) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// loadOrCreate returns the session's cart, creating an empty one on first
// reference to an unseen session id.
func (s *cartService) loadOrCreate(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		return nil, apperrors.New(500, "failed to load cart", err)
	}
	if cart == nil {
		cart = &models.Cart{
			SessionID: sessionID,
			Items:     []models.CartItem{},
			CreatedAt: time.Now(),
		}
	}
	return cart, nil
}

func (s *cartService) Add(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.ErrInvalidQuantity
	}

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	if idx := cart.FindItem(productID); idx >= 0 {
		requested += cart.Items[idx].Quantity
	}
	if product.StockQuantity < requested {
		return nil, apperrors.ErrInsufficientStock.WithDetail(product.Name)
	}

	if idx := cart.FindItem(productID); idx >= 0 {
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:   productID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
		})
	}

	cart.RecalculateTotal()
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return nil, apperrors.New(500, "failed to save cart", err)
	}
	return cart, nil
}

func (s *cartService) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.Remove(ctx, sessionID, productID)
	}

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		// nothing to update; the cart is returned unchanged
		return cart, nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.StockQuantity < quantity {
		return nil, apperrors.ErrInsufficientStock.WithDetail(product.Name)
	}

	cart.Items[idx].Quantity = quantity
	cart.RecalculateTotal()
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return nil, apperrors.New(500, "failed to save cart", err)
	}
	return cart, nil
}

func (s *cartService) Remove(ctx context.Context, sessionID, productID string) (*models.Cart, error) {
	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		// removing an absent line is a no-op
		return cart, nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.RecalculateTotal()
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return nil, apperrors.New(500, "failed to save cart", err)
	}
	return cart, nil
}

// Clear empties the cart but keeps the session record around, so the
// shopper's next add lands in the same session.
func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return err
	}

	cart.Items = []models.CartItem{}
	cart.RecalculateTotal()
	return s.repo.SaveCart(ctx, cart)
}

func (s *cartService) Snapshot(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		return nil, apperrors.New(500, "failed to load cart", err)
	}
	if cart == nil {
		// unseen sessions read as an empty cart, never an error
		cart = &models.Cart{
			SessionID: sessionID,
			Items:     []models.CartItem{},
		}
	}
	return cart, nil
}
