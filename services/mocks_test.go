package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/partspoint/autoparts-backend/catalog"
	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/repository"
)

// ---- in-memory cart repository ----

type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]*models.Cart)}
}

func (r *memCartRepo) GetCart(_ context.Context, sessionID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (r *memCartRepo) SaveCart(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.SessionID] = &copied
	return nil
}

func (r *memCartRepo) DeleteCart(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

// errCartRepo fails every operation with a fixed error.
type errCartRepo struct {
	err error
}

func (r *errCartRepo) GetCart(context.Context, string) (*models.Cart, error) { return nil, r.err }
func (r *errCartRepo) SaveCart(context.Context, *models.Cart) error          { return r.err }
func (r *errCartRepo) DeleteCart(context.Context, string) error              { return r.err }

// ---- in-memory stock repository with conditional decrement ----

type memStockRepo struct {
	mu     sync.Mutex
	levels map[string]int
}

func newMemStockRepo(levels map[string]int) *memStockRepo {
	copied := make(map[string]int, len(levels))
	for k, v := range levels {
		copied[k] = v
	}
	return &memStockRepo{levels: copied}
}

func (r *memStockRepo) Get(_ context.Context, productID string) (*models.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	available, ok := r.levels[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.StockLevel{ProductID: productID, Available: available}, nil
}

func (r *memStockRepo) Upsert(_ context.Context, level *models.StockLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels[level.ProductID] = level.Available
	return nil
}

func (r *memStockRepo) DecrementIfAvailable(_ context.Context, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	available, ok := r.levels[productID]
	if !ok {
		return repository.ErrNotFound
	}
	if available < quantity {
		return repository.ErrInsufficientStock
	}
	r.levels[productID] = available - quantity
	return nil
}

func (r *memStockRepo) Increment(_ context.Context, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.levels[productID]; !ok {
		return repository.ErrNotFound
	}
	r.levels[productID] += quantity
	return nil
}

func (r *memStockRepo) available(productID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels[productID]
}

// ---- in-memory order repository ----

type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	createErr error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepo) FindAll(_ context.Context, limit int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, *order)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return repository.ErrConflict
	}
	order.Status = to
	return nil
}

func (r *memOrderRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.PaymentStatus = status
	return nil
}

func (r *memOrderRepo) UpdatePaymentStatusIf(_ context.Context, id uuid.UUID, to models.PaymentStatus, from ...models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrConflict
	}
	for _, s := range from {
		if order.PaymentStatus == s {
			order.PaymentStatus = to
			return nil
		}
	}
	return repository.ErrConflict
}

// gatedOrderRepo holds every FindByID caller at a barrier so concurrent
// callers all observe the same stored state before any of them writes.
type gatedOrderRepo struct {
	*memOrderRepo
	barrier *sync.WaitGroup
}

func (r *gatedOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := r.memOrderRepo.FindByID(ctx, id)
	if r.barrier != nil {
		r.barrier.Done()
		r.barrier.Wait()
	}
	return order, err
}

func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// ---- in-memory payment repository ----

type memPaymentRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*models.PaymentRequest
	byRef    map[string]uuid.UUID
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{
		requests: make(map[uuid.UUID]*models.PaymentRequest),
		byRef:    make(map[string]uuid.UUID),
	}
}

func (r *memPaymentRepo) Create(_ context.Context, request *models.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *request
	r.requests[request.ID] = &copied
	r.byRef[request.CheckoutRequestID] = request.ID
	return nil
}

func (r *memPaymentRepo) FindByCheckoutRequestID(_ context.Context, ref string) (*models.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *r.requests[id]
	return &copied, nil
}

func (r *memPaymentRepo) FindLatestByOrderID(_ context.Context, orderID uuid.UUID) (*models.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.PaymentRequest
	for _, request := range r.requests {
		if request.OrderID == orderID {
			if latest == nil || request.CreatedAt.After(latest.CreatedAt) {
				latest = request
			}
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *memPaymentRepo) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := updates["outcome"]; ok {
		request.Outcome = v.(models.PaymentOutcome)
	}
	if v, ok := updates["result_desc"]; ok {
		request.ResultDesc = v.(string)
	}
	if v, ok := updates["raw_payload"]; ok {
		request.RawPayload = v.(string)
	}
	if v, ok := updates["result_code"]; ok {
		request.ResultCode = v.(*int)
	}
	return nil
}

func (r *memPaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// ---- static catalog gateway ----

type staticCatalog struct {
	mu       sync.Mutex
	products map[string]catalog.Product
}

func newStaticCatalog(products ...catalog.Product) *staticCatalog {
	m := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &staticCatalog{products: m}
}

func (c *staticCatalog) GetProduct(_ context.Context, productID string) (*catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	copied := p
	return &copied, nil
}

func (c *staticCatalog) remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, productID)
}

func (c *staticCatalog) setPrice(productID string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[productID]
	p.Price = price
	c.products[productID] = p
}

// ---- recording event producer ----

type recordingProducer struct {
	mu            sync.Mutex
	orderEvents   []models.OrderCreatedEvent
	paymentEvents []models.PaymentEvent
	sendErr       error
}

func (p *recordingProducer) SendOrderCreatedEvent(_ context.Context, event models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.orderEvents = append(p.orderEvents, event)
	return nil
}

func (p *recordingProducer) SendPaymentEvent(_ context.Context, event models.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.paymentEvents = append(p.paymentEvents, event)
	return nil
}

func (p *recordingProducer) paymentEventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paymentEvents)
}

// ---- scripted payment gateway ----

type scriptedGateway struct {
	mu       sync.Mutex
	pushErr  error
	nextRef  string
	requests []string
}

func (g *scriptedGateway) InitiateSTKPush(_ context.Context, amount float64, phoneNumber, accountReference string) (*STKPushResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pushErr != nil {
		return nil, g.pushErr
	}
	ref := g.nextRef
	if ref == "" {
		ref = "ws_CO_" + uuid.New().String()
	}
	g.requests = append(g.requests, accountReference)
	return &STKPushResponse{
		MerchantRequestID: "merchant-1",
		CheckoutRequestID: ref,
		ResponseCode:      "0",
		ResponseDesc:      "Success. Request accepted for processing",
	}, nil
}
