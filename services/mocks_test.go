package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/repository"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the service tests.

type memCartRepo struct {
	carts map[primitive.ObjectID]*models.Cart
}

func newMemCartRepo(carts ...*models.Cart) *memCartRepo {
	m := &memCartRepo{carts: make(map[primitive.ObjectID]*models.Cart)}
	for _, c := range carts {
		m.carts[c.ID] = c
	}
	return m
}

func (m *memCartRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Cart, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *memCartRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.carts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.carts, id)
	return nil
}

type memOrderRepo struct {
	orders   []*models.Order
	byIntent map[string]bool
	applied  map[primitive.ObjectID]time.Time
}

func newMemOrderRepo(orders ...*models.Order) *memOrderRepo {
	m := &memOrderRepo{
		byIntent: make(map[string]bool),
		applied:  make(map[primitive.ObjectID]time.Time),
	}
	for _, o := range orders {
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		m.orders = append(m.orders, o)
	}
	return m
}

func (m *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.PaymentIntentID != "" {
		if m.byIntent[order.PaymentIntentID] {
			return repository.ErrDuplicateOrder
		}
		m.byIntent[order.PaymentIntentID] = true
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	m.orders = append(m.orders, order)
	return nil
}

func (m *memOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrderRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.User == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) FindAll(_ context.Context, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) MarkPaid(_ context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			o.IsPaid = true
			o.PaidAt = &at
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrderRepo) MarkDelivered(_ context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			if o.IsDelivered {
				return nil, repository.ErrAlreadyDelivered
			}
			o.IsDelivered = true
			o.DeliveredAt = &at
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrderRepo) SetInventoryApplied(_ context.Context, id primitive.ObjectID, at time.Time) error {
	m.applied[id] = at
	return nil
}

type memProductRepo struct {
	products  map[primitive.ObjectID]*models.Product
	bulkCalls int
}

func newMemProductRepo(products ...*models.Product) *memProductRepo {
	m := &memProductRepo{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProductRepo) BulkAdjustCounters(_ context.Context, adjustments []repository.CounterAdjustment) (int64, error) {
	m.bulkCalls++
	var matched int64
	for _, adj := range adjustments {
		if p, ok := m.products[adj.ProductID]; ok {
			p.Quantity -= adj.Quantity
			p.Sold += adj.Quantity
			matched++
		}
	}
	return matched, nil
}

type memStoreRepo struct {
	mu     sync.Mutex
	stores map[primitive.ObjectID]*models.Store
	failOn map[primitive.ObjectID]error
}

func newMemStoreRepo(stores ...*models.Store) *memStoreRepo {
	m := &memStoreRepo{
		stores: make(map[primitive.ObjectID]*models.Store),
		failOn: make(map[primitive.ObjectID]error),
	}
	for _, s := range stores {
		m.stores[s.ID] = s
	}
	return m
}

func (m *memStoreRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Store
	for _, id := range ids {
		if s, ok := m.stores[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStoreRepo) IncrementBalance(_ context.Context, id primitive.ObjectID, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failOn[id]; ok {
		return err
	}
	s, ok := m.stores[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Balance += amount
	return nil
}

func (m *memStoreRepo) balance(id primitive.ObjectID) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores[id].Balance
}

type memUserRepo struct {
	byEmail map[string]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	m := &memUserRepo{byEmail: make(map[string]*models.User)}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// fakeGateway records outbound gateway calls.
type fakeGateway struct {
	customers int
	keys      []string
	intents   []PaymentIntentInput
	intentErr error
}

func (g *fakeGateway) CreateCustomer(_ context.Context) (string, error) {
	g.customers++
	return fmt.Sprintf("cus_%d", g.customers), nil
}

func (g *fakeGateway) CreateEphemeralKey(_ context.Context, customerID string) (string, error) {
	g.keys = append(g.keys, customerID)
	return "ek_secret_" + customerID, nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, in PaymentIntentInput) (*PaymentIntentResult, error) {
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	g.intents = append(g.intents, in)
	return &PaymentIntentResult{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

// fakeVerifier replays a canned event or a verification failure.
type fakeVerifier struct {
	event stripe.Event
	err   error
}

func (v *fakeVerifier) VerifyWebhook(_ []byte, _ string) (stripe.Event, error) {
	if v.err != nil {
		return stripe.Event{}, v.err
	}
	return v.event, nil
}

type fakePublisher struct {
	events []models.OrderEvent
}

func (p *fakePublisher) SendOrderEvent(_ context.Context, evt models.OrderEvent) error {
	p.events = append(p.events, evt)
	return nil
}
