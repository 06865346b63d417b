package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// fakeTx — заглушка pgx.Tx для транзакционных usecase-тестов.
type fakeTx struct {
	commits   int
	rollbacks int
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return nil
}
func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return nil
}
func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }

type fakeDB struct {
	tx *fakeTx
}

func newFakeDB() *fakeDB {
	return &fakeDB{tx: &fakeTx{}}
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return d.tx, nil
}

func (d *fakeDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return d.tx, nil
}

// fakePriceCache — кэш цен в памяти для тестов.
type fakePriceCache struct {
	prices map[uuid.UUID]decimal.Decimal
	gets   int
	hits   int
}

func newFakePriceCache() *fakePriceCache {
	return &fakePriceCache{prices: make(map[uuid.UUID]decimal.Decimal)}
}

func (c *fakePriceCache) GetPrice(_ context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	c.gets++
	price, ok := c.prices[productID]
	if ok {
		c.hits++
	}
	return price, ok, nil
}

func (c *fakePriceCache) SetPrice(_ context.Context, productID uuid.UUID, price decimal.Decimal) error {
	c.prices[productID] = price
	return nil
}

func (c *fakePriceCache) InvalidatePrices(_ context.Context, productIDs []uuid.UUID) error {
	for _, id := range productIDs {
		delete(c.prices, id)
	}
	return nil
}

// mockProductRepo повторяет семантику условных UPDATE поверх map.
type mockProductRepo struct {
	products map[uuid.UUID]*domain.Product
	// decrementConflicts заставляет DecrementStock проигрывать гонку
	// указанное число раз.
	decrementConflicts map[uuid.UUID]int
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products:           make(map[uuid.UUID]*domain.Product),
		decrementConflicts: make(map[uuid.UUID]int),
	}
}

func (m *mockProductRepo) add(p *domain.Product) *domain.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepo) clone(p *domain.Product) *domain.Product {
	cp := *p
	if p.Discount != nil {
		d := *p.Discount
		cp.Discount = &d
	}
	return &cp
}

func (m *mockProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	product.ID = uuid.New()
	product.CreatedAt = time.Now()
	m.products[product.ID] = m.clone(product)
	return m.clone(product), nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return m.clone(p), nil
}

func (m *mockProductRepo) List(_ context.Context, query *ListProductsQuery) ([]domain.Product, error) {
	all := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if !p.IsAvailable {
			continue
		}
		if query.StoreID != nil && p.StoreID != *query.StoreID {
			continue
		}
		if query.CategoryID != nil && p.CategoryID != *query.CategoryID {
			continue
		}
		all = append(all, p)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})

	result := make([]domain.Product, 0, query.Limit)
	for _, p := range all {
		if query.Cursor != nil {
			if p.CreatedAt.After(query.Cursor.CreatedAt) {
				continue
			}
			if p.CreatedAt.Equal(query.Cursor.CreatedAt) && p.ID.String() >= query.Cursor.ID.String() {
				continue
			}
		}
		result = append(result, *m.clone(p))
		if int32(len(result)) == query.Limit {
			break
		}
	}

	return result, nil
}

func (m *mockProductRepo) BestSellers(_ context.Context, limit int32) ([]domain.Product, error) {
	all := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.IsAvailable {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TotalSell > all[j].TotalSell })

	result := make([]domain.Product, 0, limit)
	for _, p := range all {
		result = append(result, *m.clone(p))
		if int32(len(result)) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockProductRepo) UpdateWithVersion(_ context.Context, product *domain.Product) (*domain.Product, error) {
	stored, ok := m.products[product.ID]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	if stored.Version != product.Version {
		return nil, e.ErrVersionConflict
	}

	updated := m.clone(product)
	updated.Version++
	m.products[product.ID] = updated
	return m.clone(updated), nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int32, version int32) (*domain.Product, error) {
	stored, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	if m.decrementConflicts[id] > 0 {
		m.decrementConflicts[id]--
		// Проигранная гонка: версия уже ушла вперёд.
		stored.Version++
		return nil, e.ErrVersionConflict
	}

	if stored.Version != version || stored.Quantity < quantity {
		return nil, e.ErrVersionConflict
	}

	stored.Quantity -= quantity
	stored.TotalSell += quantity
	stored.IsAvailable = stored.Quantity > 0
	stored.Version++
	return m.clone(stored), nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return e.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) ListDiscountsToActivate(_ context.Context, today time.Time) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for id, p := range m.products {
		if p.Discount != nil && !p.Discount.Active && p.Discount.WindowContains(today) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockProductRepo) ListDiscountsToDeactivate(_ context.Context, today time.Time) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for id, p := range m.products {
		if p.Discount != nil && p.Discount.Active && p.Discount.EndDate != nil &&
			domain.DateOnly(*p.Discount.EndDate).Before(domain.DateOnly(today)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockProductRepo) ActivateDiscount(_ context.Context, id uuid.UUID, today time.Time) (bool, error) {
	p, ok := m.products[id]
	if !ok {
		return false, e.ErrProductNotFound
	}
	if p.Discount == nil || p.Discount.Active || !p.Discount.WindowContains(today) {
		return false, nil
	}
	p.Discount.Active = true
	p.Version++
	return true, nil
}

func (m *mockProductRepo) DeactivateDiscount(_ context.Context, id uuid.UUID, today time.Time) (bool, error) {
	p, ok := m.products[id]
	if !ok {
		return false, e.ErrProductNotFound
	}
	if p.Discount == nil || !p.Discount.Active || p.Discount.EndDate == nil ||
		!domain.DateOnly(*p.Discount.EndDate).Before(domain.DateOnly(today)) {
		return false, nil
	}
	p.Discount.Active = false
	p.Version++
	return true, nil
}

type mockCartRepo struct {
	items map[uuid.UUID][]domain.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{items: make(map[uuid.UUID][]domain.CartItem)}
}

func (m *mockCartRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	return append([]domain.CartItem(nil), m.items[userID]...), nil
}

func (m *mockCartRepo) Upsert(_ context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	existing := m.items[item.UserID]
	for i := range existing {
		if existing[i].ProductID == item.ProductID {
			existing[i].Quantity += item.Quantity
			return &existing[i], nil
		}
	}
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	m.items[item.UserID] = append(existing, *item)
	return item, nil
}

func (m *mockCartRepo) UpdateQuantity(_ context.Context, userID, productID uuid.UUID, quantity int32) error {
	items := m.items[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return nil
		}
	}
	return e.ErrCartItemNotFound
}

func (m *mockCartRepo) Delete(_ context.Context, userID, productID uuid.UUID) error {
	items := m.items[userID]
	for i := range items {
		if items[i].ProductID == productID {
			m.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return e.ErrCartItemNotFound
}

func (m *mockCartRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	delete(m.items, userID)
	return nil
}

type mockOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	m.orders[order.ID] = order
	return order, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Order, error) {
	result := make([]domain.Order, 0)
	for _, order := range m.orders {
		if order.UserID == userID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (m *mockOrderRepo) ListByStore(_ context.Context, storeID int64) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	order, ok := m.orders[id]
	if !ok {
		return e.ErrOrderNotFound
	}
	if order.Status != from {
		return e.ErrInvalidStatusTransition
	}
	order.Status = to
	return nil
}

func (m *mockOrderRepo) SetPaymentMethod(_ context.Context, id uuid.UUID, method string) error {
	order, ok := m.orders[id]
	if !ok {
		return e.ErrOrderNotFound
	}
	order.PaymentMethod = &method
	return nil
}

type mockOutboxRepo struct {
	events []*OutboxEvent
}

func newMockOutboxRepo() *mockOutboxRepo {
	return &mockOutboxRepo{}
}

func (m *mockOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	event.ID = int64(len(m.events) + 1)
	m.events = append(m.events, event)
	return event, nil
}

func (m *mockOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*OutboxEvent, error) {
	result := make([]*OutboxEvent, 0, limit)
	for _, ev := range m.events {
		if ev.Status == Pending {
			ev.Status = Processing
			result = append(result, ev)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	for _, ev := range m.events {
		if ev.ID == id {
			ev.Status = Processed
		}
	}
	return nil
}

type mockStoreRepo struct {
	stores map[int64]*domain.Store
}

func newMockStoreRepo() *mockStoreRepo {
	return &mockStoreRepo{stores: make(map[int64]*domain.Store)}
}

func (m *mockStoreRepo) GetByID(_ context.Context, id int64) (*domain.Store, error) {
	store, ok := m.stores[id]
	if !ok {
		return nil, e.ErrStoreNotFound
	}
	return store, nil
}

type mockCategoryRepo struct {
	categories map[int64]*domain.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[int64]*domain.Category)}
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	return category, nil
}

type mockImageRepo struct {
	uploaded []string
	deleted  []string
}

func newMockImageRepo() *mockImageRepo {
	return &mockImageRepo{}
}

func (m *mockImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	m.uploaded = append(m.uploaded, image.ObjectKey)
	return image.ObjectKey, nil
}

func (m *mockImageRepo) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}
