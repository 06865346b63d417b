package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const orderColumns = `
	id, user_id, total_amount, shipping_address, city, contact_number,
	payment_method, status, created_at`

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{
		pool: pool,
		conv: conv,
	}
}

// Create пишет заказ вместе со строками. Вызывается внутри транзакции оформления.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	model := o.conv.ToModel(order)

	query := `
		INSERT INTO orders (
			user_id, total_amount, shipping_address, city, contact_number, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := q(ctx, o.pool).QueryRow(ctx, query,
		model.UserID, model.TotalAmount, model.ShippingAddress,
		model.City, model.ContactNumber, model.Status,
	).Scan(&model.ID, &model.CreatedAt)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	items := make([]converter.OrderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		row := converter.OrderItemModel{
			OrderID:   model.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		err := q(ctx, o.pool).QueryRow(ctx, itemQuery,
			row.OrderID, row.ProductID, row.Quantity, row.UnitPrice,
		).Scan(&row.ID)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items = append(items, row)
	}

	return o.conv.ToEntity(model, items), nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	model, err := scanOrder(q(ctx, o.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	items, err := o.itemsByOrder(ctx, []uuid.UUID{model.ID})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model, items[model.ID]), nil
}

func (o *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := q(ctx, o.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return o.collectWithItems(ctx, rows)
}

// ListByStore возвращает заказы, содержащие товары магазина. Строки чужих
// магазинов в выдачу не попадают.
func (o *OrderRepo) ListByStore(ctx context.Context, storeID int64) ([]domain.Order, error) {
	query := `
		SELECT DISTINCT ord.id, ord.user_id, ord.total_amount, ord.shipping_address,
			ord.city, ord.contact_number, ord.payment_method, ord.status, ord.created_at
		FROM orders ord
		JOIN order_items item ON item.order_id = ord.id
		JOIN products pr ON pr.id = item.product_id
		WHERE pr.store_id = $1
		ORDER BY ord.created_at DESC`

	rows, err := q(ctx, o.pool).Query(ctx, query, storeID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]*converter.OrderModel, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
		ids = append(ids, model.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Строки чужих магазинов отфильтровываются ещё в запросе.
	itemQuery := `
		SELECT item.id, item.order_id, item.product_id, item.quantity, item.unit_price
		FROM order_items item
		JOIN products pr ON pr.id = item.product_id
		WHERE item.order_id = ANY($1) AND pr.store_id = $2`

	items, err := o.collectItems(ctx, itemQuery, ids, storeID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	orders := make([]domain.Order, 0, len(models))
	for _, model := range models {
		orders = append(orders, *o.conv.ToEntity(model, items[model.ID]))
	}

	return orders, nil
}

// UpdateStatus переводит заказ из from в to охраняемым UPDATE:
// проигравший гонку перевод не затронет ни одной строки.
func (o *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := q(ctx, o.pool).Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrInvalidStatusTransition)
	}

	return nil
}

func (o *OrderRepo) SetPaymentMethod(ctx context.Context, id uuid.UUID, method string) error {
	query := `UPDATE orders SET payment_method = $2 WHERE id = $1`

	tag, err := q(ctx, o.pool).Exec(ctx, query, id, method)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}

	return nil
}

func (o *OrderRepo) collectWithItems(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	models := make([]*converter.OrderModel, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
		ids = append(ids, model.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	items, err := o.itemsByOrder(ctx, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	orders := make([]domain.Order, 0, len(models))
	for _, model := range models {
		orders = append(orders, *o.conv.ToEntity(model, items[model.ID]))
	}

	return orders, nil
}

func (o *OrderRepo) itemsByOrder(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]converter.OrderItemModel, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)`

	return o.collectItems(ctx, query, orderIDs)
}

func (o *OrderRepo) collectItems(ctx context.Context, query string, orderIDs []uuid.UUID, extraArgs ...any) (map[uuid.UUID][]converter.OrderItemModel, error) {
	result := make(map[uuid.UUID][]converter.OrderItemModel)
	if len(orderIDs) == 0 {
		return result, nil
	}

	args := append([]any{orderIDs}, extraArgs...)

	rows, err := q(ctx, o.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item converter.OrderItemModel
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	return result, rows.Err()
}

func scanOrder(row pgx.Row) (*converter.OrderModel, error) {
	var m converter.OrderModel
	err := row.Scan(
		&m.ID, &m.UserID, &m.TotalAmount, &m.ShippingAddress, &m.City,
		&m.ContactNumber, &m.PaymentMethod, &m.Status, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
