package pgdb

import (
	"context"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CartRepo реализует репозиторий корзины поверх PostgreSQL.
type CartRepo struct {
	pool *pgxpool.Pool
	conv converter.CartItemConverter
}

func NewCartRepo(pool *pgxpool.Pool, conv converter.CartItemConverter) *CartRepo {
	return &CartRepo{
		pool: pool,
		conv: conv,
	}
}

func (c *CartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := q(ctx, c.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var model converter.CartItemModel
		if err := rows.Scan(&model.ID, &model.UserID, &model.ProductID, &model.Quantity, &model.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items = append(items, *c.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return items, nil
}

// Upsert добавляет позицию; повторное добавление того же товара наращивает количество.
func (c *CartRepo) Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, product_id, quantity, created_at`

	var model converter.CartItemModel
	err := q(ctx, c.pool).QueryRow(ctx, query, item.UserID, item.ProductID, item.Quantity).
		Scan(&model.ID, &model.UserID, &model.ProductID, &model.Quantity, &model.CreatedAt)
	if err != nil {
		if postgresForeignKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CartRepo) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) error {
	query := `UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`

	tag, err := q(ctx, c.pool).Exec(ctx, query, userID, productID, quantity)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCartItemNotFound)
	}

	return nil
}

func (c *CartRepo) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	tag, err := q(ctx, c.pool).Exec(ctx, query, userID, productID)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCartItemNotFound)
	}

	return nil
}

func (c *CartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := q(ctx, c.pool).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
