package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `
	id, name, description, price, image_url, quantity, category_id, store_id,
	is_available, total_sell, version,
	discount_type, discount_value, discount_price, discount_start_date,
	discount_end_date, discount_name, discount_min_quantity, discount_active,
	created_at, updated_at`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)

	query := `
		INSERT INTO products (
			name, description, price, image_url, quantity,
			category_id, store_id, is_available
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns

	row := q(ctx, p.pool).QueryRow(ctx, query,
		model.Name, model.Description, model.Price, model.ImageURL,
		model.Quantity, model.CategoryID, model.StoreID, model.IsAvailable,
	)

	saved, err := scanProduct(row)
	if err != nil {
		if postgresForeignKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(saved), nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	model, err := scanProduct(q(ctx, p.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// List возвращает страницу товаров keyset-пагинацией по (created_at, id) DESC.
// Условие (created_at, id) < (курсор) стабильно при конкурентных вставках.
func (p *ProductRepo) List(ctx context.Context, listQuery *usecase.ListProductsQuery) ([]domain.Product, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + productColumns + ` FROM products WHERE is_available = true`)

	args := make([]any, 0, 5)

	if listQuery.StoreID != nil {
		args = append(args, *listQuery.StoreID)
		fmt.Fprintf(&sb, " AND store_id = $%d", len(args))
	}
	if listQuery.CategoryID != nil {
		args = append(args, *listQuery.CategoryID)
		fmt.Fprintf(&sb, " AND category_id = $%d", len(args))
	}
	if listQuery.Cursor != nil {
		args = append(args, listQuery.Cursor.CreatedAt, listQuery.Cursor.ID)
		fmt.Fprintf(&sb, " AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, listQuery.Limit)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := q(ctx, p.pool).Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.collect(rows)
}

func (p *ProductRepo) BestSellers(ctx context.Context, limit int32) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_available = true
		ORDER BY total_sell DESC, created_at DESC
		LIMIT $1`

	rows, err := q(ctx, p.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.collect(rows)
}

// UpdateWithVersion пишет изменяемые поля условно по токену версии.
// Ноль затронутых строк при существующем товаре означает проигранную гонку.
func (p *ProductRepo) UpdateWithVersion(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)

	query := `
		UPDATE products SET
			name = $3, description = $4, price = $5, image_url = $6,
			quantity = $7, is_available = $8,
			discount_type = $9, discount_value = $10, discount_price = $11,
			discount_start_date = $12, discount_end_date = $13,
			discount_name = $14, discount_min_quantity = $15, discount_active = $16,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + productColumns

	row := q(ctx, p.pool).QueryRow(ctx, query,
		model.ID, model.Version,
		model.Name, model.Description, model.Price, model.ImageURL,
		model.Quantity, model.IsAvailable,
		model.DiscountType, model.DiscountValue, model.DiscountPrice,
		model.DiscountStartDate, model.DiscountEndDate,
		model.DiscountName, model.DiscountMinQuantity, model.DiscountActive,
	)

	saved, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), p.versionConflictOrMissing(ctx, model.ID))
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(saved), nil
}

// DecrementStock атомарно списывает остаток и наращивает счётчик продаж
// условно по токену версии. Охрана quantity >= $3 не даёт уйти в минус
// даже при совпадении версии.
func (p *ProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int32, version int32) (*domain.Product, error) {
	query := `
		UPDATE products SET
			quantity = quantity - $3,
			total_sell = total_sell + $3,
			is_available = (quantity - $3) > 0,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2 AND quantity >= $3
		RETURNING ` + productColumns

	row := q(ctx, p.pool).QueryRow(ctx, query, id, version, quantity)

	saved, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), p.versionConflictOrMissing(ctx, id))
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(saved), nil
}

func (p *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := q(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if postgresForeignKey(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrProductReferenced)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// ListDiscountsToActivate возвращает товары с неактивной скидкой,
// окно которой уже включает сегодняшний день.
func (p *ProductRepo) ListDiscountsToActivate(ctx context.Context, today time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM products
		WHERE discount_type IS NOT NULL
		  AND discount_active = false
		  AND (discount_start_date IS NULL OR discount_start_date <= $1)
		  AND (discount_end_date IS NULL OR discount_end_date >= $1)`

	return p.collectIDs(ctx, query, today)
}

// ListDiscountsToDeactivate возвращает товары с активной скидкой,
// окно которой уже закончилось.
func (p *ProductRepo) ListDiscountsToDeactivate(ctx context.Context, today time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM products
		WHERE discount_active = true
		  AND discount_end_date IS NOT NULL
		  AND discount_end_date < $1`

	return p.collectIDs(ctx, query, today)
}

// ActivateDiscount включает скидку охраняемым UPDATE: условия включения
// перепроверяются в самом запросе, поэтому повторный запуск прохода
// и гонка с мутацией скидки не дают лишней записи.
func (p *ProductRepo) ActivateDiscount(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	query := `
		UPDATE products SET
			discount_active = true,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
		  AND discount_type IS NOT NULL
		  AND discount_active = false
		  AND (discount_start_date IS NULL OR discount_start_date <= $2)
		  AND (discount_end_date IS NULL OR discount_end_date >= $2)`

	tag, err := q(ctx, p.pool).Exec(ctx, query, id, today)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() > 0, nil
}

func (p *ProductRepo) DeactivateDiscount(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	query := `
		UPDATE products SET
			discount_active = false,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
		  AND discount_active = true
		  AND discount_end_date IS NOT NULL
		  AND discount_end_date < $2`

	tag, err := q(ctx, p.pool).Exec(ctx, query, id, today)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() > 0, nil
}

// versionConflictOrMissing различает проигранную гонку и отсутствующий товар.
func (p *ProductRepo) versionConflictOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return e.ErrProductNotFound
	}

	return e.ErrVersionConflict
}

func (p *ProductRepo) collect(rows pgx.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		products = append(products, *p.conv.ToEntity(model))
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

func (p *ProductRepo) collectIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := q(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return ids, nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var m converter.ProductModel
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Price, &m.ImageURL, &m.Quantity,
		&m.CategoryID, &m.StoreID, &m.IsAvailable, &m.TotalSell, &m.Version,
		&m.DiscountType, &m.DiscountValue, &m.DiscountPrice, &m.DiscountStartDate,
		&m.DiscountEndDate, &m.DiscountName, &m.DiscountMinQuantity, &m.DiscountActive,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
