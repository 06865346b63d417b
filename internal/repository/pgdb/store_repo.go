package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// StoreRepo реализует репозиторий магазинов поверх PostgreSQL.
type StoreRepo struct {
	pool *pgxpool.Pool
	conv converter.StoreConverter
}

func NewStoreRepo(pool *pgxpool.Pool, conv converter.StoreConverter) *StoreRepo {
	return &StoreRepo{
		pool: pool,
		conv: conv,
	}
}

func (s *StoreRepo) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	query := `SELECT id, name, owner_id, created_at FROM stores WHERE id = $1`

	var model converter.StoreModel
	err := q(ctx, s.pool).QueryRow(ctx, query, id).
		Scan(&model.ID, &model.Name, &model.OwnerID, &model.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrStoreNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(&model), nil
}
