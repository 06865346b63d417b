package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/infrastructure"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	defaultPageSize int32 = 20
	maxPageSize     int32 = 100
)

// ProductUC — операции каталога: создание и жизненный цикл товара,
// листинг с курсорной пагинацией и разрешением действующей цены.
type ProductUC struct {
	productRepo  ProductRepository
	storeRepo    StoreRepository
	categoryRepo CategoryRepository
	imageRepo    ImageRepository
	outboxRepo   OutboxRepository
	dbPool       transaction.Transactional
	prices       *priceResolver
	logger       logger.Logger
	now          func() time.Time
}

func NewProductUC(
	productRepo ProductRepository,
	storeRepo StoreRepository,
	categoryRepo CategoryRepository,
	imageRepo ImageRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	cache PriceCache,
	logger logger.Logger,
) *ProductUC {
	return &ProductUC{
		productRepo:  productRepo,
		storeRepo:    storeRepo,
		categoryRepo: categoryRepo,
		imageRepo:    imageRepo,
		outboxRepo:   outboxRepo,
		dbPool:       dbPool,
		prices:       newPriceResolver(cache, logger),
		logger:       logger,
		now:          time.Now,
	}
}

// CreateProduct загружает картинку в объектное хранилище и создаёт товар.
// Категория и магазин должны существовать; владелец магазина — автор запроса.
func (p *ProductUC) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUC.CreateProduct"

	if err := p.checkOwner(ctx, req.StoreID, req.ActorID); err != nil {
		return nil, e.Wrap(op, err)
	}

	if _, err := p.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, e.Wrap(op, err)
	}

	if !req.Price.IsPositive() {
		return nil, e.Wrap(op, e.ErrInvalidPrice)
	}
	if req.Price.Exponent() < -2 {
		return nil, e.Wrap(op, e.ErrPricePrecision)
	}

	ext, err := infrastructure.GetExtensionFromMIME(req.Image.MimeType)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	image := domain.NewImage(fmt.Sprintf("%s.%s", uuid.NewString(), ext), req.Image.Data, req.Image.MimeType)

	imageURL, err := p.imageRepo.Upload(ctx, image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product := domain.NewProduct(req.Name, req.Description, req.Price, req.Quantity, req.CategoryID, req.StoreID, imageURL)

	created, err := p.productRepo.Create(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// GetProduct возвращает товар вместе с действующей ценой.
func (p *ProductUC) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductView, error) {
	const op = "ProductUC.GetProduct"

	product, err := p.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	view := NewProductView(*product, p.prices.Effective(ctx, product, p.now()))

	return &view, nil
}

// ListProducts — курсорная страница каталога. Курсор непрозрачен для клиента
// и кодирует позицию (created_at, id) последнего элемента предыдущей страницы.
func (p *ProductUC) ListProducts(ctx context.Context, query *ListProductsQuery) (*ListProductsRes, error) {
	const op = "ProductUC.ListProducts"

	if query.Limit <= 0 || query.Limit > maxPageSize {
		query.Limit = defaultPageSize
	}

	// Запрашиваем на одну строку больше, чтобы понять, есть ли следующая страница.
	fetch := *query
	fetch.Limit = query.Limit + 1

	products, err := p.productRepo.List(ctx, &fetch)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	hasMore := int32(len(products)) > query.Limit
	if hasMore {
		products = products[:query.Limit]
	}

	res := &ListProductsRes{Products: p.toViews(ctx, products)}

	if hasMore {
		res.NextCursor = NewProductCursor(&products[len(products)-1])
	}

	return res, nil
}

// GetBestSellers возвращает топ товаров по числу продаж.
func (p *ProductUC) GetBestSellers(ctx context.Context, limit int32) ([]ProductView, error) {
	const op = "ProductUC.GetBestSellers"

	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	products, err := p.productRepo.BestSellers(ctx, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return p.toViews(ctx, products), nil
}

// UpdateQuantity меняет остаток товара и в той же транзакции пишет событие
// изменения остатка в outbox. Кэш цены не трогаем: остаток на цену не влияет.
func (p *ProductUC) UpdateQuantity(ctx context.Context, req *UpdateQuantityReq) (*domain.Product, error) {
	const op = "ProductUC.UpdateQuantity"

	if req.Quantity < 0 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	product, err := p.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := p.checkOwner(ctx, product.StoreID, req.ActorID); err != nil {
		return nil, e.Wrap(op, err)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	product.Quantity = req.Quantity
	product.IsAvailable = req.Quantity > 0

	var saved *domain.Product
	saved, err = p.productRepo.UpdateWithVersion(ctx, product)
	if errors.Is(err, e.ErrVersionConflict) {
		return nil, e.Wrap(op, e.ErrConcurrentModification)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var event *OutboxEvent
	event, err = NewStockChangedEvent(saved.ID, saved.Quantity, p.now())
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if _, err = p.outboxRepo.Create(ctx, event); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	return saved, nil
}

// UpdatePrice меняет базовую цену товара и сбрасывает кэш действующей цены.
func (p *ProductUC) UpdatePrice(ctx context.Context, req *UpdatePriceReq) (*domain.Product, error) {
	const op = "ProductUC.UpdatePrice"

	if !req.Price.IsPositive() {
		return nil, e.Wrap(op, e.ErrInvalidPrice)
	}
	if req.Price.Exponent() < -2 {
		return nil, e.Wrap(op, e.ErrPricePrecision)
	}

	product, err := p.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := p.checkOwner(ctx, product.StoreID, req.ActorID); err != nil {
		return nil, e.Wrap(op, err)
	}

	product.Price = req.Price
	if product.Discount != nil && product.Discount.Type == domain.DiscountPercentage {
		// Процентная скидка пересчитывается от новой базы.
		price := domain.DiscountedPrice(product.Price, product.Discount.Type, product.Discount.Value)
		product.Discount.Price = &price
	}

	saved, err := p.productRepo.UpdateWithVersion(ctx, product)
	if errors.Is(err, e.ErrVersionConflict) {
		return nil, e.Wrap(op, e.ErrConcurrentModification)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.prices.Invalidate(ctx, req.ProductID)

	return saved, nil
}

// DeleteProduct удаляет товар вместе с картинкой. Товар, на который ссылаются
// позиции заказов, удалить нельзя.
func (p *ProductUC) DeleteProduct(ctx context.Context, productID, actorID uuid.UUID) error {
	const op = "ProductUC.DeleteProduct"

	product, err := p.productRepo.GetByID(ctx, productID)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := p.checkOwner(ctx, product.StoreID, actorID); err != nil {
		return e.Wrap(op, err)
	}

	if err := p.productRepo.Delete(ctx, productID); err != nil {
		return e.Wrap(op, err)
	}

	p.prices.Invalidate(ctx, productID)

	if err := p.imageRepo.Delete(ctx, product.ImageURL); err != nil {
		p.logger.Warnf("image delete failed: product_id=%s: %v", productID, err)
	}

	return nil
}

func (p *ProductUC) toViews(ctx context.Context, products []domain.Product) []ProductView {
	today := p.now()
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, NewProductView(products[i], p.prices.Effective(ctx, &products[i], today)))
	}

	return views
}

func (p *ProductUC) checkOwner(ctx context.Context, storeID int64, actorID uuid.UUID) error {
	store, err := p.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store.OwnerID != actorID {
		return e.ErrUnauthorized
	}

	return nil
}
