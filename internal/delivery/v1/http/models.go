package http

import (
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// productResponse — товар во внешнем представлении.
// EffectivePrice — цена к оплате с учётом активной скидки.
type productResponse struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Price          decimal.Decimal   `json:"price"`
	EffectivePrice decimal.Decimal   `json:"effective_price"`
	ImageURL       string            `json:"image_url"`
	Quantity       int32             `json:"quantity"`
	CategoryID     int64             `json:"category_id"`
	StoreID        int64             `json:"store_id"`
	IsAvailable    bool              `json:"is_available"`
	TotalSell      int32             `json:"total_sell"`
	Discount       *discountResponse `json:"discount,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type discountResponse struct {
	Type        string           `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	StartDate   *string          `json:"start_date,omitempty"`
	EndDate     *string          `json:"end_date,omitempty"`
	Name        string           `json:"name,omitempty"`
	MinQuantity int32            `json:"min_quantity"`
	Active      bool             `json:"active"`
}

type listProductsResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// discountRequest — полезная нагрузка применения скидки.
type discountRequest struct {
	Type            string           `json:"type"`
	Value           decimal.Decimal  `json:"value"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	StartDate       *string          `json:"start_date,omitempty"`
	EndDate         *string          `json:"end_date,omitempty"`
	Name            string           `json:"name,omitempty"`
	MinQuantity     *int32           `json:"min_quantity,omitempty"`
}

type bulkDiscountRequest struct {
	ProductIDs []uuid.UUID     `json:"product_ids"`
	Discount   discountRequest `json:"discount"`
}

type bulkDiscountItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	City            string `json:"city"`
	ContactNumber   string `json:"contact_number"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Items           []orderItemResponse `json:"items"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	City            string              `json:"city"`
	ContactNumber   string              `json:"contact_number"`
	PaymentMethod   *string             `json:"payment_method,omitempty"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type setPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type cartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

type cartItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// toMutatedProductResponse строит ответ на мутацию скидки: действующая цена
// пересчитывается от свежесохранённого состояния товара.
func toMutatedProductResponse(product *domain.Product) productResponse {
	return toProductResponse(&usecase.ProductView{
		Product:        *product,
		EffectivePrice: domain.EffectivePrice(product, time.Now()),
	})
}

func toProductResponse(view *usecase.ProductView) productResponse {
	product := view.Product

	resp := productResponse{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		EffectivePrice: view.EffectivePrice,
		ImageURL:       product.ImageURL,
		Quantity:       product.Quantity,
		CategoryID:     product.CategoryID,
		StoreID:        product.StoreID,
		IsAvailable:    product.IsAvailable,
		TotalSell:      product.TotalSell,
		CreatedAt:      product.CreatedAt,
	}

	if d := product.Discount; d != nil {
		resp.Discount = &discountResponse{
			Type:        string(d.Type),
			Value:       d.Value,
			Price:       d.Price,
			StartDate:   formatDate(d.StartDate),
			EndDate:     formatDate(d.EndDate),
			Name:        d.Name,
			MinQuantity: d.MinQuantity,
			Active:      d.Active,
		}
	}

	return resp
}

func toOrderResponse(order *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return orderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		City:            order.City,
		ContactNumber:   order.ContactNumber,
		PaymentMethod:   order.PaymentMethod,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, *s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toDiscountReq переводит полезную нагрузку запроса во внутренний вид.
// Порог минимального количества по умолчанию равен 1: скидка без порога.
func toDiscountReq(req *discountRequest) (*usecase.DiscountReq, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	minQuantity := int32(1)
	if req.MinQuantity != nil {
		minQuantity = *req.MinQuantity
	}

	return &usecase.DiscountReq{
		Type:            domain.DiscountType(req.Type),
		Value:           req.Value,
		DiscountedPrice: req.DiscountedPrice,
		StartDate:       startDate,
		EndDate:         endDate,
		Name:            req.Name,
		MinQuantity:     minQuantity,
	}, nil
}
