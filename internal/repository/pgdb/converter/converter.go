package converter

import (
	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	model := &ProductModel{
		ID:                  entity.ID,
		Name:                entity.Name,
		Description:         entity.Description,
		Price:               entity.Price,
		ImageURL:            entity.ImageURL,
		Quantity:            entity.Quantity,
		CategoryID:          entity.CategoryID,
		StoreID:             entity.StoreID,
		IsAvailable:         entity.IsAvailable,
		TotalSell:           entity.TotalSell,
		Version:             entity.Version,
		DiscountMinQuantity: 1,
		CreatedAt:           entity.CreatedAt,
		UpdatedAt:           entity.UpdatedAt,
	}

	if d := entity.Discount; d != nil {
		kind := string(d.Type)
		model.DiscountType = &kind
		value := d.Value
		model.DiscountValue = &value
		model.DiscountPrice = d.Price
		model.DiscountStartDate = d.StartDate
		model.DiscountEndDate = d.EndDate
		if d.Name != "" {
			name := d.Name
			model.DiscountName = &name
		}
		model.DiscountMinQuantity = d.MinQuantity
		model.DiscountActive = d.Active
	}

	return model
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	entity := &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		ImageURL:    model.ImageURL,
		Quantity:    model.Quantity,
		CategoryID:  model.CategoryID,
		StoreID:     model.StoreID,
		IsAvailable: model.IsAvailable,
		TotalSell:   model.TotalSell,
		Version:     model.Version,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.DiscountType != nil && model.DiscountValue != nil {
		discount := &domain.Discount{
			Type:        domain.DiscountType(*model.DiscountType),
			Value:       *model.DiscountValue,
			Price:       model.DiscountPrice,
			StartDate:   model.DiscountStartDate,
			EndDate:     model.DiscountEndDate,
			MinQuantity: model.DiscountMinQuantity,
			Active:      model.DiscountActive,
		}
		if model.DiscountName != nil {
			discount.Name = *model.DiscountName
		}
		entity.Discount = discount
	}

	return entity
}

// StoreConverter преобразует сущности Store между domain и моделью PostgreSQL.
type StoreConverter struct{}

func (StoreConverter) ToEntity(model *StoreModel) *domain.Store {
	return &domain.Store{
		ID:        model.ID,
		Name:      model.Name,
		OwnerID:   model.OwnerID,
		CreatedAt: model.CreatedAt,
	}
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}
}

// OrderConverter преобразует сущности Order между domain и моделью PostgreSQL.
type OrderConverter struct{}

func (OrderConverter) ToModel(entity *domain.Order) *OrderModel {
	return &OrderModel{
		ID:              entity.ID,
		UserID:          entity.UserID,
		TotalAmount:     entity.TotalAmount,
		ShippingAddress: entity.ShippingAddress,
		City:            entity.City,
		ContactNumber:   entity.ContactNumber,
		PaymentMethod:   entity.PaymentMethod,
		Status:          string(entity.Status),
		CreatedAt:       entity.CreatedAt,
	}
}

func (OrderConverter) ToEntity(model *OrderModel, items []OrderItemModel) *domain.Order {
	order := &domain.Order{
		ID:              model.ID,
		UserID:          model.UserID,
		TotalAmount:     model.TotalAmount,
		ShippingAddress: model.ShippingAddress,
		City:            model.City,
		ContactNumber:   model.ContactNumber,
		PaymentMethod:   model.PaymentMethod,
		Status:          domain.OrderStatus(model.Status),
		CreatedAt:       model.CreatedAt,
	}

	order.Items = make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return order
}

// CartItemConverter преобразует сущности CartItem между domain и моделью PostgreSQL.
type CartItemConverter struct{}

func (CartItemConverter) ToEntity(model *CartItemModel) *domain.CartItem {
	return &domain.CartItem{
		ID:        model.ID,
		UserID:    model.UserID,
		ProductID: model.ProductID,
		Quantity:  model.Quantity,
		CreatedAt: model.CreatedAt,
	}
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	entities := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		entities = append(entities, c.ToEntity(model))
	}

	return entities
}
