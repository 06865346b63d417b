package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки оптимистичной блокировки
	ErrVersionConflict = fmt.Errorf("version conflict")

	// 400 Bad Request
	ErrStatusBadRequest        = fmt.Errorf("bad request")
	ErrExpectedMultipart       = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields           = fmt.Errorf("missing required fields")
	ErrInvalidPrice            = fmt.Errorf("invalid price")
	ErrPricePrecision          = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidQuantity         = fmt.Errorf("quantity must be non-negative")
	ErrProductNameRequired     = fmt.Errorf("product name is required")
	ErrFileTooLarge            = fmt.Errorf("file too large")
	ErrNoImages                = fmt.Errorf("image file is required")
	ErrUnsupportedMediaType    = fmt.Errorf("unsupported media type")
	ErrIncorrectEnvVariable    = fmt.Errorf("incorrect env variable")
	ErrInvalidCursor           = fmt.Errorf("invalid pagination cursor")
	ErrInvalidDiscountType     = fmt.Errorf("unknown discount type")
	ErrInvalidDiscountValue    = fmt.Errorf("percentage discount must be in (0, 100]")
	ErrDiscountExceedsPrice    = fmt.Errorf("fixed amount discount must be less than product price")
	ErrInvalidDiscountWindow   = fmt.Errorf("discount end date must not be before start date")
	ErrInvalidMinQuantity      = fmt.Errorf("discount min quantity must be at least 1")
	ErrInvalidStatusTransition = fmt.Errorf("invalid order status transition")
	ErrInvalidPaymentMethod    = fmt.Errorf("payment method is required")

	// 401/403
	ErrUnauthorized = fmt.Errorf("actor is not the owner of this store")

	// 404 Not Found
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrCategoryNotFound = fmt.Errorf("category not found")
	ErrStoreNotFound    = fmt.Errorf("store not found")
	ErrOrderNotFound    = fmt.Errorf("order not found")
	ErrCartItemNotFound = fmt.Errorf("cart item not found")

	// 409 Conflict
	ErrEmptyCart              = fmt.Errorf("cart is empty")
	ErrInsufficientStock      = fmt.Errorf("insufficient stock")
	ErrConcurrentModification = fmt.Errorf("product was modified by another transaction")
	ErrProductReferenced      = fmt.Errorf("product is referenced by existing orders")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
