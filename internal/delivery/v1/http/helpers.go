package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest),
		errors.Is(err, e.ErrExpectedMultipart),
		errors.Is(err, e.ErrMissingFields),
		errors.Is(err, e.ErrInvalidPrice),
		errors.Is(err, e.ErrPricePrecision),
		errors.Is(err, e.ErrInvalidQuantity),
		errors.Is(err, e.ErrProductNameRequired),
		errors.Is(err, e.ErrFileTooLarge),
		errors.Is(err, e.ErrUnsupportedMediaType),
		errors.Is(err, e.ErrNoImages),
		errors.Is(err, e.ErrInvalidCursor),
		errors.Is(err, e.ErrInvalidDiscountType),
		errors.Is(err, e.ErrInvalidDiscountValue),
		errors.Is(err, e.ErrDiscountExceedsPrice),
		errors.Is(err, e.ErrInvalidDiscountWindow),
		errors.Is(err, e.ErrInvalidMinQuantity),
		errors.Is(err, e.ErrInvalidPaymentMethod):
		return http.StatusBadRequest, rootMessage(err)

	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusForbidden, rootMessage(err)

	case errors.Is(err, e.ErrProductNotFound),
		errors.Is(err, e.ErrCategoryNotFound),
		errors.Is(err, e.ErrStoreNotFound),
		errors.Is(err, e.ErrOrderNotFound),
		errors.Is(err, e.ErrCartItemNotFound):
		return http.StatusNotFound, rootMessage(err)

	case errors.Is(err, e.ErrEmptyCart),
		errors.Is(err, e.ErrInsufficientStock),
		errors.Is(err, e.ErrConcurrentModification),
		errors.Is(err, e.ErrProductReferenced),
		errors.Is(err, e.ErrInvalidStatusTransition):
		return http.StatusConflict, rootMessage(err)

	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// rootMessage достаёт текст сентинельной ошибки без префиксов обёрток.
func rootMessage(err error) string {
	root := err
	for {
		unwrapped := errors.Unwrap(root)
		if unwrapped == nil {
			return root.Error()
		}
		root = unwrapped
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}
	return nil
}

// userIDFromRequest извлекает идентификатор пользователя из заголовка X-User-ID.
// Аутентификация живёт на шлюзе перед сервисом; сюда приходит уже проверенный id.
func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, e.Wrap(whereami.WhereAmI(), e.ErrMissingFields)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}

	return id, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}

	return id, nil
}

// parsePrice разбирает денежную строку вида "599.99" в decimal
// с проверкой знака и точности.
func parsePrice(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, e.ErrInvalidPrice
	}
	if !d.IsPositive() {
		return decimal.Zero, e.ErrInvalidPrice
	}
	if d.Exponent() < -2 {
		return decimal.Zero, e.ErrPricePrecision
	}

	return d, nil
}

// CURSOR CODEC

// encodeCursor упаковывает позицию пагинации в непрозрачную строку:
// base64url от "<created_at RFC3339Nano>|<id>".
func encodeCursor(c *usecase.ProductCursor) string {
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.Format(time.RFC3339Nano), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (*usecase.ProductCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidCursor)
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidCursor)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidCursor)
	}

	return &usecase.ProductCursor{CreatedAt: createdAt, ID: id}, nil
}

// MULTIPART

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

func parseImage(files []*multipart.FileHeader) (*usecase.ProductImage, error) {
	const maxFileSize = 15 << 20

	if len(files) == 0 {
		return nil, e.ErrNoImages
	}

	fh := files[0]

	src, err := fh.Open()
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	if int64(len(data)) > maxFileSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])

	return &usecase.ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Name:     fh.Filename,
	}, nil
}
