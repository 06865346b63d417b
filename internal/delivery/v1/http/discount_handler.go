package http

import (
	"net/http"

	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
)

type DiscountHandler struct {
	discountUsecase *usecase.DiscountUC
	logger          logger.Logger
}

func NewDiscountHandler(discountUsecase *usecase.DiscountUC, logger logger.Logger) *DiscountHandler {
	return &DiscountHandler{discountUsecase: discountUsecase, logger: logger}
}

func (d *DiscountHandler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body discountRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	req, err := toDiscountReq(&body)
	if err != nil {
		WriteError(w, e.Wrap(err.Error(), e.ErrStatusBadRequest))
		return
	}

	product, err := d.discountUsecase.ApplyDiscount(r.Context(), id, req)
	if err != nil {
		d.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toMutatedProductResponse(product))
}

func (d *DiscountHandler) removeDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := d.discountUsecase.RemoveDiscount(r.Context(), id)
	if err != nil {
		d.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toMutatedProductResponse(product))
}

// bulkApplyDiscount применяет скидку к набору товаров. Ответ всегда 200:
// судьба каждого товара в соответствующем элементе результата.
func (d *DiscountHandler) bulkApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var body bulkDiscountRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	if len(body.ProductIDs) == 0 {
		WriteError(w, e.ErrMissingFields)
		return
	}

	req, err := toDiscountReq(&body.Discount)
	if err != nil {
		WriteError(w, e.Wrap(err.Error(), e.ErrStatusBadRequest))
		return
	}

	results := d.discountUsecase.BulkApplyDiscount(r.Context(), body.ProductIDs, req)

	resp := make([]bulkDiscountItemResponse, 0, len(results))
	for _, res := range results {
		item := bulkDiscountItemResponse{ProductID: res.ProductID, Success: res.Err == nil}
		if res.Err != nil {
			_, item.Error = ToHTTPResponse(res.Err)
		}
		resp = append(resp, item)
	}

	WriteSuccess(w, http.StatusOK, resp)
}
