package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase *usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase *usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// createProduct создаёт товар с изображением из multipart/form-data.
// Поля: name, description, price, quantity, category_id, store_id, image.
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	actorID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	req, err := p.parseCreateForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}
	req.ActorID = actorID

	product, err := p.productUsecase.CreateProduct(r.Context(), req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(&usecase.ProductView{
		Product:        *product,
		EffectivePrice: product.Price,
	}))
}

func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	view, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(view))
}

func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := p.productUsecase.ListProducts(r.Context(), query)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	resp := listProductsResponse{Products: make([]productResponse, 0, len(res.Products))}
	for i := range res.Products {
		resp.Products = append(resp.Products, toProductResponse(&res.Products[i]))
	}
	if res.NextCursor != nil {
		resp.NextCursor = encodeCursor(res.NextCursor)
	}

	WriteSuccess(w, http.StatusOK, resp)
}

func (p *ProductHandler) getBestSellers(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	views, err := p.productUsecase.GetBestSellers(r.Context(), limit)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(views))
	for i := range views {
		resp = append(resp, toProductResponse(&views[i]))
	}

	WriteSuccess(w, http.StatusOK, resp)
}

func (p *ProductHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	actorID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body updateQuantityRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.UpdateQuantity(r.Context(), &usecase.UpdateQuantityReq{
		ProductID: id,
		Quantity:  body.Quantity,
		ActorID:   actorID,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(&usecase.ProductView{
		Product:        *product,
		EffectivePrice: product.Price,
	}))
}

func (p *ProductHandler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	actorID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body updatePriceRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.UpdatePrice(r.Context(), &usecase.UpdatePriceReq{
		ProductID: id,
		Price:     body.Price,
		ActorID:   actorID,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(&usecase.ProductView{
		Product:        *product,
		EffectivePrice: product.Price,
	}))
}

func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	actorID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id, actorID); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p *ProductHandler) parseCreateForm(r *http.Request) (*usecase.CreateProductReq, error) {
	name := r.FormValue("name")
	priceStr := r.FormValue("price")
	categoryStr := r.FormValue("category_id")
	storeStr := r.FormValue("store_id")

	if name == "" {
		return nil, e.ErrProductNameRequired
	}
	if priceStr == "" || categoryStr == "" || storeStr == "" {
		return nil, e.ErrMissingFields
	}

	price, err := parsePrice(priceStr)
	if err != nil {
		return nil, err
	}

	categoryID, err := strconv.ParseInt(categoryStr, 10, 64)
	if err != nil {
		return nil, e.ErrStatusBadRequest
	}
	storeID, err := strconv.ParseInt(storeStr, 10, 64)
	if err != nil {
		return nil, e.ErrStatusBadRequest
	}

	var quantity int64
	if qStr := r.FormValue("quantity"); qStr != "" {
		quantity, err = strconv.ParseInt(qStr, 10, 32)
		if err != nil || quantity < 0 {
			return nil, e.ErrInvalidQuantity
		}
	}

	image, err := parseImage(r.MultipartForm.File["image"])
	if err != nil {
		return nil, err
	}

	return &usecase.CreateProductReq{
		Name:        name,
		Description: r.FormValue("description"),
		Price:       price,
		Quantity:    int32(quantity),
		CategoryID:  categoryID,
		StoreID:     storeID,
		Image:       image,
	}, nil
}

func parseListQuery(r *http.Request) (*usecase.ListProductsQuery, error) {
	query := &usecase.ListProductsQuery{
		Limit: parseLimit(r.URL.Query().Get("limit")),
	}

	if raw := r.URL.Query().Get("store_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, e.ErrStatusBadRequest
		}
		query.StoreID = &id
	}

	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, e.ErrStatusBadRequest
		}
		query.CategoryID = &id
	}

	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor, err := decodeCursor(raw)
		if err != nil {
			return nil, err
		}
		query.Cursor = cursor
	}

	return query, nil
}

func parseLimit(raw string) int32 {
	if raw == "" {
		return 0
	}
	limit, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || limit < 0 {
		return 0
	}
	return int32(limit)
}
