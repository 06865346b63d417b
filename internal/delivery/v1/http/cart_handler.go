package http

import (
	"net/http"

	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
)

type CartHandler struct {
	cartUsecase *usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase *usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	items, err := c.cartUsecase.GetUserCart(r.Context(), userID)
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	resp := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, cartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.CreatedAt,
		})
	}

	WriteSuccess(w, http.StatusOK, resp)
}

func (c *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body cartItemRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	item, err := c.cartUsecase.AddItem(r.Context(), &usecase.CartItemReq{
		UserID:    userID,
		ProductID: body.ProductID,
		Quantity:  body.Quantity,
	})
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, cartItemResponse{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   item.CreatedAt,
	})
}

func (c *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	productID, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body cartItemRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	if err := c.cartUsecase.UpdateItemQuantity(r.Context(), &usecase.CartItemReq{
		UserID:    userID,
		ProductID: productID,
		Quantity:  body.Quantity,
	}); err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	productID, err := uuidParam(r, "productID")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := c.cartUsecase.RemoveItem(r.Context(), userID, productID); err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
