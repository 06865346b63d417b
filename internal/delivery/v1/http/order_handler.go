package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	checkoutUsecase *usecase.CheckoutUC
	orderUsecase    *usecase.OrderUC
	logger          logger.Logger
}

func NewOrderHandler(checkoutUsecase *usecase.CheckoutUC, orderUsecase *usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		checkoutUsecase: checkoutUsecase,
		orderUsecase:    orderUsecase,
		logger:          logger,
	}
}

// checkout превращает корзину пользователя в заказ.
func (o *OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body checkoutRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	if body.ShippingAddress == "" || body.City == "" || body.ContactNumber == "" {
		WriteError(w, e.ErrMissingFields)
		return
	}

	order, err := o.checkoutUsecase.Checkout(r.Context(), &usecase.CheckoutReq{
		UserID:          userID,
		ShippingAddress: body.ShippingAddress,
		City:            body.City,
		ContactNumber:   body.ContactNumber,
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toOrderResponse(order))
}

func (o *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "orderID")
	if err != nil {
		WriteError(w, err)
		return
	}

	order, err := o.orderUsecase.GetOrder(r.Context(), id)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

func (o *OrderHandler) getUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	orders, err := o.orderUsecase.GetUserOrders(r.Context(), userID)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	WriteSuccess(w, http.StatusOK, resp)
}

func (o *OrderHandler) getStoreOrders(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	actorID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	orders, err := o.orderUsecase.GetStoreOrders(r.Context(), storeID, actorID)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	WriteSuccess(w, http.StatusOK, resp)
}

func (o *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "orderID")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body updateOrderStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	order, err := o.orderUsecase.UpdateStatus(r.Context(), &usecase.UpdateOrderStatusReq{
		OrderID: id,
		Status:  domain.OrderStatus(body.Status),
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

func (o *OrderHandler) setPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "orderID")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body setPaymentMethodRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	if err := o.orderUsecase.SetPaymentMethod(r.Context(), id, body.PaymentMethod); err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
