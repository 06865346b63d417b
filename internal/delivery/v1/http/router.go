package http

import (
	"github.com/DRSN-tech/marketplace-backend/internal/usecase"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(
	productUC *usecase.ProductUC,
	discountUC *usecase.DiscountUC,
	checkoutUC *usecase.CheckoutUC,
	orderUC *usecase.OrderUC,
	cartUC *usecase.CartUC,
) {
	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerProductRoutes(v1, NewProductHandler(productUC, r.logger), NewDiscountHandler(discountUC, r.logger))
		registerCartRoutes(v1, NewCartHandler(cartUC, r.logger))
		registerOrderRoutes(v1, NewOrderHandler(checkoutUC, orderUC, r.logger))
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler, dcHandler *DiscountHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Post("/", prHandler.createProduct)
		pr.Get("/bestsellers", prHandler.getBestSellers)

		pr.Route("/{productID}", func(item chi.Router) {
			item.Get("/", prHandler.getProduct)
			item.Delete("/", prHandler.deleteProduct)
			item.Patch("/price", prHandler.updatePrice)
			item.Patch("/quantity", prHandler.updateQuantity)
			item.Post("/discount", dcHandler.applyDiscount)
			item.Delete("/discount", dcHandler.removeDiscount)
		})
	})

	router.Post("/discounts/bulk", dcHandler.bulkApplyDiscount)
}

func registerCartRoutes(router chi.Router, cartHandler *CartHandler) {
	router.Route("/cart", func(ct chi.Router) {
		ct.Get("/", cartHandler.getCart)
		ct.Post("/items", cartHandler.addItem)
		ct.Patch("/items/{productID}", cartHandler.updateItem)
		ct.Delete("/items/{productID}", cartHandler.removeItem)
	})
}

func registerOrderRoutes(router chi.Router, orderHandler *OrderHandler) {
	router.Route("/orders", func(ord chi.Router) {
		ord.Post("/checkout", orderHandler.checkout)
		ord.Get("/", orderHandler.getUserOrders)
		ord.Get("/store/{storeID}", orderHandler.getStoreOrders)

		ord.Route("/{orderID}", func(item chi.Router) {
			item.Get("/", orderHandler.getOrder)
			item.Patch("/status", orderHandler.updateStatus)
			item.Patch("/payment", orderHandler.setPaymentMethod)
		})
	})
}
