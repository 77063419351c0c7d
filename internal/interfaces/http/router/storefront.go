package router

import (
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// StorefrontPrefix is where the public storefront API is mounted.
const StorefrontPrefix = "/storefront"

// StorefrontGroup returns the storefront routes. middleware runs before every
// route, normally middleware.StorefrontContext.
func StorefrontGroup(h *handler.StorefrontHandler, middleware ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup(StorefrontPrefix).Use(middleware...)

	slug := "/:" + handler.ParamSlug
	item := "/items/:" + handler.ParamItemID

	g.GET("/site", h.Site).
		GET("/products", h.Products).
		GET("/products"+slug, h.Product).
		GET("/categories", h.Categories).
		GET("/categories"+slug, h.Category)

	g.GET("/cart", h.GetCart).
		POST("/cart/items", h.AddToCart).
		PATCH("/cart"+item, h.UpdateCartItem).
		DELETE("/cart"+item, h.RemoveCartItem).
		POST("/checkout", h.Checkout)

	g.GET("/quote", h.GetQuote).
		POST("/quote/items", h.AddToQuote).
		PATCH("/quote"+item, h.UpdateQuoteItem).
		DELETE("/quote"+item, h.RemoveQuoteItem).
		POST("/quote/submit", h.SubmitQuote)

	g.GET("/account", h.Account).
		POST("/account/register", h.Register).
		POST("/account/login", h.Login).
		POST("/account/logout", h.Logout).
		GET("/account/orders", h.ListOrders).
		GET("/account/quotes", h.ListQuotes)

	return g
}

// RegisterStorefront mounts the storefront routes at the engine root.
func RegisterStorefront(engine *gin.Engine, h *handler.StorefrontHandler, middleware ...gin.HandlerFunc) {
	StorefrontGroup(h, middleware...).RegisterRoutes(&engine.RouterGroup)
}
