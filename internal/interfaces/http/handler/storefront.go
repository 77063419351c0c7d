package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/application/storefront"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/dto"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Storefront cookies.
const (
	CartCookie  = "cart_id"
	QuoteCookie = "quote_id"

	HeaderIdempotencyKey = "Idempotency-Key"

	// ParamSlug names the product or category in storefront URLs.
	ParamSlug = "slug"
	// ParamItemID names the cart or quote line in storefront URLs.
	ParamItemID = "item_id"
)

// CookieOptions controls the cookies the storefront sets.
type CookieOptions struct {
	Domain     string
	Secure     bool
	CartMaxAge time.Duration
}

// StorefrontHandler serves the shopper-facing API of one channel.
type StorefrontHandler struct {
	BaseHandler
	sf      *storefront.Storefront
	cookies CookieOptions
}

// NewStorefrontHandler creates a StorefrontHandler
func NewStorefrontHandler(sf *storefront.Storefront, cookies CookieOptions) *StorefrontHandler {
	if cookies.CartMaxAge <= 0 {
		cookies.CartMaxAge = 30 * 24 * time.Hour
	}
	return &StorefrontHandler{sf: sf, cookies: cookies}
}

func (h *StorefrontHandler) setCookie(c *gin.Context, name, value string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(maxAge/time.Second), "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *StorefrontHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}

func cookie(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}

// Site godoc
// @ID           getStorefrontSite
// @Summary      Get the storefront's channel and site configuration
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Router       /storefront/site [get]
func (h *StorefrontHandler) Site(c *gin.Context) {
	site, err := h.sf.Site(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, site)
}

// Products godoc
// @ID           listStorefrontProducts
// @Summary      List visible products
// @Tags         storefront
// @Produce      json
// @Param        page         query  int     false  "Page number"
// @Param        limit        query  int     false  "Page size"
// @Param        category_id  query  int     false  "Only products in this category"
// @Param        featured     query  bool    false  "Only featured products"
// @Param        on_sale      query  bool    false  "Only products with a sale price"
// @Param        search       query  string  false  "Name search"
// @Success      200 {object} dto.Response
// @Router       /storefront/products [get]
func (h *StorefrontHandler) Products(c *gin.Context) {
	q := catalog.StorefrontQuery{Search: strings.TrimSpace(c.Query("search"))}
	q.Page, _ = strconv.Atoi(c.Query("page"))
	q.Limit, _ = strconv.Atoi(c.Query("limit"))
	q.CategoryID, _ = strconv.ParseInt(c.Query("category_id"), 10, 64)
	q.Featured, _ = strconv.ParseBool(c.Query("featured"))
	q.OnSale, _ = strconv.ParseBool(c.Query("on_sale"))
	if q.Search == "" {
		q.Search = strings.TrimSpace(c.Query("q"))
	}

	page, err := h.sf.Products(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Product godoc
// @ID           getStorefrontProduct
// @Summary      Get a product by its URL slug
// @Tags         storefront
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Router       /storefront/products/{slug} [get]
func (h *StorefrontHandler) Product(c *gin.Context) {
	p, err := h.sf.Product(c.Request.Context(), c.Param(ParamSlug))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Categories godoc
// @ID           listStorefrontCategories
// @Summary      List visible categories
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /storefront/categories [get]
func (h *StorefrontHandler) Categories(c *gin.Context) {
	cats, err := h.sf.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSliceResponse(cats))
}

// Category godoc
// @ID           getStorefrontCategory
// @Summary      Get a category with its children, breadcrumbs and statistics
// @Tags         storefront
// @Produce      json
// @Param        slug path string true "Category slug"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Router       /storefront/categories/{slug} [get]
func (h *StorefrontHandler) Category(c *gin.Context) {
	page, err := h.sf.Category(c.Request.Context(), c.Param(ParamSlug))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// GetCart godoc
// @ID           getStorefrontCart
// @Summary      Get the shopper's cart
// @Description  Returns null data when the shopper has no active cart
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /storefront/cart [get]
func (h *StorefrontHandler) GetCart(c *gin.Context) {
	cart, err := h.sf.GetCart(c.Request.Context(), cookie(c, CartCookie))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddToCart godoc
// @ID           addStorefrontCartItem
// @Summary      Add one unit of a product to the cart
// @Description  Creates the cart on first use and sets the cart cookie
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body storefront.LineInput true "Product and optional variant"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /storefront/cart/items [post]
func (h *StorefrontHandler) AddToCart(c *gin.Context) {
	var in storefront.LineInput
	if !h.BindJSON(c, &in) {
		return
	}
	cart, err := h.sf.AddToCart(c.Request.Context(), cookie(c, CartCookie), in, middleware.GetSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, CartCookie, cart.UUID.String(), h.cookies.CartMaxAge)
	h.Success(c, cart)
}

// UpdateCartItem godoc
// @ID           updateStorefrontCartItem
// @Summary      Set the quantity of a cart line
// @Description  A quantity of zero or less removes the line
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        item_id path int                  true "Cart item ID"
// @Param        request body dto.QuantityRequest  true "New quantity"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Router       /storefront/cart/items/{item_id} [patch]
func (h *StorefrontHandler) UpdateCartItem(c *gin.Context) {
	itemID, ok := h.parseID(c, ParamItemID)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cart, err := h.sf.UpdateCartItem(c.Request.Context(), cookie(c, CartCookie), itemID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveCartItem godoc
// @ID           removeStorefrontCartItem
// @Summary      Remove a cart line
// @Tags         storefront
// @Produce      json
// @Param        item_id path int true "Cart item ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Router       /storefront/cart/items/{item_id} [delete]
func (h *StorefrontHandler) RemoveCartItem(c *gin.Context) {
	itemID, ok := h.parseID(c, ParamItemID)
	if !ok {
		return
	}
	cart, err := h.sf.RemoveCartItem(c.Request.Context(), cookie(c, CartCookie), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// GetQuote godoc
// @ID           getStorefrontQuote
// @Summary      Get the shopper's draft quote
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /storefront/quote [get]
func (h *StorefrontHandler) GetQuote(c *gin.Context) {
	q, err := h.sf.GetQuote(c.Request.Context(), cookie(c, QuoteCookie))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// AddToQuote godoc
// @ID           addStorefrontQuoteItem
// @Summary      Add one unit of a product to the draft quote
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body storefront.LineInput true "Product and optional variant"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Router       /storefront/quote/items [post]
func (h *StorefrontHandler) AddToQuote(c *gin.Context) {
	var in storefront.LineInput
	if !h.BindJSON(c, &in) {
		return
	}
	q, err := h.sf.AddToQuote(c.Request.Context(), cookie(c, QuoteCookie), in, middleware.GetSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, QuoteCookie, q.UUID.String(), h.cookies.CartMaxAge)
	h.Success(c, q)
}

// UpdateQuoteItem godoc
// @ID           updateStorefrontQuoteItem
// @Summary      Set the quantity of a quote line
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        item_id path int                  true "Quote item ID"
// @Param        request body dto.QuantityRequest  true "New quantity"
// @Success      200 {object} dto.Response
// @Router       /storefront/quote/items/{item_id} [patch]
func (h *StorefrontHandler) UpdateQuoteItem(c *gin.Context) {
	itemID, ok := h.parseID(c, ParamItemID)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q, err := h.sf.UpdateQuoteItem(c.Request.Context(), cookie(c, QuoteCookie), itemID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// RemoveQuoteItem godoc
// @ID           removeStorefrontQuoteItem
// @Summary      Remove a quote line
// @Tags         storefront
// @Produce      json
// @Param        item_id path int true "Quote item ID"
// @Success      200 {object} dto.Response
// @Router       /storefront/quote/items/{item_id} [delete]
func (h *StorefrontHandler) RemoveQuoteItem(c *gin.Context) {
	itemID, ok := h.parseID(c, ParamItemID)
	if !ok {
		return
	}
	q, err := h.sf.RemoveQuoteItem(c.Request.Context(), cookie(c, QuoteCookie), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// SubmitQuote godoc
// @ID           submitStorefrontQuote
// @Summary      Submit the draft quote
// @Description  Requires a signed-in customer; clears the quote cookie
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body dto.SubmitQuoteRequest false "Notes for the sales team"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /storefront/quote/submit [post]
func (h *StorefrontHandler) SubmitQuote(c *gin.Context) {
	var req dto.SubmitQuoteRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	q, err := h.sf.SubmitQuote(c.Request.Context(), cookie(c, QuoteCookie), req.Notes, middleware.GetSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.clearCookie(c, QuoteCookie)
	h.Success(c, q)
}

// ListQuotes godoc
// @ID           listStorefrontQuotes
// @Summary      List the signed-in customer's quotes
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.ErrorResponse
// @Router       /storefront/account/quotes [get]
func (h *StorefrontHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.sf.ListQuotes(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSliceResponse(quotes))
}

// Checkout godoc
// @ID           checkoutStorefrontCart
// @Summary      Place an order for the cart
// @Description  Converts the active cart into a pending order and clears the cart cookie. An Idempotency-Key header makes retries safe.
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string                   false "Client generated key for this checkout"
// @Param        request         body   storefront.CheckoutInput true  "Billing details"
// @Success      201 {object} dto.OrderSummary
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /storefront/checkout [post]
func (h *StorefrontHandler) Checkout(c *gin.Context) {
	var in storefront.CheckoutInput
	if !h.BindJSON(c, &in) {
		return
	}
	order, err := h.sf.Checkout(c.Request.Context(), cookie(c, CartCookie), in,
		middleware.GetSession(c), strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.clearCookie(c, CartCookie)
	h.Created(c, dto.NewOrderSummary(order))
}

// ListOrders godoc
// @ID           listStorefrontOrders
// @Summary      List the signed-in customer's orders
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.ErrorResponse
// @Router       /storefront/account/orders [get]
func (h *StorefrontHandler) ListOrders(c *gin.Context) {
	orders, err := h.sf.ListOrders(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSliceResponse(orders))
}

// Register godoc
// @ID           registerStorefrontCustomer
// @Summary      Create a customer account and sign in
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body storefront.RegisterInput true "Account details"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /storefront/account/register [post]
func (h *StorefrontHandler) Register(c *gin.Context) {
	var in storefront.RegisterInput
	if !h.BindJSON(c, &in) {
		return
	}
	issued, err := h.sf.Register(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, middleware.SessionCookie, issued.Token, h.sf.SessionLifetime())
	h.Created(c, issued.Session)
}

// Login godoc
// @ID           loginStorefrontCustomer
// @Summary      Sign in with email and password
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /storefront/account/login [post]
func (h *StorefrontHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	issued, err := h.sf.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, middleware.SessionCookie, issued.Token, h.sf.SessionLifetime())
	h.Success(c, issued.Session)
}

// Logout godoc
// @ID           logoutStorefrontCustomer
// @Summary      Sign out and revoke the session
// @Tags         storefront
// @Success      204
// @Router       /storefront/account/logout [post]
func (h *StorefrontHandler) Logout(c *gin.Context) {
	if err := h.sf.Logout(c.Request.Context(), middleware.GetSession(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.clearCookie(c, middleware.SessionCookie)
	h.NoContent(c)
}

// Account godoc
// @ID           getStorefrontAccount
// @Summary      Get the signed-in customer's profile
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.ErrorResponse
// @Router       /storefront/account [get]
func (h *StorefrontHandler) Account(c *gin.Context) {
	account, err := h.sf.Account(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}
