package router

import (
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// crudHandler is the shape shared by every top-level resource handler.
type crudHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

var (
	idPath    = "/:" + handler.ParamID
	childPath = "/:" + handler.ParamChildID
)

func resourceGroup(prefix string, h crudHandler) *DomainGroup {
	return NewDomainGroup(prefix).
		GET("", h.List).
		POST("", h.Create).
		GET(idPath, h.Get).
		PUT(idPath, h.Update).
		DELETE(idPath, h.Delete)
}

// nested mounts child routes of the form /:id/<segment>[/:child_id].
func nested(g *DomainGroup, segment string, h crudHandler) {
	base := idPath + "/" + segment
	g.GET(base, h.List).
		POST(base, h.Create).
		GET(base+childPath, h.Get).
		PUT(base+childPath, h.Update).
		DELETE(base+childPath, h.Delete)
}

// AdminGroups returns the route groups of the admin API. They are meant to
// be registered on a Router so they sit under /api/<version>.
func AdminGroups(h *handler.AdminHandlers, sys *handler.SystemHandler) []*DomainGroup {
	channels := resourceGroup("/channels", h.Channels)
	nested(channels, "sites", h.Sites)
	settingsPath := idPath + "/settings"
	channels.GET(settingsPath, h.Settings.List).
		GET(settingsPath+"/:"+handler.ParamSettingKey, h.Settings.Get).
		PUT(settingsPath+"/:"+handler.ParamSettingKey, h.Settings.Put).
		DELETE(settingsPath+"/:"+handler.ParamSettingKey, h.Settings.Delete)

	products := resourceGroup("/products", h.Products)
	nested(products, "images", h.Images)
	products.POST(idPath+"/images/upload", h.Images.Upload)
	nested(products, "variants", h.Variants)
	catalog := NewDomainGroup("/catalog").Mount(
		resourceGroup("/trees", h.Trees),
		resourceGroup("/categories", h.Categories),
		products,
	)

	carts := resourceGroup("/carts", h.Carts)
	nested(carts, "items", h.CartItems)
	quotes := resourceGroup("/quotes", h.Quotes)
	nested(quotes, "items", h.QuoteItems)
	orders := resourceGroup("/orders", h.Orders)
	nested(orders, "items", h.OrderItems)

	groups := []*DomainGroup{
		channels,
		resourceGroup("/brands", h.Brands),
		catalog,
		resourceGroup("/customers", h.Customers),
		resourceGroup("/customer-groups", h.CustomerGroups),
		carts,
		quotes,
		orders,
	}
	if sys != nil {
		groups = append(groups, NewDomainGroup("/system").
			GET("/info", sys.GetSystemInfo).
			GET("/ping", sys.Ping))
	}
	return groups
}

// RegisterAdmin adds the admin groups to r.
func RegisterAdmin(r *Router, h *handler.AdminHandlers, sys *handler.SystemHandler) *Router {
	for _, g := range AdminGroups(h, sys) {
		r.Register(g)
	}
	return r
}
