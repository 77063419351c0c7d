package handler

import (
	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/application/channel"
	"github.com/cmlibra71/keenan-group-channels/internal/application/customer"
	"github.com/cmlibra71/keenan-group-channels/internal/application/sales"
	"github.com/cmlibra71/keenan-group-channels/internal/application/storefront"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AdminServices are the resource services exposed by the admin API.
type AdminServices struct {
	Channels       *channel.ChannelService
	Sites          *channel.SiteService
	Settings       *channel.SettingsService
	Brands         *catalog.BrandService
	Trees          *catalog.CategoryTreeService
	Categories     *catalog.CategoryService
	Products       *catalog.ProductService
	Images         *catalog.ProductImageService
	Variants       *catalog.ProductVariantService
	Customers      *customer.CustomerService
	CustomerGroups *customer.CustomerGroupService
	Carts          *sales.CartService
	CartItems      *sales.CartItemService
	Quotes         *sales.QuoteService
	QuoteItems     *sales.QuoteItemService
	Orders         *sales.OrderService
	OrderItems     *sales.OrderItemService
}

// NewAdminServices completes the storefront's services with the resources
// only the admin API manages. The shared services are reused, not copied.
func NewAdminServices(core *storefront.Services, db *gorm.DB, imageOpts ...catalog.ImageOption) AdminServices {
	return AdminServices{
		Channels:       core.Channels,
		Sites:          core.Sites,
		Settings:       channel.NewSettingsService(db),
		Brands:         catalog.NewBrandService(db),
		Trees:          catalog.NewCategoryTreeService(db),
		Categories:     core.Categories,
		Products:       core.Products,
		Images:         catalog.NewProductImageService(db, imageOpts...),
		Variants:       core.Variants,
		Customers:      core.Customers,
		CustomerGroups: customer.NewCustomerGroupService(db),
		Carts:          core.Carts,
		CartItems:      core.CartItems,
		Quotes:         core.Quotes,
		QuoteItems:     core.QuoteItems,
		Orders:         core.Orders,
		OrderItems:     core.OrderItems,
	}
}

// AdminHandlers holds one handler per admin resource.
type AdminHandlers struct {
	Channels       *ResourceHandler[models.Channel]
	Sites          *NestedHandler[models.Site]
	Settings       *SettingsHandler
	Brands         *ResourceHandler[models.Brand]
	Trees          *ResourceHandler[models.CategoryTree]
	Categories     *ResourceHandler[models.Category]
	Products       *ResourceHandler[models.Product]
	Images         *ImageHandler
	Variants       *NestedHandler[models.ProductVariant]
	Customers      *ResourceHandler[models.Customer]
	CustomerGroups *ResourceHandler[models.CustomerGroup]
	Carts          *ResourceHandler[models.Cart]
	CartItems      *NestedHandler[models.CartItem]
	Quotes         *ResourceHandler[models.Quote]
	QuoteItems     *NestedHandler[models.QuoteItem]
	Orders         *ResourceHandler[models.Order]
	OrderItems     *NestedHandler[models.OrderItem]
}

// NewAdminHandlers creates the admin handlers over svc.
func NewAdminHandlers(svc AdminServices) *AdminHandlers {
	return &AdminHandlers{
		Channels:       NewResourceHandler[models.Channel](svc.Channels),
		Sites:          NewNestedHandler[models.Site](svc.Sites),
		Settings:       NewSettingsHandler(svc.Settings),
		Brands:         NewResourceHandler[models.Brand](svc.Brands),
		Trees:          NewResourceHandler[models.CategoryTree](svc.Trees),
		Categories:     NewResourceHandler[models.Category](svc.Categories),
		Products:       NewResourceHandler[models.Product](svc.Products),
		Images:         NewImageHandler(svc.Images),
		Variants:       NewNestedHandler[models.ProductVariant](svc.Variants),
		Customers:      NewResourceHandler[models.Customer](svc.Customers),
		CustomerGroups: NewResourceHandler[models.CustomerGroup](svc.CustomerGroups),
		Carts:          NewResourceHandler[models.Cart](svc.Carts),
		CartItems:      NewNestedHandler[models.CartItem](svc.CartItems),
		Quotes:         NewResourceHandler[models.Quote](svc.Quotes),
		QuoteItems:     NewNestedHandler[models.QuoteItem](svc.QuoteItems),
		Orders:         NewResourceHandler[models.Order](svc.Orders),
		OrderItems:     NewNestedHandler[models.OrderItem](svc.OrderItems),
	}
}
