// Package storefront implements the shopper-facing flows of a single sales
// channel: browsing, carts, quotes, checkout and customer accounts. One
// Storefront is bound to one channel for the life of the process.
package storefront

import (
	"net/http"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/application/channel"
	"github.com/cmlibra71/keenan-group-channels/internal/application/customer"
	"github.com/cmlibra71/keenan-group-channels/internal/application/sales"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/cache"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// DefaultCountry is used for billing addresses without a country.
const DefaultCountry = "US"

var (
	ErrLoginRequired = shared.NewUnauthorized("login_required")
	errCartNotFound  = shared.NewAPIError(http.StatusNotFound, "Not Found", "Cart not found.", nil)
	errQuoteNotFound = shared.NewAPIError(http.StatusNotFound, "Not Found", "Quote not found.", nil)
)

// Services are the resource services the flows are built from. The admin
// API uses the same instances.
type Services struct {
	Channels   *channel.ChannelService
	Sites      *channel.SiteService
	Categories *catalog.CategoryService
	Products   *catalog.ProductService
	Variants   *catalog.ProductVariantService
	Customers  *customer.CustomerService
	Carts      *sales.CartService
	CartItems  *sales.CartItemService
	Quotes     *sales.QuoteService
	QuoteItems *sales.QuoteItemService
	Orders     *sales.OrderService
	OrderItems *sales.OrderItemService
}

// NewServices builds every service the storefront needs over db. notify is
// told about channel and site changes and may be nil.
func NewServices(db *gorm.DB, notify channel.ChangeNotifier) *Services {
	return &Services{
		Channels:   channel.NewChannelService(db, notify),
		Sites:      channel.NewSiteService(db, notify),
		Categories: catalog.NewCategoryService(db),
		Products:   catalog.NewProductService(db),
		Variants:   catalog.NewProductVariantService(db),
		Customers:  customer.NewCustomerService(db),
		Carts:      sales.NewCartService(db),
		CartItems:  sales.NewCartItemService(db),
		Quotes:     sales.NewQuoteService(db),
		QuoteItems: sales.NewQuoteItemService(db),
		Orders:     sales.NewOrderService(db),
		OrderItems: sales.NewOrderItemService(db),
	}
}

// Metrics receives storefront business events.
type Metrics interface {
	CartItemAdded(channelID int64)
	QuoteSubmitted(channelID int64)
	OrderPlaced(order *models.Order)
	CustomerRegistered(channelID int64)
}

type nopMetrics struct{}

func (nopMetrics) CartItemAdded(int64)       {}
func (nopMetrics) QuoteSubmitted(int64)      {}
func (nopMetrics) OrderPlaced(*models.Order) {}
func (nopMetrics) CustomerRegistered(int64)  {}

type multiMetrics []Metrics

func (mm multiMetrics) CartItemAdded(channelID int64) {
	for _, m := range mm {
		m.CartItemAdded(channelID)
	}
}

func (mm multiMetrics) QuoteSubmitted(channelID int64) {
	for _, m := range mm {
		m.QuoteSubmitted(channelID)
	}
}

func (mm multiMetrics) OrderPlaced(order *models.Order) {
	for _, m := range mm {
		m.OrderPlaced(order)
	}
}

func (mm multiMetrics) CustomerRegistered(channelID int64) {
	for _, m := range mm {
		m.CustomerRegistered(channelID)
	}
}

// Storefront runs the shopper flows of one channel.
type Storefront struct {
	channelID      int64
	svc            *Services
	sessions       *auth.SessionManager
	blacklist      auth.TokenBlacklist
	siteCache      cache.SiteConfigCache
	siteTTL        time.Duration
	idempotency    shared.IdempotencyStore
	defaultCountry string
	metrics        Metrics
}

// Option configures a Storefront.
type Option func(*Storefront)

// WithSiteCache caches the channel's site configuration for ttl.
func WithSiteCache(c cache.SiteConfigCache, ttl time.Duration) Option {
	return func(s *Storefront) {
		s.siteCache = c
		s.siteTTL = ttl
	}
}

// WithTokenBlacklist enables logout revocation.
func WithTokenBlacklist(b auth.TokenBlacklist) Option {
	return func(s *Storefront) {
		s.blacklist = b
	}
}

// WithIdempotencyStore rejects checkouts that reuse an idempotency key.
func WithIdempotencyStore(store shared.IdempotencyStore) Option {
	return func(s *Storefront) {
		s.idempotency = store
	}
}

// WithDefaultCountry overrides DefaultCountry.
func WithDefaultCountry(country string) Option {
	return func(s *Storefront) {
		if country != "" {
			s.defaultCountry = country
		}
	}
}

// WithMetrics records business events. Repeated options all receive
// every event.
func WithMetrics(m Metrics) Option {
	return func(s *Storefront) {
		switch cur := s.metrics.(type) {
		case nil:
			s.metrics = m
		case nopMetrics:
			if m != nil {
				s.metrics = m
			}
		case multiMetrics:
			if m != nil {
				s.metrics = append(cur, m)
			}
		default:
			if m != nil {
				s.metrics = multiMetrics{cur, m}
			}
		}
	}
}

// New creates the storefront of channelID.
func New(channelID int64, svc *Services, sessions *auth.SessionManager, opts ...Option) *Storefront {
	s := &Storefront{
		channelID:      channelID,
		svc:            svc,
		sessions:       sessions,
		blacklist:      auth.NewInMemoryTokenBlacklist(),
		siteCache:      cache.NewInMemorySiteConfigCache(),
		defaultCountry: DefaultCountry,
		metrics:        nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChannelID is the channel this storefront serves.
func (s *Storefront) ChannelID() int64 { return s.channelID }

// Services exposes the underlying resource services.
func (s *Storefront) Services() *Services { return s.svc }
