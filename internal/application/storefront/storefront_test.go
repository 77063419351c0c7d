package storefront

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/cache"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingMetrics struct {
	mu     sync.Mutex
	events []string
}

func (m *recordingMetrics) add(e string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *recordingMetrics) CartItemAdded(int64)       { m.add("cart_item") }
func (m *recordingMetrics) QuoteSubmitted(int64)      { m.add("quote") }
func (m *recordingMetrics) OrderPlaced(*models.Order) { m.add("order") }
func (m *recordingMetrics) CustomerRegistered(int64)  { m.add("customer") }

type fixture struct {
	db      *gorm.DB
	sf      *Storefront
	channel *models.Channel
	metrics *recordingMetrics
	hammer  *models.Product
	saw     *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	ch := testutil.SeedChannel(t, db, "Retail")

	sessions, err := auth.NewSessionManager(config.SessionConfig{
		Secret:     "storefront-test-secret-0123456789abcdef",
		Expiration: time.Hour,
	})
	require.NoError(t, err)

	siteCache := cache.NewInMemorySiteConfigCache()
	t.Cleanup(func() { _ = siteCache.Close() })
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	m := &recordingMetrics{}
	sf := New(ch.ID, NewServices(db, nil), sessions,
		WithSiteCache(siteCache, time.Minute),
		WithIdempotencyStore(idem),
		WithMetrics(m),
	)

	f := &fixture{db: db, sf: sf, channel: ch, metrics: m}
	f.hammer = f.visibleProduct(t, "hammer", "10")
	f.saw = f.visibleProduct(t, "saw", "25")
	return f
}

func (f *fixture) visibleProduct(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p := testutil.SeedProduct(t, f.db, name, price)
	testutil.Seed(t, f.db, &models.ProductChannelAssignment{ProductID: p.ID, ChannelID: f.channel.ID})
	return p
}

func (f *fixture) register(t *testing.T, email string) *IssuedSession {
	t.Helper()
	s, err := f.sf.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "correct horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return s
}

func validCheckout() CheckoutInput {
	return CheckoutInput{
		Email:      "ada@example.com",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Address1:   "1 Analytical Way",
		City:       "London",
		PostalCode: "N1 9GU",
	}
}

func TestStorefront_Site(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.Seed(t, f.db, &models.Site{ChannelID: f.channel.ID, URL: "https://retail.example.com"})

	cfg, err := f.sf.Site(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Retail", cfg.Channel.Name)
	require.NotNil(t, cfg.Site)
	assert.Equal(t, "https://retail.example.com", cfg.Site.URL)

	// served from cache after the row changes
	require.NoError(t, f.db.Model(&models.Site{}).Where("channel_id = ?", f.channel.ID).
		Update("url", "https://changed.example.com").Error)
	cfg, err = f.sf.Site(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://retail.example.com", cfg.Site.URL)
}

func TestStorefront_Browse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden := testutil.SeedProduct(t, f.db, "secret", "5")

	p, err := f.sf.Product(ctx, "hammer")
	require.NoError(t, err)
	assert.Equal(t, f.hammer.ID, p.ID)

	_, err = f.sf.Product(ctx, "/"+hidden.Name)
	testutil.AssertAPIError(t, err, 404, "Product not found.")

	page, err := f.sf.Products(ctx, catalog.StorefrontQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, int64(2), page.Total)

	_, err = f.sf.Category(ctx, "nowhere")
	testutil.AssertAPIError(t, err, 404, "Category not found.")
}

func TestStorefront_CartFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.sf.GetCart(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, cart)

	cart, err = f.sf.AddToCart(ctx, "", LineInput{ProductID: f.hammer.ID}, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	cartID := cart.UUID.String()

	cart, err = f.sf.AddToCart(ctx, cartID, LineInput{ProductID: f.hammer.ID}, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product increments the existing line")
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = f.sf.AddToCart(ctx, cartID, LineInput{ProductID: f.saw.ID}, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "45", cart.CartAmount.String())

	_, err = f.sf.AddToCart(ctx, cartID, LineInput{ProductID: 999}, nil)
	testutil.AssertAPIError(t, err, 404, "Product not found.")

	var sawLine int64
	for _, it := range cart.Items {
		if it.ProductID == f.saw.ID {
			sawLine = it.ID
		}
	}
	cart, err = f.sf.UpdateCartItem(ctx, cartID, sawLine, 2)
	require.NoError(t, err)
	assert.Equal(t, "70", cart.CartAmount.String())

	cart, err = f.sf.RemoveCartItem(ctx, cartID, sawLine)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "20", cart.CartAmount.String())

	_, err = f.sf.UpdateCartItem(ctx, "00000000-0000-0000-0000-000000000000", sawLine, 1)
	testutil.AssertAPIError(t, err, 404, "Cart not found.")

	assert.Equal(t, []string{"cart_item", "cart_item", "cart_item"}, f.metrics.events)
}

func TestStorefront_VariantPricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := testutil.Seed(t, f.db, &models.ProductVariant{
		ProductID: f.hammer.ID,
		Price:     testutil.Ptr(testutil.Money(t, "12")),
		SalePrice: testutil.Ptr(testutil.Money(t, "11")),
	})

	cart, err := f.sf.AddToCart(ctx, "", LineInput{ProductID: f.hammer.ID, VariantID: &v.ID}, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "12", cart.Items[0].ListPrice.String())
	require.NotNil(t, cart.Items[0].SalePrice)
	assert.Equal(t, "11", cart.Items[0].SalePrice.String())

	_, err = f.sf.AddToCart(ctx, "", LineInput{ProductID: f.saw.ID, VariantID: &v.ID}, nil)
	testutil.AssertAPIError(t, err, 404, "")
}

func TestStorefront_QuoteFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.sf.AddToQuote(ctx, "", LineInput{ProductID: f.saw.ID}, nil)
	require.NoError(t, err)
	quoteID := q.UUID.String()
	assert.Nil(t, q.CustomerID)

	_, err = f.sf.SubmitQuote(ctx, quoteID, nil, nil)
	assert.ErrorIs(t, err, ErrLoginRequired)

	session := f.register(t, "ada@example.com")
	q, err = f.sf.AddToQuote(ctx, quoteID, LineInput{ProductID: f.saw.ID}, &session.Session)
	require.NoError(t, err)
	require.NotNil(t, q.CustomerID)
	assert.Equal(t, session.CustomerID, *q.CustomerID)
	require.Len(t, q.Items, 1)
	assert.Equal(t, 2, q.Items[0].Quantity)

	notes := "Need delivery by Friday"
	submitted, err := f.sf.SubmitQuote(ctx, quoteID, &notes, &session.Session)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusSubmitted, submitted.Status)
	assert.Equal(t, notes, *submitted.Notes)

	_, err = f.sf.SubmitQuote(ctx, quoteID, nil, &session.Session)
	testutil.AssertAPIError(t, err, 404, "Quote not found.")

	quotes, err := f.sf.ListQuotes(ctx, &session.Session)
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	_, err = f.sf.ListQuotes(ctx, nil)
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestStorefront_SubmitEmptyQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.register(t, "ada@example.com")

	q, err := f.sf.AddToQuote(ctx, "", LineInput{ProductID: f.saw.ID}, &session.Session)
	require.NoError(t, err)
	q, err = f.sf.RemoveQuoteItem(ctx, q.UUID.String(), q.Items[0].ID)
	require.NoError(t, err)

	_, err = f.sf.SubmitQuote(ctx, q.UUID.String(), nil, &session.Session)
	testutil.AssertAPIError(t, err, 422, "Quote is empty.")
}

func TestStorefront_Checkout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.register(t, "ada@example.com")

	_, err := f.sf.Checkout(ctx, "", validCheckout(), nil, "")
	testutil.AssertAPIError(t, err, 404, "Cart not found.")

	cart, err := f.sf.AddToCart(ctx, "", LineInput{ProductID: f.hammer.ID}, &session.Session)
	require.NoError(t, err)
	cartID := cart.UUID.String()
	_, err = f.sf.AddToCart(ctx, cartID, LineInput{ProductID: f.saw.ID}, &session.Session)
	require.NoError(t, err)
	_, err = f.sf.AddToCart(ctx, cartID, LineInput{ProductID: f.saw.ID}, &session.Session)
	require.NoError(t, err)

	in := validCheckout()
	in.City = "  "
	_, err = f.sf.Checkout(ctx, cartID, in, &session.Session, "")
	apiErr := testutil.APIError(t, err)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "Please fill in all required fields.", apiErr.Detail)
	assert.Contains(t, apiErr.Errors, "city")

	order, err := f.sf.Checkout(ctx, cartID, validCheckout(), &session.Session, "key-1")
	require.NoError(t, err)
	require.NotNil(t, order.OrderNumber)
	assert.True(t, strings.HasPrefix(*order.OrderNumber, "KG-"))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "60", order.TotalIncTax.String())
	assert.Equal(t, 3, order.ItemsTotal)
	assert.Equal(t, session.CustomerID, *order.CustomerID)
	assert.Contains(t, string(order.BillingAddress), `"country":"US"`)

	var items []models.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("id").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "saw", items[1].Name)
	assert.Equal(t, "50", items[1].TotalIncTax.String())

	// the cart is completed, so a retry finds nothing to check out
	_, err = f.sf.Checkout(ctx, cartID, validCheckout(), &session.Session, "")
	testutil.AssertAPIError(t, err, 404, "Cart not found.")

	_, err = f.sf.Checkout(ctx, cartID, validCheckout(), &session.Session, "key-1")
	testutil.AssertAPIError(t, err, 409, "This checkout has already been submitted.")

	orders, err := f.sf.ListOrders(ctx, &session.Session)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	assert.Contains(t, f.metrics.events, "order")
}

func TestStorefront_CheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.sf.AddToCart(ctx, "", LineInput{ProductID: f.hammer.ID}, nil)
	require.NoError(t, err)
	_, err = f.sf.RemoveCartItem(ctx, cart.UUID.String(), cart.Items[0].ID)
	require.NoError(t, err)

	_, err = f.sf.Checkout(ctx, cart.UUID.String(), CheckoutInput{}, nil, "")
	testutil.AssertAPIError(t, err, 422, "Cart is empty.")
}

func TestStorefront_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sf.Register(ctx, RegisterInput{Email: "a@example.com", Password: "long enough"})
	testutil.AssertAPIError(t, err, 400, "All fields are required.")

	_, err = f.sf.Register(ctx, RegisterInput{Email: "a@example.com", Password: "short", FirstName: "A", LastName: "B"})
	testutil.AssertAPIError(t, err, 400, "Password must be at least 8 characters.")

	issued := f.register(t, "Ada@Example.com")
	assert.Equal(t, "ada@example.com", issued.Email)
	assert.NotEmpty(t, issued.Token)

	_, err = f.sf.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another one", FirstName: "A", LastName: "B"})
	testutil.AssertAPIError(t, err, 409, "An account with this email already exists.")

	_, err = f.sf.Login(ctx, "", "")
	testutil.AssertAPIError(t, err, 400, "Email and password are required.")
	_, err = f.sf.Login(ctx, "ada@example.com", "wrong password")
	testutil.AssertAPIError(t, err, 401, "Invalid email or password.")

	login, err := f.sf.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, issued.CustomerID, login.CustomerID)

	acct, err := f.sf.Account(ctx, &login.Session)
	require.NoError(t, err)
	assert.Equal(t, "Ada", *acct.FirstName)

	assert.Equal(t, []string{"customer"}, f.metrics.events)
}

func TestStorefront_SessionsAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issued := f.register(t, "ada@example.com")

	s, err := f.sf.ResolveSession(ctx, issued.Token)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, issued.CustomerID, s.CustomerID)

	s, err = f.sf.ResolveSession(ctx, "not-a-token")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, f.sf.Logout(ctx, &issued.Session))
	s, err = f.sf.ResolveSession(ctx, issued.Token)
	require.NoError(t, err)
	assert.Nil(t, s, "revoked sessions resolve to anonymous")

	require.NoError(t, f.sf.Logout(ctx, nil))

	_, err = f.sf.Account(ctx, nil)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, time.Hour, f.sf.SessionLifetime())
}

func TestWithMetrics_FansOut(t *testing.T) {
	a, b := &recordingMetrics{}, &recordingMetrics{}
	s := New(1, nil, nil, WithMetrics(a), WithMetrics(nil), WithMetrics(b))

	s.metrics.QuoteSubmitted(1)
	s.metrics.OrderPlaced(&models.Order{})

	assert.Equal(t, []string{"quote", "order"}, a.events)
	assert.Equal(t, []string{"quote", "order"}, b.events)
}
