package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/application/storefront"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/handler"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/middleware"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func serve(engine http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, DefaultAPIVersion, r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "admin")
		c.Next()
	}))

	r.Register(NewDomainGroup("/brands").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "brands")
	})).Setup()

	w := serve(engine, http.MethodGet, "/api/v3/brands", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "brands", w.Body.String())
	assert.Equal(t, "admin", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("every method", func(t *testing.T) {
		engine := gin.New()
		reply := func(status int) gin.HandlerFunc {
			return func(c *gin.Context) { c.Status(status) }
		}
		NewDomainGroup("/orders").
			GET("", reply(http.StatusOK)).
			POST("", reply(http.StatusCreated)).
			PUT("/:id", reply(http.StatusOK)).
			PATCH("/:id", reply(http.StatusAccepted)).
			DELETE("/:id", reply(http.StatusNoContent)).
			RegisterRoutes(engine.Group("/api/v3"))

		tests := []struct {
			method string
			path   string
			want   int
		}{
			{http.MethodGet, "/api/v3/orders", http.StatusOK},
			{http.MethodPost, "/api/v3/orders", http.StatusCreated},
			{http.MethodPut, "/api/v3/orders/7", http.StatusOK},
			{http.MethodPatch, "/api/v3/orders/7", http.StatusAccepted},
			{http.MethodDelete, "/api/v3/orders/7", http.StatusNoContent},
		}
		for _, tt := range tests {
			w := serve(engine, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("middleware and mounted groups", func(t *testing.T) {
		engine := gin.New()
		products := NewDomainGroup("/products").GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "products")
		})
		catalog := NewDomainGroup("/catalog").Use(func(c *gin.Context) {
			c.Header("X-Group", "catalog")
			c.Next()
		}).Mount(products)
		catalog.Mount(NewDomainGroup("/trees").GET("", func(c *gin.Context) { c.String(http.StatusOK, "trees") }))
		catalog.RegisterRoutes(&engine.RouterGroup)

		w := serve(engine, http.MethodGet, "/catalog/products", "", nil)
		assert.Equal(t, "products", w.Body.String())
		assert.Equal(t, "catalog", w.Header().Get("X-Group"))

		w = serve(engine, http.MethodGet, "/catalog/trees", "", nil)
		assert.Equal(t, "trees", w.Body.String())
	})
}

const testKey = "admin-key"

func adminEngine(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	core := storefront.NewServices(db, nil)
	handlers := handler.NewAdminHandlers(handler.NewAdminServices(core, db))

	engine := gin.New()
	r := NewRouter(engine, WithMiddleware(middleware.APIKeyAuth([]string{testKey})))
	RegisterAdmin(r, handlers, handler.NewSystemHandler("channels")).Setup()
	return engine
}

func TestAdminRoutes(t *testing.T) {
	engine := adminEngine(t)
	key := map[string]string{middleware.HeaderAuthToken: testKey}

	w := serve(engine, http.MethodGet, "/api/v3/brands", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(engine, http.MethodGet, "/api/v3/system/ping", "", key)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodPost, "/api/v3/catalog/products", `{"name":"Hammer","price":"10"}`, key)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	paths := []string{
		"/api/v3/channels",
		"/api/v3/brands",
		"/api/v3/catalog/trees",
		"/api/v3/catalog/categories",
		"/api/v3/catalog/products",
		"/api/v3/catalog/products/1",
		"/api/v3/catalog/products/1/images",
		"/api/v3/catalog/products/1/variants",
		"/api/v3/customers",
		"/api/v3/customer-groups",
		"/api/v3/carts",
		"/api/v3/quotes",
		"/api/v3/orders",
	}
	require.Equal(t, int64(1), created.Data.ID)
	for _, p := range paths {
		w := serve(engine, http.MethodGet, p, "", key)
		assert.Equal(t, http.StatusOK, w.Code, p)
	}

	for _, p := range []string{
		"/api/v3/channels/1/sites",
		"/api/v3/channels/1/settings",
		"/api/v3/carts/1/items",
		"/api/v3/quotes/1/items/2",
		"/api/v3/orders/1/items",
	} {
		w := serve(engine, http.MethodGet, p, "", key)
		assert.Equal(t, http.StatusNotFound, w.Code, p)
		assert.Contains(t, w.Body.String(), "does not exist", p)
	}

	w = serve(engine, http.MethodPost, "/api/v3/catalog/products/1/images/upload", "", key)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorefrontRoutes(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ch := testutil.SeedChannel(t, db, "Retail")
	sessions, err := auth.NewSessionManager(config.SessionConfig{
		Secret:     "router-test-secret-0123456789abcdef012345",
		Expiration: time.Hour,
	})
	require.NoError(t, err)
	sf := storefront.New(ch.ID, storefront.NewServices(db, nil), sessions)

	engine := gin.New()
	RegisterStorefront(engine, handler.NewStorefrontHandler(sf, handler.CookieOptions{}),
		middleware.StorefrontContext(ch.ID, sf))

	w := serve(engine, http.MethodGet, "/storefront/products", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/storefront/cart", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())

	w = serve(engine, http.MethodGet, "/storefront/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(engine, http.MethodPost, "/storefront/quote/submit", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
