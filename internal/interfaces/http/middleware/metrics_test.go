package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route string
	status        int
}

type recordingMetrics struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	observed []observation
}

func (m *recordingMetrics) RequestStarted() func() {
	m.mu.Lock()
	m.inFlight++
	m.peak = max(m.peak, m.inFlight)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}
}

func (m *recordingMetrics) ObserveRequest(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = append(m.observed, observation{method, route, status})
}

func TestMetrics(t *testing.T) {
	m := &recordingMetrics{}
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/products/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/products/hammer", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Len(t, m.observed, 2)
	assert.Equal(t, observation{"GET", "/products/:slug", 200}, m.observed[0])
	assert.Equal(t, observation{"GET", "", 404}, m.observed[1])
	assert.Equal(t, 0, m.inFlight)
	assert.Equal(t, 1, m.peak)
}
