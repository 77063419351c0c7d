package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(10))
	r.POST("/test", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too large")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	t.Run("small body", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("hello")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length over the limit", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 11))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "Request body exceeds the maximum of 10 bytes.", decodeError(t, w)["detail"])
	})

	t.Run("streamed body over the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", io.NopCloser(strings.NewReader(strings.Repeat("x", 20))))
		req.ContentLength = -1
		w := serve(r, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestBodyLimit_Disabled(t *testing.T) {
	r := newEngine(BodyLimit(0))
	w := serve(r, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 1<<16))))
	assert.Equal(t, http.StatusOK, w.Code)
}
