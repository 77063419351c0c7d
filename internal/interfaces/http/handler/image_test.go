package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]string
}

func (s *memoryStore) Upload(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = contentType
	return nil
}

func (s *memoryStore) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStore) PublicURL(key string) string { return "https://cdn.example/" + key }

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartRequest(t *testing.T, path, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		if contentType != "" {
			hdr.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImageHandler_Upload(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	product := testutil.SeedProduct(t, db, "hammer", "10")
	store := &memoryStore{objects: map[string]string{}}

	h := NewImageHandler(catalog.NewProductImageService(db, catalog.WithObjectStore(store, 1<<20)))
	r := gin.New()
	r.POST("/products/:id/images/upload", h.Upload)
	r.GET("/products/:id/images", h.List)

	path := fmt.Sprintf("/products/%d/images/upload", product.ID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, path, "front-view.png", "", pngHeader, map[string]string{
		"is_thumbnail": "true",
		"sort_order":   "2",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	img := decodeData[models.ProductImage](t, w)
	assert.Equal(t, product.ID, img.ProductID)
	assert.True(t, strings.HasPrefix(img.URLStandard, fmt.Sprintf("https://cdn.example/products/%d/", product.ID)))
	assert.True(t, strings.HasSuffix(img.URLStandard, ".png"))
	require.NotNil(t, img.AltText)
	assert.Equal(t, "front-view", *img.AltText)
	assert.Equal(t, 2, img.SortOrder)
	require.Len(t, store.objects, 1)

	w = request(t, r, http.MethodGet, fmt.Sprintf("/products/%d/images", product.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]models.ProductImage](t, w), 1)
}

func TestImageHandler_UploadRejects(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	product := testutil.SeedProduct(t, db, "hammer", "10")
	store := &memoryStore{objects: map[string]string{}}

	h := NewImageHandler(catalog.NewProductImageService(db, catalog.WithObjectStore(store, 1<<20)))
	r := gin.New()
	r.POST("/products/:id/images/upload", h.Upload)
	path := fmt.Sprintf("/products/%d/images/upload", product.ID)

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, path, "", "", nil, map[string]string{"alt_text": "x"}))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Image file is required.", decodeProblem(t, w).Errors["file"])
	})

	t.Run("not an image", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, path, "notes.txt", "text/plain", []byte("hello"), nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Image must be JPEG, PNG, WebP or GIF.", decodeProblem(t, w).Errors["file"])
	})

	t.Run("unknown product", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "/products/999/images/upload", "a.png", "image/png", pngHeader, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		w := request(t, r, http.MethodPost, path, map[string]any{"url_standard": "a.png"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.Empty(t, store.objects)
}

func TestImageHandler_UploadDisabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	product := testutil.SeedProduct(t, db, "hammer", "10")

	h := NewImageHandler(catalog.NewProductImageService(db))
	r := gin.New()
	r.POST("/products/:id/images/upload", h.Upload)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, fmt.Sprintf("/products/%d/images/upload", product.ID), "a.png", "image/png", pngHeader, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image uploads are not enabled.", decodeProblem(t, w).Detail)
}
