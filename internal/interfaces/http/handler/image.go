package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
)

// ImageHandler serves product images: the nested CRUD routes plus a
// multipart upload that stores the file in object storage.
type ImageHandler struct {
	*NestedHandler[models.ProductImage]
	images *catalog.ProductImageService
}

// NewImageHandler creates an ImageHandler
func NewImageHandler(images *catalog.ProductImageService) *ImageHandler {
	return &ImageHandler{
		NestedHandler: NewNestedHandler[models.ProductImage](images),
		images:        images,
	}
}

// Upload godoc
// @ID           uploadProductImage
// @Summary      Upload a product image
// @Description  Stores the file in object storage and creates the image row pointing at it
// @Tags         catalog
// @Accept       multipart/form-data
// @Produce      json
// @Param        id            path      int     true   "Product ID"
// @Param        file          formData  file    true   "JPEG, PNG, WebP or GIF image"
// @Param        alt_text      formData  string  false  "Alternative text"
// @Param        is_thumbnail  formData  bool    false  "Use as the product thumbnail"
// @Param        sort_order    formData  int     false  "Sort position"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     APIKeyAuth
// @Router       /api/v3/catalog/products/{id}/images/upload [post]
func (h *ImageHandler) Upload(c *gin.Context) {
	productID, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			h.HandleError(c, payloadTooLarge(err))
			return
		}
		if errors.Is(err, http.ErrMissingFile) {
			h.HandleError(c, shared.NewValidation("Validation failed", map[string]string{"file": "Image file is required."}))
			return
		}
		h.HandleError(c, shared.NewBadRequest("Request must be multipart/form-data.", nil))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	isThumbnail, _ := strconv.ParseBool(c.PostForm("is_thumbnail"))
	sortOrder, _ := strconv.Atoi(c.PostForm("sort_order"))

	img, err := h.images.Upload(c.Request.Context(), productID, catalog.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
		AltText:     c.PostForm("alt_text"),
		IsThumbnail: isThumbnail,
		SortOrder:   sortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, img)
}
