package storefront

import (
	"context"
	"net/http"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
)

var (
	errProductNotFound  = shared.NewAPIError(http.StatusNotFound, "Not Found", "Product not found.", nil)
	errCategoryNotFound = shared.NewAPIError(http.StatusNotFound, "Not Found", "Category not found.", nil)
)

// Products lists the channel's visible products.
func (s *Storefront) Products(ctx context.Context, q catalog.StorefrontQuery) (*catalog.StorefrontPage, error) {
	return s.svc.Products.ListForChannel(ctx, s.channelID, q)
}

// Product returns the visible product at slug with its images and variants.
func (s *Storefront) Product(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.svc.Products.GetBySlug(ctx, slug, s.channelID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errProductNotFound
	}
	return p, nil
}

// Categories lists the visible categories of the channel's trees.
func (s *Storefront) Categories(ctx context.Context) ([]models.Category, error) {
	return s.svc.Categories.ListVisible(ctx, s.channelID)
}

// CategoryPage is a category with what its landing page shows.
type CategoryPage struct {
	Category    *models.Category       `json:"category"`
	Children    []models.Category      `json:"children"`
	Breadcrumbs []models.Category      `json:"breadcrumbs"`
	Stats       *catalog.CategoryStats `json:"stats"`
}

// Category returns the visible category at slug with its children, its
// breadcrumb trail and product statistics.
func (s *Storefront) Category(ctx context.Context, slug string) (*CategoryPage, error) {
	c, err := s.svc.Categories.GetBySlug(ctx, slug, s.channelID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errCategoryNotFound
	}

	page := &CategoryPage{Category: c}
	if page.Children, err = s.svc.Categories.GetChildren(ctx, c.ID); err != nil {
		return nil, err
	}
	if page.Breadcrumbs, err = s.svc.Categories.GetBreadcrumbs(ctx, c.PathIDs); err != nil {
		return nil, err
	}
	if page.Stats, err = s.svc.Categories.GetCategoryStats(ctx, c.ID); err != nil {
		return nil, err
	}
	return page, nil
}
