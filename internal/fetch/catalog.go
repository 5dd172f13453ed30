package fetch

import (
	"context"
	"strconv"

	"github.com/fjod/deisishop/internal/catalog"
	"github.com/fjod/deisishop/internal/domain"
)

// Catalog is the read side of the remote shop API.
type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListCategoryProducts(ctx context.Context, category string) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

func Products(l *Loader, c Catalog) *Resource[[]domain.Product] {
	return NewResource(l, "products", c.ListProducts)
}

// Product parses the route id first; a non-numeric id yields a failed
// resource without touching the network.
func Product(l *Loader, c Catalog, rawID string) *Resource[*domain.Product] {
	id, err := catalog.ParseID(rawID)
	if err != nil {
		return Failed[*domain.Product](err)
	}
	return NewResource(l, "product:"+strconv.FormatInt(id, 10), func(ctx context.Context) (*domain.Product, error) {
		return c.GetProduct(ctx, id)
	})
}

func CategoryProducts(l *Loader, c Catalog, category string) *Resource[[]domain.Product] {
	return NewResource(l, "category:"+category, func(ctx context.Context) ([]domain.Product, error) {
		return c.ListCategoryProducts(ctx, category)
	})
}

func Categories(l *Loader, c Catalog) *Resource[[]string] {
	return NewResource(l, "categories", c.ListCategories)
}
