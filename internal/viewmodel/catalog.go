package viewmodel

import (
	"sync"

	"github.com/fjod/deisishop/internal/domain"
)

// Catalog keeps the three projection inputs together and recomputes the
// visible list whenever one of them changes.
type Catalog struct {
	mu        sync.RWMutex
	projector *Projector
	products  []domain.Product
	search    string
	sort      SortKey
	visible   []domain.Product
}

func NewCatalog(projector *Projector) *Catalog {
	if projector == nil {
		projector = defaultProjector
	}
	return &Catalog{projector: projector, visible: []domain.Product{}}
}

func (c *Catalog) SetProducts(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.recompute()
}

func (c *Catalog) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = search
	c.recompute()
}

func (c *Catalog) SetSort(key SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sort = key
	c.recompute()
}

func (c *Catalog) Search() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search
}

func (c *Catalog) Sort() SortKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sort
}

// Visible returns a copy of the current projection.
func (c *Catalog) Visible() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.visible))
	copy(out, c.visible)
	return out
}

func (c *Catalog) recompute() {
	c.visible = c.projector.Project(c.products, c.search, c.sort)
}
