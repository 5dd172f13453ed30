// Package viewmodel derives the filtered, sorted product list shown to a
// shopper from the fetched catalog, a search text and a sort key.
package viewmodel

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fjod/deisishop/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// ParseSortKey maps user input onto a known key; anything else keeps the
// catalog order.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return k
	default:
		return SortNone
	}
}

// Projector holds the locale used for title collation.
type Projector struct {
	tag language.Tag
}

func NewProjector(locale string) *Projector {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Projector{tag: tag}
}

var defaultProjector = NewProjector("pt")

func Project(products []domain.Product, searchText string, key SortKey) []domain.Product {
	return defaultProjector.Project(products, searchText, key)
}

// Project returns a new slice; products is never modified.
func (p *Projector) Project(products []domain.Product, searchText string, key SortKey) []domain.Product {
	out := filter(products, searchText)

	switch key {
	case SortNameAsc, SortNameDesc:
		// collators keep scratch buffers, so each call gets its own
		col := collate.New(p.tag)
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			c := col.CompareString(a.Title, b.Title)
			if key == SortNameDesc {
				return -c
			}
			return c
		})
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	}
	return out
}

func filter(products []domain.Product, searchText string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	if searchText == "" {
		return append(out, products...)
	}

	fold := cases.Fold()
	needle := fold.String(searchText)
	for _, p := range products {
		if strings.Contains(fold.String(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}
