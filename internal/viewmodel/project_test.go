package viewmodel

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/fjod/deisishop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Caneca DEISI", Price: 7.5},
		{ID: 2, Title: "agenda", Price: 12},
		{ID: 3, Title: "Écharpe", Price: 15},
		{ID: 4, Title: "T-shirt DEISI", Price: 12},
		{ID: 5, Title: "Boné", Price: 9.99},
	}
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestProject_EmptySearchMatchesAll(t *testing.T) {
	got := Project(sample(), "", SortNone)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got))
}

func TestProject_SearchIsCaseInsensitive(t *testing.T) {
	got := Project(sample(), "deisi", SortNone)
	assert.Equal(t, []int64{1, 4}, ids(got))

	got = Project(sample(), "ÉCHAR", SortNone)
	assert.Equal(t, []int64{3}, ids(got))
}

func TestProject_NameSortIsLocaleAware(t *testing.T) {
	got := Project(sample(), "", SortNameAsc)
	assert.Equal(t, []int64{2, 5, 1, 3, 4}, ids(got))

	got = Project(sample(), "", SortNameDesc)
	assert.Equal(t, []int64{4, 3, 1, 5, 2}, ids(got))
}

func TestProject_PriceSortIsStable(t *testing.T) {
	got := Project(sample(), "", SortPriceAsc)
	assert.Equal(t, []int64{1, 5, 2, 4, 3}, ids(got))

	got = Project(sample(), "", SortPriceDesc)
	assert.Equal(t, []int64{3, 2, 4, 5, 1}, ids(got))
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	in := sample()
	before := slices.Clone(in)

	_ = Project(in, "a", SortPriceDesc)
	_ = Project(in, "", SortNameAsc)

	assert.Equal(t, before, in)
}

func TestProject_Idempotent(t *testing.T) {
	in := sample()
	a := Project(in, "e", SortNameAsc)
	b := Project(in, "e", SortNameAsc)
	assert.Equal(t, a, b)
}

func TestProject_NoMatch(t *testing.T) {
	got := Project(sample(), "zzz", SortPriceAsc)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func randomProducts(r *rand.Rand, n int) []domain.Product {
	words := []string{"caneca", "Agenda", "sweat", "Livro", "boné", "DEISI", "porta-chaves"}
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{
			ID:    int64(i + 1),
			Title: fmt.Sprintf("%s %s", words[r.Intn(len(words))], words[r.Intn(len(words))]),
			Price: domain.Price(float64(r.Intn(20)) / 2),
		}
	}
	return out
}

func TestProject_FilterSoundAndComplete(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		products := randomProducts(r, 30)
		search := []string{"CAN", "deisi", "a", "chaves", "x"}[i%5]

		got := Project(products, search, SortNone)
		gotIDs := map[int64]bool{}
		for _, p := range got {
			gotIDs[p.ID] = true
			assert.Contains(t, strings.ToLower(p.Title), strings.ToLower(search))
		}
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
				assert.True(t, gotIDs[p.ID], "product %d should match %q", p.ID, search)
			}
		}
	}
}

func TestProject_PriceAscReversedIsPriceDesc(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		products := randomProducts(r, 25)

		asc := Project(products, "", SortPriceAsc)
		desc := Project(products, "", SortPriceDesc)
		slices.Reverse(asc)

		require.Len(t, asc, len(desc))
		for j := range asc {
			assert.Equal(t, desc[j].Price, asc[j].Price)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortNameAsc, ParseSortKey("name-asc"))
	assert.Equal(t, SortPriceDesc, ParseSortKey(" PRICE-DESC "))
	assert.Equal(t, SortNone, ParseSortKey("rating"))
	assert.Equal(t, SortNone, ParseSortKey(""))
}

func TestCatalog_RecomputesOnEveryInput(t *testing.T) {
	c := NewCatalog(nil)
	assert.Empty(t, c.Visible())

	c.SetProducts(sample())
	assert.Len(t, c.Visible(), 5)

	c.SetSearch("deisi")
	assert.Equal(t, []int64{1, 4}, ids(c.Visible()))

	c.SetSort(SortPriceDesc)
	assert.Equal(t, []int64{4, 1}, ids(c.Visible()))
	assert.Equal(t, "deisi", c.Search())
	assert.Equal(t, SortPriceDesc, c.Sort())

	c.SetProducts(nil)
	assert.Empty(t, c.Visible())
}
