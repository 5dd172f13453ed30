package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/deisishop/internal/domain"
)

const base = "https://deisishop.pythonanywhere.com"

func TestImageURL(t *testing.T) {
	tests := []struct {
		image string
		want  string
	}{
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"http://cdn.example.com/a.png", "http://cdn.example.com/a.png"},
		{"HTTPS://cdn.example.com/a.png", "HTTPS://cdn.example.com/a.png"},
		{"/media/caneca.png", base + "/media/caneca.png"},
		{"media/caneca.png", base + "/media/caneca.png"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.image, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageURL(base, tt.image))
		})
	}
}

func TestStarsFor(t *testing.T) {
	tests := []struct {
		rate float64
		want Stars
	}{
		{0, Stars{Full: 0, Half: false, Empty: 5}},
		{3.4, Stars{Full: 3, Half: false, Empty: 2}},
		{3.5, Stars{Full: 3, Half: true, Empty: 1}},
		{3.7, Stars{Full: 3, Half: true, Empty: 1}},
		{4.5, Stars{Full: 4, Half: true, Empty: 0}},
		{5, Stars{Full: 5, Half: false, Empty: 0}},
		{7, Stars{Full: 5, Half: false, Empty: 0}},
		{-1, Stars{Full: 0, Half: false, Empty: 5}},
	}

	for _, tt := range tests {
		got := StarsFor(tt.rate)
		assert.Equal(t, tt.want, got, "rate %v", tt.rate)

		n := got.Full + got.Empty
		if got.Half {
			n++
		}
		assert.Equal(t, 5, n)
	}
}

func TestStars_String(t *testing.T) {
	assert.Equal(t, "★★★½☆", StarsFor(3.6).String())
	assert.Equal(t, "☆☆☆☆☆", StarsFor(0).String())
}

func TestRatingSummary(t *testing.T) {
	assert.Equal(t, "(4.5) · 120", RatingSummary(domain.Rating{Rate: 4.5, Count: 120}))
	assert.Equal(t, "(3) · 0", RatingSummary(domain.Rating{Rate: 3}))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "25.50 €", FormatPrice(decimal.RequireFromString("25.5")))
	assert.Equal(t, "0.00 €", FormatPrice(decimal.Zero))
	assert.Equal(t, "9.99 €", FormatPrice(decimal.NewFromFloat(9.99)))
}

type fakeCart map[int64]int

func (c fakeCart) Quantity(id int64) int { return c[id] }

func TestRenderer_Card(t *testing.T) {
	r := NewRenderer(base)
	p := domain.Product{
		ID:       3,
		Title:    "Caneca",
		Price:    7.5,
		Category: "Merch",
		Image:    "/media/caneca.png",
		Rating:   domain.Rating{Rate: 4.5, Count: 12},
	}

	card := r.Card(p, fakeCart{3: 2})
	assert.Equal(t, int64(3), card.ID)
	assert.Equal(t, "7.50 €", card.PriceFmt)
	assert.Equal(t, base+"/media/caneca.png", card.ImageURL)
	assert.True(t, card.InCart)
	assert.Equal(t, 2, card.Quantity)
	assert.Equal(t, Stars{Full: 4, Half: true}, card.Rating.Stars)
	assert.Equal(t, "(4.5) · 12", card.Rating.Summary)

	assert.False(t, r.Card(p, fakeCart{}).InCart)
	assert.False(t, r.Card(p, nil).InCart)
}

func TestRenderer_Cards(t *testing.T) {
	r := NewRenderer(base)
	cards := r.Cards([]domain.Product{{ID: 1}, {ID: 2}}, fakeCart{2: 1})

	require.Len(t, cards, 2)
	assert.False(t, cards[0].InCart)
	assert.True(t, cards[1].InCart)

	assert.NotNil(t, r.Cards(nil, nil))
}

func TestRenderer_Detail(t *testing.T) {
	d := NewRenderer(base).Detail(domain.Product{ID: 1, Description: "Uma caneca"}, nil)
	assert.Equal(t, "Uma caneca", d.Description)
	assert.Equal(t, int64(1), d.ID)
}

func TestRenderer_Cart(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: 3, Price: 10}, Quantity: 2},
		{Product: domain.Product{ID: 7, Price: 5.5}, Quantity: 1},
	}

	c := NewRenderer(base).Cart(lines, 3, decimal.RequireFromString("25.5"))
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "20.00 €", c.Lines[0].Subtotal)
	assert.True(t, c.Lines[0].Product.InCart)
	assert.Equal(t, 3, c.ItemCount)
	assert.Equal(t, 25.5, c.Total)
	assert.Equal(t, "25.50 €", c.TotalFmt)
}
