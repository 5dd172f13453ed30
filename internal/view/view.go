// Package view shapes catalog and cart state into what the storefront
// renders: cards, detail pages, star ratings and formatted prices.
package view

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fjod/deisishop/internal/domain"
)

const maxStars = 5

// ImageURL resolves a product image. Absolute http(s) URLs are kept, anything
// else is treated as a path under base.
func ImageURL(base, image string) string {
	lower := strings.ToLower(image)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return image
	}
	if image == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(image, "/")
}

type Stars struct {
	Full  int  `json:"full"`
	Half  bool `json:"half"`
	Empty int  `json:"empty"`
}

// StarsFor splits a 0..5 rating into full, half and empty stars.
func StarsFor(rate float64) Stars {
	if math.IsNaN(rate) || rate < 0 {
		rate = 0
	}
	if rate > maxStars {
		rate = maxStars
	}
	full := int(math.Floor(rate))
	half := full < maxStars && math.Mod(rate, 1) >= 0.5
	empty := maxStars - full
	if half {
		empty--
	}
	return Stars{Full: full, Half: half, Empty: empty}
}

// String draws the stars, e.g. "★★★½☆".
func (s Stars) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("★", s.Full))
	if s.Half {
		b.WriteString("½")
	}
	b.WriteString(strings.Repeat("☆", s.Empty))
	return b.String()
}

func RatingSummary(r domain.Rating) string {
	return "(" + decimal.NewFromFloat(r.Rate).String() + ") · " + decimal.NewFromInt(int64(r.Count)).String()
}

// FormatPrice renders an amount with two decimals and the euro sign.
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " €"
}

type Rating struct {
	Rate    float64 `json:"rate"`
	Count   int     `json:"count"`
	Stars   Stars   `json:"stars"`
	Display string  `json:"display"`
	Summary string  `json:"summary"`
}

// Card is one product in a listing.
type Card struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	PriceFmt string  `json:"price_formatted"`
	Category string  `json:"category"`
	ImageURL string  `json:"image_url"`
	Rating   Rating  `json:"rating"`
	InCart   bool    `json:"in_cart"`
	Quantity int     `json:"quantity"`
}

// Detail is the product page.
type Detail struct {
	Card
	Description string `json:"description"`
}

type CartLine struct {
	Product  Card   `json:"product"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type Cart struct {
	Lines     []CartLine `json:"lines"`
	ItemCount int        `json:"item_count"`
	Total     float64    `json:"total"`
	TotalFmt  string     `json:"total_formatted"`
}

// CartState is the part of the cart a card needs to pick between its add and
// remove buttons.
type CartState interface {
	Quantity(productID int64) int
}

type Renderer struct {
	imageBase string
}

func NewRenderer(imageBase string) *Renderer {
	return &Renderer{imageBase: imageBase}
}

func (r *Renderer) Card(p domain.Product, cart CartState) Card {
	qty := 0
	if cart != nil {
		qty = cart.Quantity(p.ID)
	}
	stars := StarsFor(p.Rating.Rate)
	return Card{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price.Float64(),
		PriceFmt: FormatPrice(p.Price.Decimal()),
		Category: p.Category,
		ImageURL: ImageURL(r.imageBase, p.Image),
		Rating: Rating{
			Rate:    p.Rating.Rate,
			Count:   p.Rating.Count,
			Stars:   stars,
			Display: stars.String(),
			Summary: RatingSummary(p.Rating),
		},
		InCart:   qty > 0,
		Quantity: qty,
	}
}

func (r *Renderer) Cards(products []domain.Product, cart CartState) []Card {
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, r.Card(p, cart))
	}
	return cards
}

func (r *Renderer) Detail(p domain.Product, cart CartState) Detail {
	return Detail{Card: r.Card(p, cart), Description: p.Description}
}

func (r *Renderer) Cart(lines []domain.CartLine, itemCount int, total decimal.Decimal) Cart {
	out := Cart{
		Lines:     make([]CartLine, 0, len(lines)),
		ItemCount: itemCount,
		Total:     total.InexactFloat64(),
		TotalFmt:  FormatPrice(total),
	}
	for _, l := range lines {
		card := r.Card(l.Product, nil)
		card.InCart = true
		card.Quantity = l.Quantity
		out.Lines = append(out.Lines, CartLine{
			Product:  card,
			Quantity: l.Quantity,
			Subtotal: FormatPrice(l.Product.Price.Decimal().Mul(decimal.NewFromInt(int64(l.Quantity)))),
		})
	}
	return out
}
