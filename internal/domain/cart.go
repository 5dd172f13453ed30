package domain

// CartLine is one product in the cart. Quantity is always >= 1 while the
// line exists.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
