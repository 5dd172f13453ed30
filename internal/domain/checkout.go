package domain

import "encoding/json"

// CheckoutRequest is the body posted to the remote buy endpoint. A product
// with quantity N appears N times in Products.
type CheckoutRequest struct {
	Products []int64 `json:"products"`
	Student  bool    `json:"student"`
	Coupon   string  `json:"coupon"`
	Name     string  `json:"name"`
}

// CheckoutResult is the opaque payload echoed by the remote service on success.
type CheckoutResult json.RawMessage

func (r CheckoutResult) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *CheckoutResult) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}
