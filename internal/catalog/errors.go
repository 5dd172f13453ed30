package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrNotAList        = errors.New("invalid response: not a list")
	ErrInvalidResponse = errors.New("invalid response")
)

// StatusError is a non-2xx answer from the remote shop API. Message is what a
// shopper should see.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// ParseID converts a route segment into a product id. It never touches the
// network; a bad segment yields an error wrapping ErrInvalidID.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w in route: %s", ErrInvalidID, raw)
	}
	return id, nil
}

// fetchMessage picks a readable message out of an error body, falling back to
// the status line.
func fetchMessage(status string, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return status
}

// checkoutMessage keeps the server's text verbatim so coupon and stock
// rejections reach the shopper unchanged.
func checkoutMessage(status string, body []byte) string {
	if strings.TrimSpace(string(body)) == "" {
		return status
	}
	return string(body)
}

// countsAsFailure decides what trips the circuit breaker: transport errors and
// 5xx answers. A rejected coupon is the API working as intended.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return !errors.Is(err, ErrNotAList) && !errors.Is(err, ErrInvalidResponse)
}
