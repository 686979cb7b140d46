package valueobjects

import "fmt"

type OrderStatus string

const (
	OrderStatusCreated  OrderStatus = "created"
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusDeclined OrderStatus = "declined"
	OrderStatusCanceled OrderStatus = "canceled"
)

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:  {OrderStatusAccepted, OrderStatusDeclined, OrderStatusCanceled},
	OrderStatusAccepted: {},
	OrderStatusDeclined: {},
	OrderStatusCanceled: {},
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s.IsValid() && s != OrderStatusCreated
}

// IsIdempotentReentry reports whether repeating a move into s is a no-op
// success rather than a conflict.
func (s OrderStatus) IsIdempotentReentry() bool {
	return s == OrderStatusDeclined || s == OrderStatusCanceled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func NewOrderStatus(s string) (OrderStatus, error) {
	os := OrderStatus(s)
	if !os.IsValid() {
		return "", fmt.Errorf("invalid order status: %s", s)
	}
	return os, nil
}

// DiscountType selects how an order discount value is interpreted.
type DiscountType string

const (
	DiscountNone    DiscountType = "none"
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountNone, DiscountPercent, DiscountAmount:
		return true
	}
	return false
}

func NewDiscountType(s string) (DiscountType, error) {
	if s == "" {
		return DiscountNone, nil
	}
	d := DiscountType(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid discount type: %s", s)
	}
	return d, nil
}
