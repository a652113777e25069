package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusPaid      OrderStatus = "paid"
)

var validOrderStatuses = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusAccepted:  "Accepted",
	OrderStatusShipped:   "Shipped",
	OrderStatusDelivered: "Delivered",
	OrderStatusCanceled:  "Canceled",
	OrderStatusPaid:      "Paid",
}

var ErrInvalidOrderStatus = errors.New("invalid order status")

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", ErrInvalidOrderStatus
}

// Display is the human-readable label shown in order history.
func (s OrderStatus) Display() string {
	if label, ok := validOrderStatuses[s]; ok {
		return label
	}
	return string(s)
}

// OpenOrderStatuses are the statuses of orders still awaiting fulfilment.
func OpenOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusAccepted}
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}
