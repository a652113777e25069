package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultDeliveryType = "standard"
	DefaultPaymentType  = "online"
)

type Order struct {
	ID      int64
	OwnerID uuid.UUID
	Items   []OrderItem

	FullName string
	Email    string
	Phone    *string

	DeliveryType string
	PaymentType  string
	City         string
	Address      string

	TotalCost    Money
	Status       OrderStatus
	PaymentID    *string
	PaymentError *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a snapshot of a product line at order creation time.
type OrderItem struct {
	ProductID int64
	Quantity  int
	Price     Money

	// Product is the current catalog record, loaded for display only.
	Product *Product
}

// OrderLine is a requested product quantity.
type OrderLine struct {
	ProductID int64
	Count     int
}

// MergeOrderLines validates lines and merges duplicates, keeping first-seen order.
func MergeOrderLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, NewValidationError("no items in order")
	}

	merged := make([]OrderLine, 0, len(lines))
	index := make(map[int64]int, len(lines))

	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, NewValidationError("Missing key in item data: id")
		}
		if line.Count <= 0 || line.Count > MaxQuantity {
			return nil, NewValidationError("Invalid count for product")
		}

		if i, ok := index[line.ProductID]; ok {
			if merged[i].Count > MaxQuantity-line.Count {
				return nil, NewValidationError("Invalid count for product")
			}
			merged[i].Count += line.Count
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged, nil
}

// OrderUpdate carries an explicit status change plus optional delivery details.
type OrderUpdate struct {
	Status       string
	DeliveryType *string
	PaymentType  *string
	City         *string
	Address      *string
}

// ResolveStatus applies the default transition when no status is supplied.
func (u OrderUpdate) ResolveStatus() (OrderStatus, error) {
	if u.Status == "" {
		return OrderStatusAccepted, nil
	}

	status, err := ToOrderStatus(u.Status)
	if err != nil {
		return "", NewFieldError("status", "Invalid order status: "+u.Status)
	}
	return status, nil
}
