// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling the conversion between domain entities and database rows.
package orderrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Line items live in a jsonb column: they are only ever read back as a whole
// with their order and never queried individually.
type OrderDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID        string     `gorm:"index"`
	CustomerID      string     `gorm:"index"`
	Items           LineItems  `gorm:"type:jsonb"`
	Total           string     `gorm:"type:numeric(12,2)"`
	DeliveryAddress string
	Status          string     `gorm:"index"`
	AssignedChef    string
	AssignedCourier string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PickupTime      *time.Time
	ReadyAt         *time.Time
	DeliveredAt     *time.Time

	DeliveryNotes      string
	CancellationReason string
	FailureReason      string
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// LineItemDTO is one element of the jsonb items column.
type LineItemDTO struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// LineItems marshals the item list to and from the jsonb column.
type LineItems []LineItemDTO

func (l LineItems) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *LineItems) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	domainItems := aggregate.Items()
	items := make(LineItems, 0, len(domainItems))
	for _, item := range domainItems {
		items = append(items, LineItemDTO{
			Name:      item.Name(),
			UnitPrice: item.UnitPrice().String(),
			Quantity:  item.Quantity(),
		})
	}

	return OrderDTO{
		ID:              aggregate.ID().Bytes(),
		TenantID:        aggregate.TenantID(),
		CustomerID:      aggregate.CustomerID(),
		Items:           items,
		Total:           aggregate.Total().String(),
		DeliveryAddress: aggregate.DeliveryAddress(),
		Status:          aggregate.Status().String(),
		AssignedChef:    aggregate.AssignedChef(),
		AssignedCourier: aggregate.AssignedCourier(),
		CreatedAt:       aggregate.CreatedAt(),
		UpdatedAt:       aggregate.UpdatedAt(),
		PickupTime:      aggregate.PickupTime(),
		ReadyAt:         aggregate.ReadyAt(),
		DeliveredAt:     aggregate.DeliveredAt(),

		DeliveryNotes:      aggregate.DeliveryNotes(),
		CancellationReason: aggregate.CancellationReason(),
		FailureReason:      aggregate.FailureReason(),
	}
}

// toDomain converts a database DTO back to an order aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		price, priceErr := kernel.NewMoneyFromString(itemDTO.UnitPrice)
		if priceErr != nil {
			return nil, priceErr
		}
		item, itemErr := order.NewLineItem(itemDTO.Name, price, itemDTO.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		ID:              id,
		TenantID:        dto.TenantID,
		CustomerID:      dto.CustomerID,
		Items:           items,
		DeliveryAddress: dto.DeliveryAddress,
		Status:          status,
		AssignedChef:    dto.AssignedChef,
		AssignedCourier: dto.AssignedCourier,
		CreatedAt:       dto.CreatedAt,
		UpdatedAt:       dto.UpdatedAt,
		PickupTime:      dto.PickupTime,
		ReadyAt:         dto.ReadyAt,
		DeliveredAt:     dto.DeliveredAt,

		DeliveryNotes:      dto.DeliveryNotes,
		CancellationReason: dto.CancellationReason,
		FailureReason:      dto.FailureReason,
	})
}
