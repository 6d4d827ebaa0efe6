package order

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var errLineItemNotConstructed = errs.NewValueIsRequiredError(
	"LineItem must be created via NewLineItem")

// LineItem is a value object describing one priced position of an order.
type LineItem struct {
	name      string
	unitPrice kernel.Money
	quantity  int

	guard guard.ConstructorGuard
}

// NewLineItem creates a validated line item. The name must be non-empty,
// the unit price positive and the quantity at least 1.
func NewLineItem(name string, unitPrice kernel.Money, quantity int) (LineItem, error) {
	if name == "" {
		return LineItem{}, errs.NewValueIsRequiredError("name")
	}
	if !unitPrice.IsPositive() {
		return LineItem{}, errs.NewValueIsInvalidError("unitPrice")
	}
	if quantity < 1 {
		return LineItem{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, maxLineItemQuantity)
	}
	if quantity > maxLineItemQuantity {
		return LineItem{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, maxLineItemQuantity)
	}

	return LineItem{
		name:      name,
		unitPrice: unitPrice,
		quantity:  quantity,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// maxLineItemQuantity caps a single position to keep totals sane.
const maxLineItemQuantity = 1000

func (li LineItem) Name() string {
	return li.name
}

func (li LineItem) UnitPrice() kernel.Money {
	return li.unitPrice
}

func (li LineItem) Quantity() int {
	return li.quantity
}

// Subtotal is unit price multiplied by quantity.
func (li LineItem) Subtotal() kernel.Money {
	return li.unitPrice.MulInt(li.quantity)
}

func (li LineItem) Validate() error {
	return li.guard.Validate(errLineItemNotConstructed)
}
