package cart

import (
	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// Line is one item+quantity+options entry within a cart. The item reference
// is resolved lazily by the owning cart; a Line whose item could not be
// resolved prices at zero and reports no errors of its own.
type Line struct {
	Ref      catalogue.ItemRef
	Quantity int
	Options  types.Options

	item catalogue.Item
}

// NewLine builds a line with its resolved item attached. item may be nil when
// the referenced item no longer exists.
func NewLine(ref catalogue.ItemRef, quantity int, options types.Options, item catalogue.Item) Line {
	if options == nil {
		options = types.Options{}
	}
	return Line{Ref: ref, Quantity: quantity, Options: options, item: item}
}

// Item returns the resolved item, or nil when it is absent.
func (l Line) Item() catalogue.Item {
	return l.item
}

// Key returns the canonical line identity.
func (l Line) Key() LineKey {
	return KeyOf(l.Ref, l.Options)
}

// Total is the line price: item.LineTotal for the quantity, zero when the
// item is absent. Decimal throughout; no float arithmetic.
func (l Line) Total() decimal.Decimal {
	if l.item == nil {
		return decimal.Zero
	}
	return l.item.LineTotal(l.Quantity, l.Options)
}

// Description delegates to the item, empty when absent.
func (l Line) Description() string {
	if l.item == nil {
		return ""
	}
	return l.item.Description()
}

// Errors validates the line through its item. An absent item is not a
// line-level error; cart-level logic decides whether to surface it.
func (l Line) Errors() []string {
	if l.item == nil {
		return nil
	}
	return l.item.CartErrors(l.Quantity, l.Options)
}

// Serialize projects the line for the presentation layer. The decimal total
// becomes a float here and only here.
func (l Line) Serialize() types.LinePayload {
	return types.LinePayload{
		Description: l.Description(),
		Options:     l.Options.Clone(),
		Quantity:    l.Quantity,
		Total:       l.Total().InexactFloat64(),
	}
}
