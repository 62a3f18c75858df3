package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/internal/catalogue"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/types"
)

type stubItem struct {
	name   string
	price  decimal.Decimal
	schema types.OptionsSchema
	errs   []string
}

func (s *stubItem) LineTotal(quantity int, _ types.Options) decimal.Decimal {
	return s.price.Mul(decimal.NewFromInt(int64(quantity)))
}

func (s *stubItem) CartErrors(int, types.Options) []string {
	return s.errs
}

func (s *stubItem) Description() string {
	return s.name
}

func (s *stubItem) OptionsSchema() types.OptionsSchema {
	return s.schema
}

type stubShipping struct {
	cost decimal.Decimal
	errs []string
}

func (s stubShipping) Calculate(context.Context, Cart) decimal.Decimal {
	return s.cost
}

func (s stubShipping) Errors(context.Context, Cart) []string {
	return s.errs
}

type stubDiscounts struct {
	discounts []Discount
	invalid   string
}

func (s stubDiscounts) CalculateDiscounts(context.Context, Cart, []string, bool) ([]Discount, string, error) {
	return s.discounts, s.invalid, nil
}

func newTestRegistry(items map[string]*stubItem) *catalogue.Registry {
	registry := catalogue.NewRegistry()
	registry.Register("catalogue.product", catalogue.ResolverFunc(func(_ context.Context, id string) (catalogue.Item, error) {
		item, ok := items[id]
		if !ok {
			return nil, catalogue.ErrItemNotFound
		}
		return item, nil
	}))
	return registry
}

func mustPrice(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad price %q: %v", s, err)
	}
	return d
}

func productRef(id string) catalogue.ItemRef {
	return catalogue.ItemRef{Type: "catalogue.product", ID: id}
}

func TestAddCreatesLine(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	if err := Add(ctx, c, productRef("1"), 2, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines, err := c.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("expected one line of quantity 2, got %+v", lines)
	}
}

func TestAddMergesByIdentity(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {
		name:   "Widget",
		price:  mustPrice(t, "10.00"),
		schema: types.OptionsSchema{"size": {"S", "M"}},
	}}
	c := NewSessionCart("tok", newTestRegistry(items))

	if err := Add(ctx, c, productRef("1"), 2, map[string]string{"size": "M"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	// Same normalized identity despite the extra unknown key.
	if err := Add(ctx, c, productRef("1"), 3, map[string]string{"size": "M", "noise": "x"}); err != nil {
		t.Fatalf("second add: %v", err)
	}

	lines, _ := c.Lines(ctx)
	if len(lines) != 1 {
		t.Fatalf("expected merged single line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", lines[0].Quantity)
	}
}

func TestDistinctOptionsMakeDistinctLines(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {
		name:   "Widget",
		price:  mustPrice(t, "10.00"),
		schema: types.OptionsSchema{"size": {"S", "M"}},
	}}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 1, map[string]string{"size": "S"})
	_ = Add(ctx, c, productRef("1"), 1, map[string]string{"size": "M"})

	lines, _ := c.Lines(ctx)
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
}

func TestAddRejectsZeroDelta(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	err := Add(ctx, c, productRef("1"), 0, nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetAbsoluteQuantity(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 5, nil)
	if _, err := c.UpdateQuantity(ctx, productRef("1"), 2, false, nil); err != nil {
		t.Fatalf("set: %v", err)
	}

	lines, _ := c.Lines(ctx)
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity replaced with 2, got %d", lines[0].Quantity)
	}
}

func TestZeroQuantityDeletesLine(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 3, nil)
	deleted, err := c.UpdateQuantity(ctx, productRef("1"), 0, false, nil)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted=true")
	}

	count, _ := Count(ctx, c)
	if count != 0 {
		t.Fatalf("expected empty cart, got count %d", count)
	}
}

func TestNegativeDeltaDrainsLine(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 2, nil)
	deleted, err := c.UpdateQuantity(ctx, productRef("1"), -5, true, nil)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if !deleted {
		t.Fatal("expected line removed when delta drains quantity below zero")
	}
}

func TestRemoveMissingLineIsNoop(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	if err := Remove(ctx, c, productRef("1"), nil); err != nil {
		t.Fatalf("expected no-op removal, got %v", err)
	}
}

func TestRemoveToleratesUnresolvableItem(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 1, nil)
	delete(items, "1")

	deleted, err := c.UpdateQuantity(ctx, productRef("1"), 0, false, nil)
	if err != nil {
		t.Fatalf("removal of vanished item: %v", err)
	}
	if !deleted {
		t.Fatal("expected stored line removed")
	}
}

func TestAddUnknownItemRejected(t *testing.T) {
	ctx := context.Background()
	c := NewSessionCart("tok", newTestRegistry(nil))

	err := Add(ctx, c, productRef("missing"), 1, nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestInvalidLineRejectedLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 2, nil)
	items["1"].errs = []string{"insufficient stock for Widget"}

	err := Add(ctx, c, productRef("1"), 10, nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
	details, ok := appErr.Details().([]string)
	if !ok || len(details) != 1 || details[0] != "insufficient stock for Widget" {
		t.Fatalf("expected rejection to carry messages, got %v", appErr.Details())
	}

	// Clear the stub error so the stored state is observable.
	items["1"].errs = nil
	lines, _ := c.Lines(ctx)
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("expected state unchanged after rejection, got %+v", lines)
	}
}

func TestLinesSkipUnresolvableItems(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{
		"1": {name: "Widget", price: mustPrice(t, "10.00")},
		"2": {name: "Gadget", price: mustPrice(t, "5.00")},
	}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 1, nil)
	_ = Add(ctx, c, productRef("2"), 1, nil)
	delete(items, "1")

	lines, err := c.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Description() != "Gadget" {
		t.Fatalf("expected vanished item skipped, got %+v", lines)
	}
	if len(c.lines) != 2 {
		t.Fatalf("expected stored lines untouched, got %d", len(c.lines))
	}
}

func TestDecimalPricing(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "19.99")}}
	c := NewSessionCart("tok", newTestRegistry(items))

	_ = Add(ctx, c, productRef("1"), 3, nil)

	subtotal, err := Subtotal(ctx, c)
	if err != nil {
		t.Fatalf("subtotal: %v", err)
	}
	if subtotal.String() != "59.97" {
		t.Fatalf("expected 59.97, got %s", subtotal.String())
	}
}

func TestTotalCombinesShippingAndDiscount(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "20.00")}}
	c := NewSessionCart("tok", newTestRegistry(items),
		WithShipping(stubShipping{cost: mustPrice(t, "5.00")}),
		WithDiscounts(stubDiscounts{discounts: []Discount{{Code: "TEN", Amount: mustPrice(t, "10.00")}}}),
	)
	c.SetVoucherCodes([]string{"TEN"})

	_ = Add(ctx, c, productRef("1"), 2, nil)

	total, err := Total(ctx, c)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.String() != "35" {
		t.Fatalf("expected 40 + 5 - 10 = 35, got %s", total.String())
	}
}

func TestEmptyCartIsInvalid(t *testing.T) {
	ctx := context.Background()
	c := NewSessionCart("tok", newTestRegistry(nil))

	if IsValid(ctx, c) {
		t.Fatal("empty cart must not be valid")
	}
}

func TestCartWithErrorsIsInvalid(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))
	_ = Add(ctx, c, productRef("1"), 1, nil)

	if !IsValid(ctx, c) {
		t.Fatal("expected valid cart")
	}

	items["1"].errs = []string{"Widget is no longer available"}
	if IsValid(ctx, c) {
		t.Fatal("cart with line errors must not be valid")
	}
}

func TestShippingErrorsInvalidateCart(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items),
		WithShipping(stubShipping{errs: []string{"unsupported region"}}))
	_ = Add(ctx, c, productRef("1"), 1, nil)

	errs, err := Errors(ctx, c)
	if err != nil {
		t.Fatalf("errors: %v", err)
	}
	if len(errs) != 1 || errs[0] != "unsupported region" {
		t.Fatalf("expected shipping error surfaced, got %v", errs)
	}
	if IsValid(ctx, c) {
		t.Fatal("cart with shipping errors must not be valid")
	}
}

func TestSerializePayload(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "19.99")}}
	c := NewSessionCart("tok", newTestRegistry(items),
		WithShipping(stubShipping{cost: mustPrice(t, "5.00")}))
	_ = Add(ctx, c, productRef("1"), 3, nil)
	_ = c.SetShippingOptions(ctx, types.ShippingOptions{"region": "domestic"})

	payload, err := Serialize(ctx, c, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if payload.Count != 3 {
		t.Fatalf("expected count 3, got %d", payload.Count)
	}
	if len(payload.Lines) != 1 || payload.Lines[0].Description != "Widget" {
		t.Fatalf("unexpected lines: %+v", payload.Lines)
	}
	if payload.Subtotal == nil || *payload.Subtotal != 59.97 {
		t.Fatalf("unexpected subtotal: %v", payload.Subtotal)
	}
	if payload.Total == nil || *payload.Total != 64.97 {
		t.Fatalf("unexpected total: %v", payload.Total)
	}
	if payload.ShippingOptions["region"] != "domestic" {
		t.Fatalf("expected shipping options in payload, got %v", payload.ShippingOptions)
	}
}

func TestClearResetsAllState(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {name: "Widget", price: mustPrice(t, "10.00")}}
	c := NewSessionCart("tok", newTestRegistry(items))
	_ = Add(ctx, c, productRef("1"), 2, nil)
	_ = c.SetShippingOptions(ctx, types.ShippingOptions{"region": "domestic"})
	c.SetVoucherCodes([]string{"TEN"})

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	count, _ := Count(ctx, c)
	if count != 0 {
		t.Fatalf("expected empty cart, got %d", count)
	}
	opts, _ := c.ShippingOptions(ctx)
	if len(opts) != 0 {
		t.Fatalf("expected shipping options cleared, got %v", opts)
	}
	codes, _ := c.VoucherCodes(ctx)
	if len(codes) != 0 {
		t.Fatalf("expected voucher codes cleared, got %v", codes)
	}
}

func TestTwoProductTotals(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{
		"a": {name: "Alpha", price: mustPrice(t, "10.00")},
		"b": {name: "Beta", price: mustPrice(t, "5.50")},
	}
	c := NewSessionCart("tok", newTestRegistry(items))

	if err := Add(ctx, c, productRef("a"), 2, nil); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := Add(ctx, c, productRef("b"), 1, nil); err != nil {
		t.Fatalf("add b: %v", err)
	}

	count, err := Count(ctx, c)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
	subtotal, err := Subtotal(ctx, c)
	if err != nil {
		t.Fatalf("subtotal: %v", err)
	}
	if !subtotal.Equal(mustPrice(t, "25.50")) {
		t.Fatalf("expected subtotal 25.50, got %s", subtotal)
	}

	if err := Remove(ctx, c, productRef("a"), nil); err != nil {
		t.Fatalf("remove a: %v", err)
	}
	lines, err := c.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Ref.ID != "b" {
		t.Fatalf("expected only product b left, got %+v", lines)
	}
}

func TestRemoveVanishedItemPurgesOptionedLines(t *testing.T) {
	ctx := context.Background()
	items := map[string]*stubItem{"1": {
		name:   "Widget",
		price:  mustPrice(t, "10.00"),
		schema: types.OptionsSchema{"size": {"S", "M", "L"}},
	}}
	c := NewSessionCart("tok", newTestRegistry(items))

	if err := Add(ctx, c, productRef("1"), 1, map[string]string{"size": "L"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	delete(items, "1")

	// Without the item's schema the stored "size":"L" key cannot be rebuilt;
	// removal must still purge the line rather than strand it.
	deleted, err := c.UpdateQuantity(ctx, productRef("1"), 0, false, nil)
	if err != nil {
		t.Fatalf("removal of vanished item: %v", err)
	}
	if !deleted {
		t.Fatal("expected stored line removed")
	}
	if len(c.lines) != 0 {
		t.Fatalf("expected stored lines purged, got %d", len(c.lines))
	}
}
