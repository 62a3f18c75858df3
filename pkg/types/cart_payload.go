package types

// LinePayload is the JSON projection of one cart line. Total is a float at
// the serialization boundary only; internal arithmetic stays decimal.
type LinePayload struct {
	Description string  `json:"description"`
	Options     Options `json:"options"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

// CartPayload is the JSON projection of a cart or order, consumed by the
// presentation layer.
type CartPayload struct {
	Count           int             `json:"count"`
	Lines           []LinePayload   `json:"lines"`
	ShippingOptions ShippingOptions `json:"shipping_options,omitempty"`
	Subtotal        *float64        `json:"subtotal,omitempty"`
	Total           *float64        `json:"total,omitempty"`
	HTMLSnippet     string          `json:"html_snippet,omitempty"`
}
