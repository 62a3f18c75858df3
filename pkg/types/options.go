package types

import (
	"encoding/json"
	"sort"
)

// Options holds the chosen purchase options for one cart line, keyed by
// option name. Values are always strings because that is what arrives from
// forms and JSON payloads.
type Options map[string]string

// Canonical returns the sorted-key JSON serialization of the options map.
// Two option maps are equal iff their canonical forms are equal, so this is
// the string used for line identity and for the persisted uniqueness
// constraint.
func (o Options) Canonical() string {
	if len(o) == 0 {
		return "{}"
	}
	// encoding/json sorts map keys, but building the document by hand keeps
	// the identity format independent of encoder internals.
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(o[k])
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return string(buf)
}

// Clone returns an independent copy so callers can never share a mutable map.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// OptionsSchema maps an option name to its ordered list of allowed values.
// The first value of each list is the default.
type OptionsSchema map[string][]string

// ShippingOptions carries the shipping selection payload attached to a cart.
// The engine stores and copies it verbatim; interpretation belongs to the
// shipping module.
type ShippingOptions map[string]string

// Clone returns an independent copy of the shipping options.
func (s ShippingOptions) Clone() ShippingOptions {
	if s == nil {
		return nil
	}
	out := make(ShippingOptions, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
