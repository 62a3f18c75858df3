package cart

import (
	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// Normalize canonicalizes a raw option map against an item's schema. For each
// schema key it keeps the raw value when it is one of the allowed values and
// falls back to the schema's first value otherwise; keys outside the schema
// are dropped. The function is pure and total: invalid input silently
// normalizes rather than failing, and normalizing twice yields the same map.
func Normalize(schema types.OptionsSchema, raw map[string]string) types.Options {
	out := types.Options{}
	for key, allowed := range schema {
		if len(allowed) == 0 {
			continue
		}
		value := allowed[0]
		if rawValue, ok := raw[key]; ok {
			for _, candidate := range allowed {
				if candidate == rawValue {
					value = rawValue
					break
				}
			}
		}
		out[key] = value
	}
	return out
}

// LineKey is the canonical identity of a line within one cart: at most one
// line exists per key, enforced by upsert-on-write and, for persisted orders,
// by a uniqueness constraint.
type LineKey struct {
	ItemType string
	ItemID   string
	Options  string
}

// KeyOf builds the line key for an item reference and its normalized options.
func KeyOf(ref catalogue.ItemRef, options types.Options) LineKey {
	return LineKey{
		ItemType: ref.Type,
		ItemID:   ref.ID,
		Options:  options.Canonical(),
	}
}
