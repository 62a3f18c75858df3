package catalogue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shoptools/shoptools-go/pkg/types"
)

// ErrItemNotFound is returned by resolvers when the referenced item no longer
// exists. Cart listing treats it as "skip the line", not as a failure.
var ErrItemNotFound = errors.New("catalogue: item not found")

// IsNotFound reports whether err marks a missing item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// Item is anything that can be added to a cart. Implementations price
// themselves per line, validate lines against business rules (stock,
// availability) and describe themselves for order snapshots.
type Item interface {
	// LineTotal returns the total price for the given quantity and options.
	LineTotal(quantity int, options types.Options) decimal.Decimal

	// CartErrors returns validation messages for a candidate line, empty when
	// the line is acceptable.
	CartErrors(quantity int, options types.Options) []string

	// Description identifies the item in carts and order snapshots.
	Description() string

	// OptionsSchema maps option names to their ordered allowed values; the
	// first value of each list is the default. Most items have none.
	OptionsSchema() types.OptionsSchema
}

// ItemRef identifies an item by type tag and id without owning it.
type ItemRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}

// Resolver loads items of one type by id.
type Resolver interface {
	Resolve(ctx context.Context, id string) (Item, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, id string) (Item, error)

func (fn ResolverFunc) Resolve(ctx context.Context, id string) (Item, error) {
	return fn(ctx, id)
}

// Registry maps item type tags to resolvers. Registration happens at
// startup; resolution happens on every cart read.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: map[string]Resolver{}}
}

// Register binds a resolver to a type tag, replacing any previous binding.
func (r *Registry) Register(typeTag string, resolver Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[typeTag] = resolver
}

// Resolve loads the item behind a reference. Unknown type tags and missing
// items both yield ErrItemNotFound so callers need only one absence check.
func (r *Registry) Resolve(ctx context.Context, ref ItemRef) (Item, error) {
	r.mu.RLock()
	resolver, ok := r.resolvers[ref.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrItemNotFound, ref.Type)
	}
	return resolver.Resolve(ctx, ref.ID)
}
