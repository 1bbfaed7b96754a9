package registry

import "stockdash/internal/model"

// Registry is the immutable symbol catalog: app symbol → display name and
// upstream ticker. Built once at startup, pure lookups after that.
type Registry struct {
	entries map[string]model.Security
	order   []string
}

// New builds a registry from the configured catalog. Later duplicates of a
// symbol replace earlier ones.
func New(securities []model.Security) *Registry {
	r := &Registry{entries: make(map[string]model.Security, len(securities))}
	for _, s := range securities {
		if _, seen := r.entries[s.Symbol]; !seen {
			r.order = append(r.order, s.Symbol)
		}
		r.entries[s.Symbol] = s
	}
	return r
}

// Resolve maps an app symbol to its upstream ticker.
func (r *Registry) Resolve(symbol string) (string, bool) {
	s, ok := r.entries[symbol]
	if !ok {
		return "", false
	}
	return s.UpstreamID, true
}

// DisplayName returns the catalog name for a symbol, falling back to the
// raw symbol when unmapped. Never fails.
func (r *Registry) DisplayName(symbol string) string {
	if s, ok := r.entries[symbol]; ok {
		return s.Name
	}
	return symbol
}

// Exists reports whether the symbol is in the catalog.
func (r *Registry) Exists(symbol string) bool {
	_, ok := r.entries[symbol]
	return ok
}

// Securities returns the catalog in load order.
func (r *Registry) Securities() []model.Security {
	out := make([]model.Security, 0, len(r.order))
	for _, sym := range r.order {
		out = append(out, r.entries[sym])
	}
	return out
}
