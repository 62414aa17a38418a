package provider

import "sync"

// Entry is a registered provider plus the checks applied to its output.
type Entry struct {
	Provider Provider

	// RejectUntranslated treats output equal to the input (ignoring case) as a failure.
	RejectUntranslated bool
}

// EntryOption customises a registry entry.
type EntryOption func(*Entry)

// RejectUntranslated marks the entry's output as failed when it case-insensitively
// equals the input text.
func RejectUntranslated() EntryOption {
	return func(e *Entry) { e.RejectUntranslated = true }
}

// Registry holds providers in the order they are attempted.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends p to the end of the fallback chain.
func (r *Registry) Register(p Provider, opts ...EntryOption) {
	e := Entry{Provider: p}
	for _, opt := range opts {
		opt(&e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a snapshot of the chain in attempt order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Status describes a provider for health reporting.
type Status struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Statuses reports each provider's availability in attempt order.
func (r *Registry) Statuses() []Status {
	entries := r.Entries()
	out := make([]Status, 0, len(entries))
	for _, e := range entries {
		out = append(out, Status{Name: e.Provider.Name(), Available: e.Provider.Available()})
	}
	return out
}
