package shipping

import "fmt"

// ConfigError marks a broken provider installation. It is raised at
// registration time, never during a quote request.
type ConfigError struct {
	Code   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("shipping provider config: %s", e.Reason)
	}
	return fmt.Sprintf("shipping provider %q config: %s", e.Code, e.Reason)
}

// Registry holds the enabled providers in registration order. It is
// populated once at startup and read-only afterwards, so quote requests
// need no locking.
type Registry struct {
	providers []Provider
	index     map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]Provider{}}
}

// Register adds a provider. A nil provider, empty code or duplicate code
// is a fatal misconfiguration.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return &ConfigError{Reason: "nil provider"}
	}
	code := p.Code()
	if code == "" {
		return &ConfigError{Reason: "empty provider code"}
	}
	if _, dup := r.Lookup(code); dup {
		return &ConfigError{Code: code, Reason: "duplicate registration"}
	}

	r.providers = append(r.providers, p)
	r.index[code] = p
	return nil
}

// List returns the providers in registration order.
func (r *Registry) List() []Provider {
	return r.providers
}

func (r *Registry) Lookup(code string) (Provider, bool) {
	p, ok := r.index[code]
	return p, ok
}
