package index

import (
	"fmt"
	"strings"
)

// New returns the Client for cfg.Backend.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendOpenSearch:
		client, err := NewOpenSearchClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case BackendTypesense:
		return NewTypesenseClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
