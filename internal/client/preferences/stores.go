package preferences

import (
	"fmt"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
)

// Stores holds exactly one store per tier. It is built once and never
// changes.
type Stores struct {
	secured     kvstore.Store
	standard    kvstore.Store
	development kvstore.Store
}

func NewStores(secured, standard, development kvstore.Store) *Stores {
	return &Stores{secured: secured, standard: standard, development: development}
}

// For returns the store of tier.
func (s *Stores) For(tier Tier) (kvstore.Store, error) {
	switch tier {
	case Secured:
		return s.secured, nil
	case Standard:
		return s.standard, nil
	case Development:
		return s.development, nil
	}
	return nil, fmt.Errorf("%q: %w", string(tier), ErrUnknownTier)
}

// SecuredDegraded reports whether the secured tier is served by its plain
// fallback because no key could be set up.
func (s *Stores) SecuredDegraded() bool {
	d, ok := s.secured.(interface{ Degraded() bool })
	return ok && d.Degraded()
}
