// Package preferences routes typed preference operations to the store of a
// sensitivity tier. The tiers are fixed: secured, standard and development.
package preferences

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is the sensitivity class a caller picks for a preference.
type Tier string

const (
	Secured     Tier = "secured"
	Standard    Tier = "standard"
	Development Tier = "development"
)

// ErrUnknownTier is returned for a Tier outside the fixed set.
var ErrUnknownTier = errors.New("unknown preference tier")

// Tiers lists every tier.
func Tiers() []Tier {
	return []Tier{Secured, Standard, Development}
}

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Secured, Standard, Development:
		return t, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownTier)
}

// Store names of the tiers.
const (
	SecuredName         = "secured_preferences"
	SecuredFallbackName = "secured_preferences_fallback"
	StandardName        = "standard_preferences"
	DevelopmentName     = "development_preferences"
)
