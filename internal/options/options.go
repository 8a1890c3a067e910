// Package options normalizes the usage and flavor a customer picks for a
// line and checks them against the product's allowed option lists.
package options

import (
	"errors"
	"slices"
)

const (
	// Grill is the only usage for which a flavor may be chosen.
	Grill = "焼肉"
	// NoFlavor is forced onto every non-grill usage.
	NoFlavor = "なし"
)

var (
	ErrUsageRequired    = errors.New("selected_usage is required for this product")
	ErrUsageNotAllowed  = errors.New("selected_usage is not offered for this product")
	ErrFlavorRequired   = errors.New("selected_flavor is required for grill usage")
	ErrFlavorNotAllowed = errors.New("selected_flavor is not offered for this product")
)

// Selection is a usage/flavor pair.
type Selection struct {
	Usage  string
	Flavor string
}

// Cascade applies the usage/flavor rule: a grill usage keeps the chosen
// flavor, any other usage forces NoFlavor, and no usage means no flavor.
func Cascade(s Selection) Selection {
	switch s.Usage {
	case "":
		return Selection{}
	case Grill:
		return s
	default:
		return Selection{Usage: s.Usage, Flavor: NoFlavor}
	}
}

// Allowed lists the option names a product offers, in display order.
type Allowed struct {
	Usages  []string
	Flavors []string
}

// Resolve cascades s and validates the result against a. The returned
// selection is what gets stored.
func Resolve(a Allowed, s Selection) (Selection, error) {
	s = Cascade(s)

	if s.Usage == "" {
		if len(a.Usages) > 0 {
			return Selection{}, ErrUsageRequired
		}
		return s, nil
	}
	if !slices.Contains(a.Usages, s.Usage) {
		return Selection{}, ErrUsageNotAllowed
	}

	if s.Usage != Grill {
		return s, nil
	}
	if s.Flavor == "" {
		if len(a.Flavors) > 0 {
			return Selection{}, ErrFlavorRequired
		}
		return s, nil
	}
	if !slices.Contains(a.Flavors, s.Flavor) {
		return Selection{}, ErrFlavorNotAllowed
	}
	return s, nil
}

// IsValidation reports whether err came from Resolve's checks.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUsageRequired) ||
		errors.Is(err, ErrUsageNotAllowed) ||
		errors.Is(err, ErrFlavorRequired) ||
		errors.Is(err, ErrFlavorNotAllowed)
}
