// Package quantity resolves the raw amount a customer enters for a product
// into a canonical integer quantity plus the breakdown it was built from.
//
// Canonical quantities are grams for Weight and PieceBreakdown, and a count
// for Pack and PieceCount. Everything here is pure and safe for concurrent use.
package quantity

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Method is how a customer measures a line item.
type Method string

const (
	Weight         Method = "WEIGHT"
	PieceBreakdown Method = "PIECE"
	Pack           Method = "PACK"
	PieceCount     Method = "PIECE_COUNT"
)

// ErrInvalidQuantity is returned for any input that cannot produce a
// positive integer canonical quantity.
var ErrInvalidQuantity = errors.New("invalid quantity")

// maxInput bounds every sub-value so products stay exact in int64.
const maxInput = 1_000_000

// Methods lists every known method in display order.
func Methods() []Method {
	return []Method{Weight, PieceBreakdown, Pack, PieceCount}
}

// ParseMethod converts a stored or submitted method name.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown method %q", ErrInvalidQuantity, s)
	}
	return m, nil
}

// Valid reports whether m is one of the four known methods.
func (m Method) Valid() bool {
	switch m {
	case Weight, PieceBreakdown, Pack, PieceCount:
		return true
	}
	return false
}

// Label is the staff-facing Japanese name of the method.
func (m Method) Label() string {
	switch m {
	case Weight:
		return "重量指定"
	case PieceBreakdown:
		return "枚数指定"
	case Pack:
		return "パック指定"
	case PieceCount:
		return "本数指定"
	}
	return string(m)
}

// Inputs carries the raw numbers submitted for a line. A zero field means the
// value was not supplied, except PackMultiplier where only nil does, so an
// explicit 0 is rejected rather than read as the default of 1. Fields are
// float64 so that fractional submissions are rejected instead of silently
// truncated.
type Inputs struct {
	Grams          float64  `json:"grams,omitempty"`
	GramsPerPiece  float64  `json:"grams_per_piece,omitempty"`
	PieceCount     float64  `json:"piece_count,omitempty"`
	PackCount      float64  `json:"pack_count,omitempty"`
	PackMultiplier *float64 `json:"pack_multiplier,omitempty"`
}

// Mult returns a PackMultiplier input of v.
func Mult(v float64) *float64 {
	return &v
}

// Breakdown is the structured, validated form of Inputs. Only the fields the
// method uses are non-zero; PackMultiplier is 1 when not applicable.
type Breakdown struct {
	Method         Method `json:"method"`
	Grams          int64  `json:"grams,omitempty"`
	GramsPerPiece  int64  `json:"grams_per_piece,omitempty"`
	PieceCount     int64  `json:"piece_count,omitempty"`
	PackCount      int64  `json:"pack_count,omitempty"`
	PackMultiplier int64  `json:"pack_multiplier"`
}

// Result is the output of Resolve.
type Result struct {
	Canonical int64     `json:"canonical_quantity"`
	Breakdown Breakdown `json:"breakdown"`
}

// Resolve validates in for method m against the product's allowed methods
// and computes the canonical quantity.
func Resolve(allowed []Method, m Method, in Inputs) (Result, error) {
	if !m.Valid() {
		return Result{}, fmt.Errorf("%w: unknown method %q", ErrInvalidQuantity, m)
	}
	if !contains(allowed, m) {
		return Result{}, fmt.Errorf("%w: method %s not allowed for product", ErrInvalidQuantity, m)
	}

	b := Breakdown{Method: m, PackMultiplier: 1}
	var err error

	switch m {
	case Weight:
		if b.Grams, err = required("grams", in.Grams); err != nil {
			return Result{}, err
		}
		if b.PackMultiplier, err = optional("pack_multiplier", in.PackMultiplier); err != nil {
			return Result{}, err
		}
	case PieceBreakdown:
		if b.GramsPerPiece, err = required("grams_per_piece", in.GramsPerPiece); err != nil {
			return Result{}, err
		}
		if b.PieceCount, err = required("piece_count", in.PieceCount); err != nil {
			return Result{}, err
		}
		if in.PackMultiplier == nil {
			return Result{}, fmt.Errorf("%w: pack_multiplier is required", ErrInvalidQuantity)
		}
		if b.PackMultiplier, err = toCount("pack_multiplier", *in.PackMultiplier); err != nil {
			return Result{}, err
		}
	case Pack:
		if b.PackCount, err = required("pack_count", in.PackCount); err != nil {
			return Result{}, err
		}
	case PieceCount:
		if b.PieceCount, err = required("piece_count", in.PieceCount); err != nil {
			return Result{}, err
		}
		if b.PackMultiplier, err = optional("pack_multiplier", in.PackMultiplier); err != nil {
			return Result{}, err
		}
	}

	return Result{Canonical: b.Canonical(), Breakdown: b}, nil
}

// Canonical recomputes the canonical quantity from a validated breakdown.
func (b Breakdown) Canonical() int64 {
	switch b.Method {
	case Weight:
		return b.Grams * b.PackMultiplier
	case PieceBreakdown:
		return b.GramsPerPiece * b.PieceCount * b.PackMultiplier
	case Pack:
		return b.PackCount
	case PieceCount:
		return b.PieceCount * b.PackMultiplier
	}
	return 0
}

// Inputs converts a breakdown back into raw inputs, so stored lines can be
// resolved again.
func (b Breakdown) Inputs() Inputs {
	in := Inputs{
		Grams:         float64(b.Grams),
		GramsPerPiece: float64(b.GramsPerPiece),
		PieceCount:    float64(b.PieceCount),
		PackCount:     float64(b.PackCount),
	}
	if b.Method != Pack {
		in.PackMultiplier = Mult(float64(b.PackMultiplier))
	}
	return in
}

// WithPacks returns a copy of b whose repetition factor is n. For Pack lines
// that is the pack count, otherwise the pack multiplier.
func (b Breakdown) WithPacks(n int64) Breakdown {
	if b.Method == Pack {
		b.PackCount = n
	} else {
		b.PackMultiplier = n
	}
	return b
}

// Packs returns the repetition factor of b.
func (b Breakdown) Packs() int64 {
	if b.Method == Pack {
		return b.PackCount
	}
	return b.PackMultiplier
}

func required(field string, v float64) (int64, error) {
	if v == 0 {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidQuantity, field)
	}
	return toCount(field, v)
}

func optional(field string, v *float64) (int64, error) {
	if v == nil {
		return 1, nil
	}
	return toCount(field, *v)
}

func toCount(field string, v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidQuantity, field)
	}
	if v < 1 {
		return 0, fmt.Errorf("%w: %s must be >= 1", ErrInvalidQuantity, field)
	}
	if v > maxInput {
		return 0, fmt.Errorf("%w: %s exceeds %d", ErrInvalidQuantity, field, maxInput)
	}
	return int64(v), nil
}

func contains(allowed []Method, m Method) bool {
	for _, a := range allowed {
		if a == m {
			return true
		}
	}
	return false
}
