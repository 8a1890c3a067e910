package quantity

import (
	"fmt"
	"strconv"
)

// Describe renders a breakdown the way it is printed on order sheets,
// e.g. "300g×2パック", "100g×3枚×2パック", "4パック" or "2本".
func Describe(b Breakdown) string {
	switch b.Method {
	case Weight:
		if b.PackMultiplier > 1 {
			return fmt.Sprintf("%dg×%dパック", b.Grams, b.PackMultiplier)
		}
		return Grams(b.Grams)
	case PieceBreakdown:
		if b.PackMultiplier > 1 {
			return fmt.Sprintf("%dg×%d枚×%dパック", b.GramsPerPiece, b.PieceCount, b.PackMultiplier)
		}
		return fmt.Sprintf("%dg×%d枚", b.GramsPerPiece, b.PieceCount)
	case Pack:
		return fmt.Sprintf("%dパック", b.PackCount)
	case PieceCount:
		if b.PackMultiplier > 1 {
			return fmt.Sprintf("%d本×%dパック", b.PieceCount, b.PackMultiplier)
		}
		return fmt.Sprintf("%d本", b.PieceCount)
	}
	return strconv.FormatInt(b.Canonical(), 10)
}

// DescribeTotal renders the canonical total with its unit,
// e.g. "1,200g" or "6本".
func DescribeTotal(b Breakdown) string {
	return DescribeCanonical(b.Method, b.Canonical())
}

// DescribeCanonical renders a canonical quantity n measured the way m
// measures it.
func DescribeCanonical(m Method, n int64) string {
	switch m {
	case Weight, PieceBreakdown:
		return Grams(n)
	case Pack:
		return fmt.Sprintf("%dパック", n)
	case PieceCount:
		return fmt.Sprintf("%d本", n)
	}
	return strconv.FormatInt(n, 10)
}

// Grams formats n with thousands separators and a "g" suffix.
func Grams(n int64) string {
	return Group(n) + "g"
}

// Group inserts thousands separators into n.
func Group(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
