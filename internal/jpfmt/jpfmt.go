// Package jpfmt formats dates and amounts the way Japanese order paperwork
// prints them.
package jpfmt

import (
	"fmt"
	"time"

	"github.com/maruko-pickup/api/internal/quantity"
)

// JST is the shop's time zone. A fixed zone avoids depending on tzdata in
// minimal containers.
var JST = time.FixedZone("JST", 9*60*60)

var weekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// Weekday returns the single-kanji weekday of t.
func Weekday(t time.Time) string {
	return weekdays[t.Weekday()]
}

// Date formats t as "2026年10月18日(日)".
func Date(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日(%s)", t.Year(), int(t.Month()), t.Day(), Weekday(t))
}

// Yen formats n as "¥1,250".
func Yen(n int64) string {
	return "¥" + quantity.Group(n)
}
