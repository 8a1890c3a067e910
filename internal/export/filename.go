package export

import (
	"fmt"
	"strings"
	"unicode"
)

const maxBaseRunes = 80

// nameSet hands out archive entry names that are unique within one run.
// It is only touched between chunks, never from render goroutines.
type nameSet struct {
	used map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{used: make(map[string]bool)}
}

// resolve returns base.pdf, or base_2.pdf, base_3.pdf, ... when taken.
// Comparison ignores case so archives extract cleanly on case-insensitive
// file systems.
func (s *nameSet) resolve(base string) string {
	name := base + ".pdf"
	for n := 2; s.used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d.pdf", base, n)
	}
	s.used[strings.ToLower(name)] = true
	return name
}

// baseName derives a file name stem from the customer name, falling back
// to the order number when nothing printable is left.
func baseName(customerName, orderNumber string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(customerName) {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), " .")
	if r := []rune(name); len(r) > maxBaseRunes {
		name = string(r[:maxBaseRunes])
	}
	if strings.Trim(name, "_ ") == "" {
		return "order-" + orderNumber
	}
	return name
}
