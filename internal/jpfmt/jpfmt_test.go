package jpfmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	d := time.Date(2026, time.October, 18, 0, 0, 0, 0, JST)
	assert.Equal(t, "2026年10月18日(日)", Date(d))
	assert.Equal(t, "土", Weekday(d.AddDate(0, 0, -1)))
}

func TestYen(t *testing.T) {
	assert.Equal(t, "¥0", Yen(0))
	assert.Equal(t, "¥1,250", Yen(1250))
	assert.Equal(t, "¥29,800", Yen(29800))
}
