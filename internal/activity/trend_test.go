package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailyTrend(t *testing.T) {
	cases := []struct {
		today, yesterday int
		label            string
		up               bool
	}{
		{30, 0, "Start of streak", true},
		{0, 0, "No change", false},
		{60, 30, "+100% vs yesterday", true},
		{30, 30, "0% vs yesterday", true},
		{15, 30, "-50% vs yesterday", false},
		{0, 30, "-100% vs yesterday", false},
		{9, 8, "+13% vs yesterday", true},
		{1, 8, "-87% vs yesterday", false},
	}
	for _, c := range cases {
		got := DailyTrend(c.today, c.yesterday)
		assert.Equal(t, c.label, got.Label, "today=%d yesterday=%d", c.today, c.yesterday)
		assert.Equal(t, c.up, got.Up, "today=%d yesterday=%d", c.today, c.yesterday)
	}
}
