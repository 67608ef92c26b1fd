package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    string
	}{
		{"zero", 0, "0s"},
		{"seconds only", 45, "45s"},
		{"minutes and seconds", 330, "5m 30s"},
		{"exact minute", 60, "1m 0s"},
		{"hours and minutes", 7500, "2h 5m"},
		{"exact hour", 3600, "1h 0m"},
		{"hours drop seconds", 3661, "1h 1m"},
		{"negative clamps to zero", -5, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}
