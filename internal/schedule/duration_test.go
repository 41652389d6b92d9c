package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"4h", 4 * time.Hour},
		{"3h30", 3*time.Hour + 30*time.Minute},
		{"1h", time.Hour},
		{"2h05", 2*time.Hour + 5*time.Minute},
		{"10h15", 10*time.Hour + 15*time.Minute},
		{"3h30 environ", 3*time.Hour + 30*time.Minute}, // trailing text ignored
		{"garbage", DefaultDuration},
		{"", DefaultDuration},
		{"h30", DefaultDuration},
		{" 2h", DefaultDuration}, // pattern is anchored at the start
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input))
		})
	}
}
