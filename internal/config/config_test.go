package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"configured value", "30s", 30 * time.Second},
		{"sub-second value", "500ms", 500 * time.Millisecond},
		{"empty falls back", "", 10 * time.Second},
		{"garbage falls back", "soon", 10 * time.Second},
		{"non-positive falls back", "-5s", 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &App{Timeout: tt.timeout}
			assert.Equal(t, tt.want, a.ShutdownTimeout())
		})
	}
}
