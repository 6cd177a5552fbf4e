package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", TraceLevel},
		{"DEBUG", DebugLevel},
		{" info ", InfoLevel},
		{"warning", WarnLevel},
		{"disabled", Disabled},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
		})
	}

	_, err := ParseLevel("")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	log := Nop().WithField("k", "v").WithError(nil)
	log.Info("nothing")
	assert.Equal(t, Disabled, log.GetLevel())
	assert.Panics(t, func() { log.Panicf("stop %d", 1) })
}
