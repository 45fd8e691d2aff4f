package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "seconds", input: "30s", expected: 30 * time.Second},
		{name: "milliseconds", input: "250ms", expected: 250 * time.Millisecond},
		{name: "minutes", input: "5m", expected: 5 * time.Minute},
		{name: "complex duration", input: "1h30m45s", expected: 1*time.Hour + 30*time.Minute + 45*time.Second},
		{name: "zero duration", input: "0s", expected: 0},
		{name: "missing unit", input: "100", wantErr: true},
		{name: "invalid unit", input: "100x", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var d Duration

			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDurationJSONRoundTrip(t *testing.T) {
	t.Parallel()

	d := NewDuration(90 * time.Second)

	encoded, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(encoded))

	var decoded Duration
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, d, decoded)

	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
}

func TestDurationYAML(t *testing.T) {
	t.Parallel()

	var cfg struct {
		Interval Duration `yaml:"interval"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("interval: 45s\n"), &cfg))
	assert.Equal(t, 45*time.Second, cfg.Interval.Duration)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "interval: 45s\n", string(out))
}
