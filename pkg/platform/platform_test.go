package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Platform
		wantErr bool
	}{
		{name: "make", input: "make", want: Make},
		{name: "mixed case with spaces", input: "  N8N ", want: N8n},
		{name: "zapier", input: "zapier", want: Zapier},
		{name: "unknown", input: "ifttt", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownPlatform)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfileFor(t *testing.T) {
	t.Parallel()

	for _, p := range All() {
		profile, err := ProfileFor(p)
		require.NoError(t, err)
		assert.Equal(t, p, profile.Platform)
		assert.NotEmpty(t, profile.Settings)
		assert.Positive(t, profile.NodeSpacing)
	}

	_, err := ProfileFor("ifttt")
	require.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestProfile_DefaultSettings(t *testing.T) {
	t.Parallel()

	settings := MustProfile(Make).DefaultSettings()

	assert.Len(t, settings, 9)
	assert.Equal(t, 1, settings["roundtrips"])
	assert.Equal(t, 3, settings["maxErrors"])
	assert.Equal(t, true, settings["autoCommit"])
	assert.Equal(t, false, settings["dlq"])
}

func TestProfileFor_ReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	first := MustProfile(Zapier)
	first.Settings[0].Default = "Europe/Berlin"

	second := MustProfile(Zapier)
	assert.Equal(t, "UTC", second.Settings[0].Default)
}
