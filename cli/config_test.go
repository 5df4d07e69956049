package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consolebox "github.com/mkeddie/consolebox"
)

func TestLoadConfigFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "> ", cfg.Prompt)
	require.NotNil(t, cfg.AutoScroll)
	assert.True(t, *cfg.AutoScroll)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `prompt: "$ "
margin: 4
auto_scroll: false
colors:
  foreground: "#ffffff"
  error: cc0000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "$ ", cfg.Prompt)
	assert.Equal(t, 4, cfg.Margin)
	require.NotNil(t, cfg.AutoScroll)
	assert.False(t, *cfg.AutoScroll)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "$ ", opts.Prompt)
	assert.Equal(t, 4, opts.Margin)
	assert.False(t, opts.AutoScroll)
	assert.Equal(t, consolebox.RGB(255, 255, 255), opts.Scheme.Foreground)
	assert.Equal(t, consolebox.RGB(204, 0, 0), opts.Scheme.Error)
	// Unset colors keep the defaults
	assert.Equal(t, consolebox.DefaultBackground, opts.Scheme.Background)
}

func TestLoadConfigFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt: [unclosed"), 0600))

	_, err := LoadConfigFile(path)
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    consolebox.Color
		wantErr bool
	}{
		{"#102030", consolebox.RGB(16, 32, 48), false},
		{"ff00ff", consolebox.RGB(255, 0, 255), false},
		{"#fff", consolebox.Color{}, true},
		{"zzzzzz", consolebox.Color{}, true},
		{"", consolebox.Color{}, true},
	}
	for _, tt := range tests {
		c, err := parseHexColor(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c)
	}
}
