package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	a := Current()
	b := Current()
	assert.Same(t, a, b)
	assert.Equal(t, "catppuccin-mocha", a.Name)
	assert.Same(t, a.S(), b.S(), "styles are built once")
}

func TestCatppuccinMocha_Complete(t *testing.T) {
	th := NewCatppuccinMocha()
	for name, color := range map[string]string{
		"Primary":    th.Primary,
		"Secondary":  th.Secondary,
		"BgBase":     th.BgBase,
		"BgMantle":   th.BgMantle,
		"BgSurface0": th.BgSurface0,
		"BgSurface1": th.BgSurface1,
		"FgMuted":    th.FgMuted,
		"FgSubtle":   th.FgSubtle,
		"FgBase":     th.FgBase,
		"FgBright":   th.FgBright,
		"Success":    th.Success,
		"Warning":    th.Warning,
		"Error":      th.Error,
		"Info":       th.Info,
	} {
		assert.Regexp(t, `^#[0-9a-f]{6}$`, color, name)
	}
}
