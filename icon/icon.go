// Package icon provides a multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs or plain ASCII depending on user preference.
package icon

import (
	"github.com/pitchloop/pitchloop/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a UI symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Progress
	Play
	Pause
	Loop
	Warn
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "✅", nerd: "\uf00c", plain: "✓"},
	Fail:     {emoji: "👹", nerd: "\uf00d", plain: "✖"},
	Progress: {emoji: "⏳", nerd: "\uf110", plain: "…"},
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: ">"},
	Pause:    {emoji: "⏸️", nerd: "\uf04c", plain: "||"},
	Loop:     {emoji: "🔁", nerd: "\uf01e", plain: "@"},
	Warn:     {emoji: "⚠️", nerd: "\uf071", plain: "!"},
}

// Get retrieves the visual representation based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.Get()
}
