package ambient

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/samber/lo"

	"github.com/danielrjepsen/Nory-sub001/internal/domain/event"
)

// Colors is the triplet used to tint the waves
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Palette is a named color triplet that can override the event theme
type Palette struct {
	Name string `json:"name"`
	Colors
}

// Palettes is the fixed table palettes are chosen from
var Palettes = []Palette{
	{Name: "sunset", Colors: Colors{Primary: "#ff6b6b", Secondary: "#feca57", Accent: "#ff9ff3"}},
	{Name: "ocean", Colors: Colors{Primary: "#0abde3", Secondary: "#48dbfb", Accent: "#1dd1a1"}},
	{Name: "forest", Colors: Colors{Primary: "#10ac84", Secondary: "#1dd1a1", Accent: "#feca57"}},
	{Name: "aurora", Colors: Colors{Primary: "#5f27cd", Secondary: "#00d2d3", Accent: "#ff9ff3"}},
	{Name: "neon", Colors: Colors{Primary: "#f368e0", Secondary: "#00d2d3", Accent: "#feca57"}},
	{Name: "midnight", Colors: Colors{Primary: "#222f3e", Secondary: "#576574", Accent: "#c8d6e5"}},
}

// ThemeColors derives the default triplet from an event theme
func ThemeColors(theme event.Theme) Colors {
	theme = theme.WithDefaults()
	return Colors{
		Primary:   theme.PrimaryColor,
		Secondary: theme.SecondaryColor,
		Accent:    theme.AccentColor,
	}
}

// PaletteByName looks up a palette case-insensitively
func PaletteByName(name string) (Palette, error) {
	p, ok := lo.Find(Palettes, func(p Palette) bool {
		return strings.EqualFold(p.Name, name)
	})
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q", name)
	}
	return p, nil
}

// RandomPalette draws a palette from the table
func RandomPalette(rng *rand.Rand) Palette {
	return Palettes[rng.Intn(len(Palettes))]
}
