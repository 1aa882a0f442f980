package event

import (
	"sort"

	"github.com/samber/lo"
)

// Theme is the presentation palette of an event
type Theme struct {
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	AccentColor     string `json:"accentColor"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
}

// DefaultTheme is used whenever an event has no template or it cannot be fetched
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:    "#6366f1",
		SecondaryColor:  "#ec4899",
		AccentColor:     "#f59e0b",
		BackgroundColor: "#0f0f23",
		TextColor:       "#ffffff",
		FontFamily:      "Inter, sans-serif",
	}
}

// WithDefaults fills empty fields from DefaultTheme
func (t Theme) WithDefaults() Theme {
	d := DefaultTheme()
	t.PrimaryColor, _ = lo.Coalesce(t.PrimaryColor, d.PrimaryColor)
	t.SecondaryColor, _ = lo.Coalesce(t.SecondaryColor, d.SecondaryColor)
	t.AccentColor, _ = lo.Coalesce(t.AccentColor, d.AccentColor)
	t.BackgroundColor, _ = lo.Coalesce(t.BackgroundColor, d.BackgroundColor)
	t.TextColor, _ = lo.Coalesce(t.TextColor, d.TextColor)
	t.FontFamily, _ = lo.Coalesce(t.FontFamily, d.FontFamily)
	return t
}

// Category groups the photos of an event
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	IsDefault bool   `json:"isDefault"`
}

// SortCategories orders categories ascending by SortOrder, keeping the input
// order for equal values.
func SortCategories(categories []Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
}
