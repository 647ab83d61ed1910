// Package templates defines the four invitation templates. A template
// fixes the tone of generated text, the style of generated artwork and
// the default visual configuration; the sender customizes from there.
package templates

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/evermore-app/evermore/internal/models"
)

// Colors is a template palette, also fed into the image prompt.
type Colors struct {
	Primary    string
	Secondary  string
	Accent     string
	Background string
	Text       string
}

type Template struct {
	ID          string
	Name        string
	Description string

	// TonePrompt steers message generation.
	TonePrompt string

	// ImageStyle is the style fragment of the artwork prompt.
	ImageStyle string

	Colors       Colors
	Fonts        []string
	DefaultStyle models.StyleConfig
}

var all = []Template{
	{
		ID:          "classic",
		Name:        "Classic",
		Description: "Elegant pastels with soft, timeless romance",
		TonePrompt:  "Write in an elegant, timeless romantic tone. Use flowing language, gentle metaphors, and a sense of enduring love.",
		ImageStyle:  "soft pastel watercolor style, elegant floral elements, roses and peonies, gentle light, dreamy romantic atmosphere",
		Colors: Colors{
			Primary:    "#d4a0b9",
			Secondary:  "#f2d5e0",
			Accent:     "#c27ba0",
			Background: "#fdf2f8",
			Text:       "#4a2040",
		},
		Fonts: []string{"Playfair Display", "Lora", "Cormorant Garamond"},
		DefaultStyle: models.StyleConfig{
			ColorTheme: "classic",
			Font:       "Playfair Display",
			Layout:     "centered",
		},
	},
	{
		ID:          "bold",
		Name:        "Bold",
		Description: "Deep reds and golds with passionate confidence",
		TonePrompt:  "Write with passionate confidence and bold declarations of love. Use vivid, dramatic language with a sense of grand romance.",
		ImageStyle:  "rich dramatic style, deep reds and golds, bold brush strokes, passionate and cinematic, luxury feel",
		Colors: Colors{
			Primary:    "#b91c1c",
			Secondary:  "#fbbf24",
			Accent:     "#dc2626",
			Background: "#1c1917",
			Text:       "#fef3c7",
		},
		Fonts: []string{"Bebas Neue", "Oswald", "Raleway"},
		DefaultStyle: models.StyleConfig{
			ColorTheme: "bold",
			Font:       "Bebas Neue",
			Layout:     "fullscreen",
		},
	},
	{
		ID:          "playful",
		Name:        "Playful",
		Description: "Bright colors with fun, lighthearted energy",
		TonePrompt:  "Write in a fun, lighthearted, and playful tone. Use humor, warmth, and a sense of joyful adventure together.",
		ImageStyle:  "bright colorful illustration style, fun whimsical elements, hearts and stars, cheerful and joyful mood",
		Colors: Colors{
			Primary:    "#f472b6",
			Secondary:  "#a78bfa",
			Accent:     "#fb923c",
			Background: "#fefce8",
			Text:       "#3b0764",
		},
		Fonts: []string{"Quicksand", "Nunito", "Poppins"},
		DefaultStyle: models.StyleConfig{
			ColorTheme: "playful",
			Font:       "Quicksand",
			Layout:     "centered",
		},
	},
	{
		ID:          "minimal",
		Name:        "Minimal",
		Description: "Clean typography with understated modern charm",
		TonePrompt:  "Write in a clean, understated, and modern tone. Use precise, thoughtful language; let the words carry weight without excess.",
		ImageStyle:  "clean minimalist style, subtle line art, elegant typography-inspired, lots of white space, understated beauty",
		Colors: Colors{
			Primary:    "#6b7280",
			Secondary:  "#e5e7eb",
			Accent:     "#111827",
			Background: "#ffffff",
			Text:       "#111827",
		},
		Fonts: []string{"Inter", "Space Grotesk", "DM Sans"},
		DefaultStyle: models.StyleConfig{
			ColorTheme: "minimal",
			Font:       "Inter",
			Layout:     "split",
		},
	},
}

var validIDs = func() *set.Set[string] {
	s := set.New[string](len(all))
	for _, t := range all {
		s.Insert(t.ID)
	}
	return s
}()

// ValidID reports whether id names a known template.
func ValidID(id string) bool {
	return validIDs.Contains(id)
}

// Get returns the template with the given id, falling back to classic
// for anything unknown.
func Get(id string) Template {
	for _, t := range all {
		if t.ID == id {
			return t
		}
	}
	return all[0]
}

// All returns every template in presentation order.
func All() []Template {
	return all
}
