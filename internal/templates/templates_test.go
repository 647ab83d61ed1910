package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidID(t *testing.T) {
	for _, id := range []string{"classic", "bold", "playful", "minimal"} {
		assert.True(t, ValidID(id), id)
	}
	assert.False(t, ValidID("gothic"))
	assert.False(t, ValidID(""))
}

func TestGet(t *testing.T) {
	tmpl := Get("bold")
	assert.Equal(t, "Bold", tmpl.Name)
	assert.Equal(t, "fullscreen", tmpl.DefaultStyle.Layout)

	// Unknown ids fall back to classic so callers never branch on a miss.
	assert.Equal(t, "classic", Get("unknown").ID)
}

func TestTemplatesComplete(t *testing.T) {
	assert.Len(t, All(), 4)
	for _, tmpl := range All() {
		assert.NotEmpty(t, tmpl.TonePrompt, tmpl.ID)
		assert.NotEmpty(t, tmpl.ImageStyle, tmpl.ID)
		assert.NotEmpty(t, tmpl.Fonts, tmpl.ID)
		assert.True(t, ValidID(tmpl.DefaultStyle.ColorTheme), tmpl.ID)
	}
}
