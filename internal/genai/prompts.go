package genai

import (
	"fmt"
	"strings"

	"github.com/evermore-app/evermore/internal/templates"
)

// buildMessagePrompts composes the system and user prompts for text
// generation. The memories are inspiration, never text to copy; the
// rules below stop the model from echoing them verbatim.
func buildMessagePrompts(req *MessageRequest) (system, user string) {
	tmpl := templates.Get(req.TemplateID)

	var memories strings.Builder
	for _, m := range req.Memories {
		fmt.Fprintf(&memories, "- %s (context: %s)\n", m.Description, m.Title)
	}

	system = fmt.Sprintf(`You are a gifted romantic writer creating a Valentine's Day invitation. %s

Rules:
- Write in second person, addressing the recipient by name
- Draw on the emotions, places, and moments from their memories, but NEVER copy a memory title or description word-for-word into the message. Paraphrase and reimagine them poetically.
- The message must feel like it was written by someone who truly knows this couple, not assembled from a template
- Never be cheesy or cliché, aim for genuine, modern romance
- Keep the total message under 120 words, concise and heartfelt
- Keep the tagline short and memorable
- The story arc should summarize their journey together`, tmpl.TonePrompt)

	var hints string
	if req.Hints != "" {
		hints = fmt.Sprintf("Personal hints and context: %s\n\n", req.Hints)
	}

	user = fmt.Sprintf(`Create a Valentine's invitation from %s to %s.

Here is some background about their relationship, use these as creative inspiration, not as text to copy:
%s
%sWrite a deeply personal invitation that captures the feeling of these moments without repeating them verbatim.`,
		req.SenderName, req.RecipientName, memories.String(), hints)

	return system, user
}

// buildImagePrompt composes the artwork prompt. The image must stay
// text-free so the card's typography comes from the style config, not
// from whatever the model decides to letter.
func buildImagePrompt(req *ImageRequest) string {
	tmpl := templates.Get(req.TemplateID)

	var b strings.Builder
	fmt.Fprintf(&b, "Create a beautiful Valentine's Day invitation artwork. Style: %s.\n", tmpl.ImageStyle)
	fmt.Fprintf(&b, "The image should feature romantic elements appropriate for an invitation from %s to %s.\n",
		req.SenderName, req.RecipientName)
	if req.Tagline != "" {
		fmt.Fprintf(&b, "Mood: %q. ", req.Tagline)
	}
	if req.ImageDescription != "" {
		fmt.Fprintf(&b, "The sender describes the desired scene: %s. ", req.ImageDescription)
	}
	b.WriteString("Do not include any text or letters in the image. Focus on beautiful visual art only.\n")
	fmt.Fprintf(&b, "Color palette: use colors similar to %s and %s.\n", tmpl.Colors.Primary, tmpl.Colors.Secondary)
	b.WriteString("Aspect ratio: landscape, suitable as a header image for a digital invitation card.")

	return b.String()
}
