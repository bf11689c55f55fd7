package llm

import "fmt"

// SystemInstruction is the fixed system message for comment generation.
const SystemInstruction = "You generate high-quality, professional LinkedIn comments based on user-defined personas and languages."

// Defaults applied when the request leaves a knob empty.
const (
	DefaultPersona  = "friendly and professional"
	DefaultLanguage = "English"
)

// BuildPrompt assembles the user prompt for one post. Empty persona or
// language fall back to the defaults above.
func BuildPrompt(postContent, persona, responseLanguage string, includeEmojis bool) string {
	if persona == "" {
		persona = DefaultPersona
	}
	if responseLanguage == "" {
		responseLanguage = DefaultLanguage
	}
	emoji := "Do not use emojis."
	if includeEmojis {
		emoji = "Include relevant emojis."
	}
	return fmt.Sprintf("You are a professional assistant for generating LinkedIn comments. "+
		"The user's desired persona is '%s'. "+
		"The comment must be in '%s'. %s\n\n"+
		"Generate a thoughtful comment for the following LinkedIn post:\n\n"+
		"POST: \"%s\"",
		persona, responseLanguage, emoji, postContent)
}
