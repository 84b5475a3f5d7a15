// Package assemble builds the bounded model request for a chat turn: it
// truncates history, applies the image attachment policy, and combines the
// resolved mode persona with a language directive into the final system
// instruction.
package assemble

import (
	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/llm"
	"github.com/kawanlabs/kawan-backend/internal/modes"
)

// HistoryWindow is the hard cap on messages sent to the model. It bounds
// token usage per turn and is not configurable per call.
const HistoryWindow = 10

// languageNames maps supported language codes to the name used in the
// directive appended to every system instruction.
var languageNames = map[string]string{
	"id": "Indonesian",
	"en": "English",
	"zh": "Mandarin Chinese",
	"ja": "Japanese",
}

// defaultLanguage is used for unknown or missing codes.
const defaultLanguage = "Indonesian"

// LanguageName resolves a language code to its directive name.
func LanguageName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	return defaultLanguage
}

// Assemble turns an ordered message history into a model-ready request.
//
// Policy:
//   - Only the most recent HistoryWindow messages are sent, oldest first.
//   - Every message contributes a text part when its content is non-empty.
//     Only the final message may carry an image part, and only when it is
//     user-authored; earlier images are dropped to save tokens.
//   - A message that would end up with zero parts gets a single empty text
//     part; the gateway contract requires at least one part per message.
//   - When streaming, a leading model message left at the front of the
//     truncated window is dropped, because a streamed sequence must open
//     with a user turn.
func Assemble(history []domain.ChatMessage, mode modes.Resolved, language string, streaming bool) llm.Request {
	window := history
	if len(window) > HistoryWindow {
		window = window[len(window)-HistoryWindow:]
	}
	if streaming && len(window) > 0 && window[0].Role == domain.RoleModel {
		window = window[1:]
	}

	msgs := make([]llm.Message, 0, len(window))
	for i, m := range window {
		var parts []llm.Part
		if m.Content != "" {
			parts = append(parts, llm.Part{Text: m.Content})
		}
		last := i == len(window)-1
		if last && m.Role == domain.RoleUser && m.HasImage() {
			parts = append(parts, llm.Part{ImageMIME: m.ImageMIME, ImageData: m.ImageData})
		}
		if len(parts) == 0 {
			parts = append(parts, llm.Part{Text: ""})
		}
		msgs = append(msgs, llm.Message{Role: m.Role, Parts: parts})
	}

	return llm.Request{
		SystemInstruction: systemInstruction(mode, language),
		Messages:          msgs,
		Temperature:       mode.Temperature,
	}
}

// systemInstruction joins the mode persona with the language directive.
func systemInstruction(mode modes.Resolved, language string) string {
	return mode.SystemInstruction + " Always respond in " + LanguageName(language) + "."
}
