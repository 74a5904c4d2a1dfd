package core

import "context"

// Translator is any collaborator that can machine-translate text.
type Translator interface {
	// Translate returns `text` translated into targetLang (ISO 639-1 code).
	Translate(ctx context.Context, text, targetLang string) (string, error)
}
