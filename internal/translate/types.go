// Package translate provides the text translation collaborator: a
// Gemini-backed translator with research grounding, wrapped by a
// bounded LRU cache keyed on the normalized request.
package translate

import "context"

// Source is a web source consulted while producing a translation.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Result is the parsed translation response. Pronunciation is an IPA
// guide and may be null when a guide is not possible or irrelevant.
type Result struct {
	Translation   string   `json:"translation"`
	Pronunciation *string  `json:"pronunciation"`
	Sources       []Source `json:"sources"`
}

// Translator produces a translation for text between two supported
// languages. Implementations may fail with a generic error; callers
// must never cache a failed or malformed result.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error)
}
