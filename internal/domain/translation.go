package domain

import "context"

// Translator converts text between languages. It never fails: on any upstream
// problem it returns the trimmed input unchanged.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}

// ToEnglish translates text from lang into English.
func ToEnglish(ctx context.Context, t Translator, text, lang string) string {
	return t.Translate(ctx, text, lang, "en")
}

// FromEnglish translates English text into lang.
func FromEnglish(ctx context.Context, t Translator, text, lang string) string {
	if lang == "" {
		lang = "en"
	}
	return t.Translate(ctx, text, "en", lang)
}
