package jobqc

// LanguageCode is an ISO 639-1 language code, or LanguageUnknown.
type LanguageCode string

// LanguageUnknown is returned when no language could be determined.
const LanguageUnknown LanguageCode = "unknown"

// LanguageClassifier guesses the natural language of plain text.
type LanguageClassifier interface {
	// Classify returns the best-guess language of text.
	// Returns LanguageUnknown for empty or unrecognizable input.
	Classify(text string) LanguageCode
}
