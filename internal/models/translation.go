package models

import "time"

// AutoLanguage is the source language sentinel meaning "detect automatically".
const AutoLanguage = "auto"

// Translation is a completed translation kept in the history.
type Translation struct {
	ID             int64     `json:"id"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	Provider       string    `json:"provider,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewTranslation carries the caller-supplied fields of a Translation;
// the store assigns the id and the timestamp.
type NewTranslation struct {
	SourceText     string
	TranslatedText string
	SourceLanguage string
	TargetLanguage string
	Provider       string
}
