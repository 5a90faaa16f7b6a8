package entities

import "strings"

// LanguageCode identifies one of the supported reply languages
type LanguageCode string

const (
	LanguageEnglish LanguageCode = "en"
	LanguageYoruba  LanguageCode = "yo"
	LanguageIgbo    LanguageCode = "ig"
	LanguageHausa   LanguageCode = "ha"
	// LanguageUnknown is only valid as a Transcript source language
	LanguageUnknown LanguageCode = "unknown"
)

// DefaultLanguage is used whenever detection is inconclusive
const DefaultLanguage = LanguageEnglish

var languageNames = map[LanguageCode]string{
	LanguageEnglish: "english",
	LanguageYoruba:  "yoruba",
	LanguageIgbo:    "igbo",
	LanguageHausa:   "hausa",
}

// SupportedLanguages returns the four reply languages in a stable order
func SupportedLanguages() []LanguageCode {
	return []LanguageCode{LanguageEnglish, LanguageYoruba, LanguageIgbo, LanguageHausa}
}

// IsSupported reports whether the code is one of en, yo, ig, ha
func (l LanguageCode) IsSupported() bool {
	_, ok := languageNames[l]
	return ok
}

// Name returns the lower-case English name of the language, "english" for unsupported codes
func (l LanguageCode) Name() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[DefaultLanguage]
}

func (l LanguageCode) String() string {
	return string(l)
}

// ParseLanguageCode normalizes a raw code and falls back to DefaultLanguage
// when the value is not one of the supported codes.
func ParseLanguageCode(raw string) LanguageCode {
	code := LanguageCode(strings.ToLower(strings.TrimSpace(raw)))
	if code.IsSupported() {
		return code
	}
	return DefaultLanguage
}
