package locale

// Pick returns the text matching the request language, defaulting to Japanese.
func Pick(language, english, japanese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return japanese
	}
	if japanese != "" {
		return japanese
	}
	return english
}
