package greeting

// Locale selects which language variant of a page to resolve.
type Locale string

const (
	LocaleBase    Locale = "base"
	LocaleEnglish Locale = "english"
)

// resolveField applies the per-field fallback rule: the english variant
// is served only when the year allows it AND the english value is
// non-empty; otherwise the base value wins. Fields fall back
// independently, so a page may mix languages.
func resolveField(englishEnabled bool, base, english string, loc Locale) string {
	if loc == LocaleEnglish && englishEnabled && english != "" {
		return english
	}
	return base
}

// HasEnglish reports whether the english variant of the page is
// servable at all.
func (y Year) HasEnglish() bool { return y.EnglishEnabled }

func (y Year) Title(loc Locale) string {
	return resolveField(y.EnglishEnabled, y.TitleText, y.TitleTextEn, loc)
}

func (y Year) Greeting(loc Locale) string {
	return resolveField(y.EnglishEnabled, y.GreetingText, y.GreetingTextEn, loc)
}

func (y Year) Footer(loc Locale) string {
	return resolveField(y.EnglishEnabled, y.FooterText, y.FooterTextEn, loc)
}

// Card resolution is gated on the owning Year's flag; cards carry no
// flag of their own.

func (c Card) TitleIn(y Year, loc Locale) string {
	return resolveField(y.EnglishEnabled, c.Title, c.TitleEn, loc)
}

func (c Card) DescriptionIn(y Year, loc Locale) string {
	return resolveField(y.EnglishEnabled, c.Description, c.DescriptionEn, loc)
}

func (c Card) ByTextIn(y Year, loc Locale) string {
	return resolveField(y.EnglishEnabled, c.ByText, c.ByTextEn, loc)
}
