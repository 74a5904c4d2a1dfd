package greeting

type (
	// CardView is one card as rendered on the public page, already
	// resolved to a single locale.
	CardView struct {
		Title        string
		ByText       string
		Month        string
		Description  string
		ImageURL     string
		ThumbnailURL string
	}

	// PageView is the fully resolved public page handed to the template.
	PageView struct {
		Year                int
		Username            string
		Locale              Locale
		HasEnglish          bool
		Title               string
		Greeting            string
		HeaderBackgroundURL string
		Footer              string
		FooterVisible       bool
		Roster              RosterView
		Cards               []CardView
	}
)

func buildPageView(y Year, cards []Card, loc Locale) PageView {
	pv := PageView{
		Year:                y.Year,
		Username:            y.Username,
		Locale:              loc,
		HasEnglish:          y.EnglishEnabled,
		Title:               y.Title(loc),
		Greeting:            y.Greeting(loc),
		HeaderBackgroundURL: y.HeaderBackgroundURL,
		Footer:              y.Footer(loc),
		FooterVisible:       y.FooterVisible,
	}
	if y.ContactInfo != nil {
		pv.Roster = y.ContactInfo.Renderable(y.EnglishEnabled, loc)
	}
	for _, c := range SortBySequence(cards) {
		pv.Cards = append(pv.Cards, CardView{
			Title:        c.TitleIn(y, loc),
			ByText:       c.ByTextIn(y, loc),
			Month:        c.Month,
			Description:  c.DescriptionIn(y, loc),
			ImageURL:     c.ImageURL,
			ThumbnailURL: c.ThumbnailURL,
		})
	}
	return pv
}
