package greeting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/takanag/nenga/core"
	"github.com/takanag/nenga/core/user"
)

var (
	// errors
	ErrYearNotFound = errors.New("year not found")
	ErrCardNotFound = errors.New("card not found")
	ErrYearExists   = errors.New("a page for this year already exists")
	ErrYearHasCards = errors.New("this year still has cards")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
)

type (
	Repository interface {
		CreateYear(ctx context.Context, y Year) (Year, error)
		GetYearByID(ctx context.Context, id string) (Year, error)
		GetYearByUsernameAndYear(ctx context.Context, username string, year int) (Year, error)
		// QueryYearsByOwner returns the owner's years, newest year first by default.
		QueryYearsByOwner(ctx context.Context, ownerID string, ordering ...core.DBOrdering) ([]Year, error)
		QueryAllYears(ctx context.Context, ordering ...core.DBOrdering) ([]Year, error)
		UpdateYear(ctx context.Context, y Year) (Year, error)
		DeleteYear(ctx context.Context, id string) error

		CreateCard(ctx context.Context, c Card) (Card, error)
		GetCardByID(ctx context.Context, id string) (Card, error)
		// QueryCardsByYear returns the year's cards sorted by display order.
		QueryCardsByYear(ctx context.Context, yearID string) ([]Card, error)
		UpdateCard(ctx context.Context, c Card) (Card, error)
		DeleteCard(ctx context.Context, id string) error
		// UpdateCardOrders persists all the given display orders in a single
		// transaction; either every card moves or none does.
		UpdateCardOrders(ctx context.Context, yearID string, orders map[string]int) error
	}

	Service struct {
		repo       Repository
		translator core.Translator
		log        core.Logger
		conf       *core.Config
	}
)

func NewService(repo Repository, translator core.Translator, log core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:       repo,
		translator: translator,
		log:        log,
		conf:       conf,
	}
}

// EditableBy reports whether the user may modify this year and its cards.
func (y Year) EditableBy(usr user.User) bool {
	return usr.IsAdmin() || y.OwnerID == usr.ID
}

func (svc *Service) checkYearUniqueness(username string, year int) error {
	_, err := svc.repo.GetYearByUsernameAndYear(context.Background(), username, year)
	if err == nil {
		return core.NewValidationError(ErrYearExists, core.FieldError{Field: "year", Error: ErrYearExists.Error()})
	}
	if errors.Cause(err) == ErrYearNotFound {
		return nil
	}
	return err
}

// CreateYear publishes a new page shell for the owner.
func (svc *Service) CreateYear(ctx context.Context, owner user.User, ny NewYear) (Year, error) {
	now := time.Now().UTC()
	y := Year{
		ID:                  uuid.New().String(),
		Year:                ny.Year,
		OwnerID:             owner.ID,
		Username:            owner.Username,
		TitleText:           ny.TitleText,
		GreetingText:        ny.GreetingText,
		HeaderBackgroundURL: ny.HeaderBackgroundURL,
		FooterText:          ny.FooterText,
		FooterVisible:       true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if ny.FooterVisible != nil {
		y.FooterVisible = *ny.FooterVisible
	}
	if ny.ContactInfo != nil {
		ci := ny.ContactInfo.Normalize()
		y.ContactInfo = &ci
	}
	return svc.repo.CreateYear(ctx, y)
}

func (svc *Service) GetYearByID(ctx context.Context, id string) (Year, error) {
	return svc.repo.GetYearByID(ctx, id)
}

func (svc *Service) QueryYearsByOwner(ctx context.Context, ownerID string, ordering ...core.DBOrdering) ([]Year, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "year"}} // newest first
	}
	return svc.repo.QueryYearsByOwner(ctx, ownerID, ordering...)
}

func (svc *Service) QueryAllYears(ctx context.Context, ordering ...core.DBOrdering) ([]Year, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "year"}} // newest first
	}
	return svc.repo.QueryAllYears(ctx, ordering...)
}

// UpdateYear applies the set fields. Flipping EnglishEnabled on triggers a
// best-effort machine translation of any empty english fields; translation
// failures are logged and never block the save.
func (svc *Service) UpdateYear(ctx context.Context, id string, uy UpdateYear) (Year, error) {
	y, err := svc.repo.GetYearByID(ctx, id)
	if err != nil {
		return Year{}, err
	}

	enablingEnglish := uy.EnglishEnabled != nil && *uy.EnglishEnabled && !y.EnglishEnabled

	if uy.TitleText != nil {
		y.TitleText = *uy.TitleText
	}
	if uy.GreetingText != nil {
		y.GreetingText = *uy.GreetingText
	}
	if uy.HeaderBackgroundURL != nil {
		y.HeaderBackgroundURL = *uy.HeaderBackgroundURL
	}
	if uy.FooterText != nil {
		y.FooterText = *uy.FooterText
	}
	if uy.FooterVisible != nil {
		y.FooterVisible = *uy.FooterVisible
	}
	if uy.ContactInfo != nil {
		ci := uy.ContactInfo.Normalize()
		y.ContactInfo = &ci
	}
	if uy.EnglishEnabled != nil {
		y.EnglishEnabled = *uy.EnglishEnabled
	}
	if uy.TitleTextEn != nil {
		y.TitleTextEn = *uy.TitleTextEn
	}
	if uy.GreetingTextEn != nil {
		y.GreetingTextEn = *uy.GreetingTextEn
	}
	if uy.FooterTextEn != nil {
		y.FooterTextEn = *uy.FooterTextEn
	}
	y.UpdatedAt = time.Now().UTC()

	y, err = svc.repo.UpdateYear(ctx, y)
	if err != nil {
		return Year{}, err
	}
	if enablingEnglish {
		y = svc.fillEnglish(ctx, y)
	}
	return y, nil
}

// DeleteYear removes the page. Unless cascade deletion is configured, a
// year that still has cards is refused.
func (svc *Service) DeleteYear(ctx context.Context, id string) error {
	if !svc.conf.CascadeYearDelete {
		cards, err := svc.repo.QueryCardsByYear(ctx, id)
		if err != nil {
			return err
		}
		if len(cards) > 0 {
			return core.NewValidationError(ErrYearHasCards)
		}
	}
	return svc.repo.DeleteYear(ctx, id)
}

// GetPage resolves the public page for one locale. The english variant of
// a page that has not enabled it does not exist, not even as a redirect.
func (svc *Service) GetPage(ctx context.Context, username string, year int, loc Locale) (PageView, error) {
	y, err := svc.repo.GetYearByUsernameAndYear(ctx, core.CleanString(username, true /* lower */), year)
	if err != nil {
		return PageView{}, err
	}
	if loc == LocaleEnglish && !y.EnglishEnabled {
		return PageView{}, ErrYearNotFound
	}
	cards, err := svc.repo.QueryCardsByYear(ctx, y.ID)
	if err != nil {
		return PageView{}, err
	}
	return buildPageView(y, cards, loc), nil
}

// GetYearWithCards returns the raw year and its cards in display sequence.
func (svc *Service) GetYearWithCards(ctx context.Context, id string) (YearWithCards, error) {
	y, err := svc.repo.GetYearByID(ctx, id)
	if err != nil {
		return YearWithCards{}, err
	}
	cards, err := svc.repo.QueryCardsByYear(ctx, y.ID)
	if err != nil {
		return YearWithCards{}, err
	}
	return YearWithCards{Year: y, Cards: SortBySequence(cards)}, nil
}

// CreateCard appends a new card to the end of the year's sequence.
func (svc *Service) CreateCard(ctx context.Context, yearID string, nc NewCard) (Card, error) {
	if _, err := svc.repo.GetYearByID(ctx, yearID); err != nil {
		return Card{}, err
	}
	cards, err := svc.repo.QueryCardsByYear(ctx, yearID)
	if err != nil {
		return Card{}, err
	}

	now := time.Now().UTC()
	c := Card{
		ID:           uuid.New().String(),
		YearID:       yearID,
		Title:        nc.Title,
		ByText:       nc.ByText,
		Month:        nc.Month,
		Description:  nc.Description,
		ImageURL:     nc.ImageURL,
		ThumbnailURL: nc.ThumbnailURL,
		DisplayOrder: NextOrder(cards),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCard(ctx, c)
}

func (svc *Service) GetCardByID(ctx context.Context, id string) (Card, error) {
	return svc.repo.GetCardByID(ctx, id)
}

func (svc *Service) UpdateCard(ctx context.Context, id string, uc UpdateCard) (Card, error) {
	c, err := svc.repo.GetCardByID(ctx, id)
	if err != nil {
		return Card{}, err
	}
	if uc.Title != nil {
		c.Title = *uc.Title
	}
	if uc.ByText != nil {
		c.ByText = *uc.ByText
	}
	if uc.Month != nil {
		c.Month = *uc.Month
	}
	if uc.Description != nil {
		c.Description = *uc.Description
	}
	if uc.ImageURL != nil {
		c.ImageURL = *uc.ImageURL
	}
	if uc.ThumbnailURL != nil {
		c.ThumbnailURL = *uc.ThumbnailURL
	}
	if uc.TitleEn != nil {
		c.TitleEn = *uc.TitleEn
	}
	if uc.DescriptionEn != nil {
		c.DescriptionEn = *uc.DescriptionEn
	}
	if uc.ByTextEn != nil {
		c.ByTextEn = *uc.ByTextEn
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCard(ctx, c)
}

// DeleteCard removes the card and closes the gap it leaves in the
// sequence.
func (svc *Service) DeleteCard(ctx context.Context, id string) error {
	c, err := svc.repo.GetCardByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteCard(ctx, id); err != nil {
		return err
	}
	cards, err := svc.repo.QueryCardsByYear(ctx, c.YearID)
	if err != nil {
		return err
	}
	seq := SortBySequence(cards)
	if changed := Renumber(seq); len(changed) > 0 {
		return svc.repo.UpdateCardOrders(ctx, c.YearID, changed)
	}
	return nil
}

// Move relocates a card within its year's sequence, either to an absolute
// rank or by a relative delta, and persists every affected order at once.
func (svc *Service) Move(ctx context.Context, cardID string, mc MoveCard) ([]Card, error) {
	c, err := svc.repo.GetCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	cards, err := svc.repo.QueryCardsByYear(ctx, c.YearID)
	if err != nil {
		return nil, err
	}

	var (
		seq     []Card
		changed map[string]int
		ok      bool
	)
	if mc.ToIndex != nil {
		seq, changed, ok = Reorder(cards, cardID, *mc.ToIndex)
	} else {
		seq, changed, ok = ReorderBy(cards, cardID, *mc.Delta)
	}
	if !ok {
		return nil, ErrCardNotFound
	}
	if len(changed) > 0 {
		if err = svc.repo.UpdateCardOrders(ctx, c.YearID, changed); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

// fillEnglish machine-translates the empty english fields of the year and
// its cards. Best effort only: a failed field keeps its empty value and
// the page falls back to the base language there.
func (svc *Service) fillEnglish(ctx context.Context, y Year) Year {
	translate := func(text string) string {
		if text == "" {
			return ""
		}
		translated, err := svc.translator.Translate(ctx, text, "EN")
		if err != nil {
			svc.log.Warn("translation failed", "error", err)
			return ""
		}
		return translated
	}

	yearChanged := false
	if y.TitleTextEn == "" {
		if y.TitleTextEn = translate(y.TitleText); y.TitleTextEn != "" {
			yearChanged = true
		}
	}
	if y.GreetingTextEn == "" {
		if y.GreetingTextEn = translate(y.GreetingText); y.GreetingTextEn != "" {
			yearChanged = true
		}
	}
	if y.FooterTextEn == "" {
		if y.FooterTextEn = translate(y.FooterText); y.FooterTextEn != "" {
			yearChanged = true
		}
	}
	if yearChanged {
		updated, err := svc.repo.UpdateYear(ctx, y)
		if err != nil {
			svc.log.Warn("saving year translations failed", "error", err)
		} else {
			y = updated
		}
	}

	cards, err := svc.repo.QueryCardsByYear(ctx, y.ID)
	if err != nil {
		svc.log.Warn("loading cards for translation failed", "error", err)
		return y
	}
	for _, c := range cards {
		changed := false
		if c.TitleEn == "" {
			if c.TitleEn = translate(c.Title); c.TitleEn != "" {
				changed = true
			}
		}
		if c.DescriptionEn == "" {
			if c.DescriptionEn = translate(c.Description); c.DescriptionEn != "" {
				changed = true
			}
		}
		if c.ByTextEn == "" {
			if c.ByTextEn = translate(c.ByText); c.ByTextEn != "" {
				changed = true
			}
		}
		if changed {
			if _, err = svc.repo.UpdateCard(ctx, c); err != nil {
				svc.log.Warn("saving card translations failed", "card", c.ID, "error", err)
			}
		}
	}
	return y
}
