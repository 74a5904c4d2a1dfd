package greeting

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/takanag/nenga/core"
)

// Months are the twelve fixed card labels. A year's cards do not have to
// use unique months nor appear in chronological order.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

type (
	// Year is one published greeting page, scoped to an owner and a
	// calendar year. It is routed publicly by (Username, Year).
	Year struct {
		ID                  string       `json:"id"`
		Year                int          `json:"year"`
		OwnerID             string       `json:"owner_id"`
		Username            string       `json:"username"`
		TitleText           string       `json:"title_text"`
		GreetingText        string       `json:"greeting_text"`
		HeaderBackgroundURL string       `json:"header_background_url,omitempty"`
		FooterText          string       `json:"footer_text"`
		FooterVisible       bool         `json:"footer_visible"`
		ContactInfo         *ContactInfo `json:"contact_info,omitempty"`
		EnglishEnabled      bool         `json:"english_enabled"`
		TitleTextEn         string       `json:"title_text_en,omitempty"`
		GreetingTextEn      string       `json:"greeting_text_en,omitempty"`
		FooterTextEn        string       `json:"footer_text_en,omitempty"`
		CreatedAt           time.Time    `json:"created_at"` // UTC
		UpdatedAt           time.Time    `json:"updated_at"` // UTC
	}

	// Card is one photo+caption unit within a Year. DisplayOrder ranks it
	// within its Year's display sequence.
	Card struct {
		ID            string    `json:"id"`
		YearID        string    `json:"year_id"`
		Title         string    `json:"title"`
		ByText        string    `json:"by_text"`
		Month         string    `json:"month"`
		Description   string    `json:"description"`
		ImageURL      string    `json:"image_url"`
		ThumbnailURL  string    `json:"thumbnail_url"`
		DisplayOrder  int       `json:"display_order"`
		TitleEn       string    `json:"title_en,omitempty"`
		DescriptionEn string    `json:"description_en,omitempty"`
		ByTextEn      string    `json:"by_text_en,omitempty"`
		CreatedAt     time.Time `json:"created_at"` // UTC
		UpdatedAt     time.Time `json:"updated_at"` // UTC
	}

	// YearWithCards bundles a Year with its cards in display sequence.
	YearWithCards struct {
		Year
		Cards []Card `json:"cards"`
	}
)

// ContactEntry is one person in the roster.
type ContactEntry struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// HomeEntry is the roster's postal entry.
type HomeEntry struct {
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type (
	HomeEntryEn    struct {
		Address string `json:"address,omitempty"`
	}
	ContactEntryEn struct {
		Name string `json:"name,omitempty"`
	}
)

// ContactInfo is the roster embedded on a Year. Two historical shapes
// co-exist in storage: the legacy fixed two-person form (Takahiko/Itsuki)
// and the canonical Contacts array; Normalize reconciles them at the read
// edge and the legacy fields are never deleted.
type ContactInfo struct {
	Home     *HomeEntry    `json:"home,omitempty"`
	Takahiko *ContactEntry `json:"takahiko,omitempty"`
	Itsuki   *ContactEntry `json:"itsuki,omitempty"`

	Contacts     []ContactEntry `json:"contacts,omitempty"`
	ContactCount int            `json:"contact_count,omitempty"`

	HomeEn     *HomeEntryEn     `json:"home_en,omitempty"`
	ContactsEn []ContactEntryEn `json:"contacts_en,omitempty"`
}

// Value implements driver.Valuer; ContactInfo is persisted as JSONB.
func (ci ContactInfo) Value() (driver.Value, error) {
	return json.Marshal(ci)
}

// Scan implements sql.Scanner.
func (ci *ContactInfo) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, ci)
	case string:
		return json.Unmarshal([]byte(data), ci)
	default:
		return errors.Errorf("unsupported ContactInfo source %T", src)
	}
}

// NewYear contains information needed to create a new Year.
type NewYear struct {
	Year                int          `json:"year" validate:"required,min=1900,max=9999"`
	TitleText           string       `json:"title_text" validate:"required"`
	GreetingText        string       `json:"greeting_text"`
	HeaderBackgroundURL string       `json:"header_background_url" validate:"omitempty,url"`
	FooterText          string       `json:"footer_text"`
	FooterVisible       *bool        `json:"footer_visible"`
	ContactInfo         *ContactInfo `json:"contact_info" validate:"omitempty,contactcount"`
}

func (ny *NewYear) Validate(validate *validator.Validate, svc *Service, username string) error {
	ny.TitleText = core.CleanString(ny.TitleText)
	if err := validate.Struct(ny); err != nil {
		return err
	}
	return svc.checkYearUniqueness(username, ny.Year)
}

// UpdateYear defines what information may be provided to modify an existing Year.
// Nil pointers leave the stored value untouched.
type UpdateYear struct {
	TitleText           *string      `json:"title_text"`
	GreetingText        *string      `json:"greeting_text"`
	HeaderBackgroundURL *string      `json:"header_background_url" validate:"omitempty,url|eq="`
	FooterText          *string      `json:"footer_text"`
	FooterVisible       *bool        `json:"footer_visible"`
	ContactInfo         *ContactInfo `json:"contact_info" validate:"omitempty,contactcount"`
	EnglishEnabled      *bool        `json:"english_enabled"`
	TitleTextEn         *string      `json:"title_text_en"`
	GreetingTextEn      *string      `json:"greeting_text_en"`
	FooterTextEn        *string      `json:"footer_text_en"`
}

func (uy *UpdateYear) Validate(validate *validator.Validate) error {
	if uy.TitleText != nil {
		cleaned := core.CleanString(*uy.TitleText)
		uy.TitleText = &cleaned
	}
	return validate.Struct(uy)
}

// NewCard contains information needed to create a new Card.
type NewCard struct {
	Title        string `json:"title" validate:"required"`
	ByText       string `json:"by_text"`
	Month        string `json:"month" validate:"required,month"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

func (nc *NewCard) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Month = core.CleanString(nc.Month)
	return validate.Struct(nc)
}

// UpdateCard defines what information may be provided to modify an existing Card.
type UpdateCard struct {
	Title         *string `json:"title"`
	ByText        *string `json:"by_text"`
	Month         *string `json:"month" validate:"omitempty,month"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url|eq="`
	ThumbnailURL  *string `json:"thumbnail_url" validate:"omitempty,url|eq="`
	TitleEn       *string `json:"title_en"`
	DescriptionEn *string `json:"description_en"`
	ByTextEn      *string `json:"by_text_en"`
}

func (uc *UpdateCard) Validate(validate *validator.Validate) error {
	if uc.Title != nil {
		cleaned := core.CleanString(*uc.Title)
		uc.Title = &cleaned
	}
	if uc.Month != nil {
		cleaned := core.CleanString(*uc.Month)
		uc.Month = &cleaned
	}
	return validate.Struct(uc)
}

// MoveCard is a reorder request: exactly one of ToIndex or Delta is set.
type MoveCard struct {
	ToIndex *int `json:"to_index"`
	Delta   *int `json:"delta"`
}

func (mc MoveCard) Validate(validate *validator.Validate) error {
	if mc.ToIndex == nil && mc.Delta == nil {
		return core.NewValidationError(errors.New("one of to_index or delta is required"))
	}
	return validate.Struct(mc)
}
