package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/takanag/nenga/core"
	"github.com/takanag/nenga/core/greeting"
)

type yearRow struct {
	ID                  string                `db:"id"`
	Year                int                   `db:"year"`
	OwnerID             string                `db:"owner_id"`
	Username            string                `db:"username"`
	TitleText           string                `db:"title_text"`
	GreetingText        string                `db:"greeting_text"`
	HeaderBackgroundURL null.String           `db:"header_background_url"`
	FooterText          string                `db:"footer_text"`
	FooterVisible       bool                  `db:"footer_visible"`
	ContactInfo         nullContactInfo       `db:"contact_info"`
	EnglishEnabled      bool                  `db:"english_enabled"`
	TitleTextEn         null.String           `db:"title_text_en"`
	GreetingTextEn      null.String           `db:"greeting_text_en"`
	FooterTextEn        null.String           `db:"footer_text_en"`
	CreatedAt           time.Time             `db:"created_at"`
	UpdatedAt           time.Time             `db:"updated_at"`
}

// nullContactInfo maps the JSONB contact_info column, NULL included.
type nullContactInfo struct {
	ci *greeting.ContactInfo
}

func (n *nullContactInfo) Scan(src interface{}) error {
	if src == nil {
		n.ci = nil
		return nil
	}
	var ci greeting.ContactInfo
	if err := ci.Scan(src); err != nil {
		return err
	}
	n.ci = &ci
	return nil
}

func (n nullContactInfo) Value() (driver.Value, error) {
	if n.ci == nil {
		return nil, nil
	}
	return n.ci.Value()
}

func (row yearRow) toYear() greeting.Year {
	return greeting.Year{
		ID:                  row.ID,
		Year:                row.Year,
		OwnerID:             row.OwnerID,
		Username:            row.Username,
		TitleText:           row.TitleText,
		GreetingText:        row.GreetingText,
		HeaderBackgroundURL: row.HeaderBackgroundURL.String,
		FooterText:          row.FooterText,
		FooterVisible:       row.FooterVisible,
		ContactInfo:         row.ContactInfo.ci,
		EnglishEnabled:      row.EnglishEnabled,
		TitleTextEn:         row.TitleTextEn.String,
		GreetingTextEn:      row.GreetingTextEn.String,
		FooterTextEn:        row.FooterTextEn.String,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

type cardRow struct {
	ID            string      `db:"id"`
	YearID        string      `db:"year_id"`
	Title         string      `db:"title"`
	ByText        string      `db:"by_text"`
	Month         string      `db:"month"`
	Description   string      `db:"description"`
	ImageURL      null.String `db:"image_url"`
	ThumbnailURL  null.String `db:"thumbnail_url"`
	DisplayOrder  int         `db:"display_order"`
	TitleEn       null.String `db:"title_en"`
	DescriptionEn null.String `db:"description_en"`
	ByTextEn      null.String `db:"by_text_en"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (row cardRow) toCard() greeting.Card {
	return greeting.Card{
		ID:            row.ID,
		YearID:        row.YearID,
		Title:         row.Title,
		ByText:        row.ByText,
		Month:         row.Month,
		Description:   row.Description,
		ImageURL:      row.ImageURL.String,
		ThumbnailURL:  row.ThumbnailURL.String,
		DisplayOrder:  row.DisplayOrder,
		TitleEn:       row.TitleEn.String,
		DescriptionEn: row.DescriptionEn.String,
		ByTextEn:      row.ByTextEn.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// nullStr stores "" as NULL.
func nullStr(s string) null.String { return null.NewString(s, s != "") }

var (
	yearColumns = []string{
		"id", "year", "owner_id", "username", "title_text", "greeting_text",
		"header_background_url", "footer_text", "footer_visible", "contact_info",
		"english_enabled", "title_text_en", "greeting_text_en", "footer_text_en",
		"created_at", "updated_at",
	}
	cardColumns = []string{
		"id", "year_id", "title", "by_text", "month", "description",
		"image_url", "thumbnail_url", "display_order",
		"title_en", "description_en", "by_text_en",
		"created_at", "updated_at",
	}
)

type greetingRepository struct {
	db *sqlx.DB
}

func NewGreetingRepository(db *sqlx.DB) greeting.Repository {
	return &greetingRepository{db: db}
}

func (repo *greetingRepository) getYearBy(ctx context.Context, pred interface{}) (greeting.Year, error) {
	query, args, err := psql.Select(yearColumns...).From("years").Where(pred).ToSql()
	if err != nil {
		return greeting.Year{}, errors.Wrap(err, "building query")
	}
	var row yearRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return greeting.Year{}, greeting.ErrYearNotFound
		}
		return greeting.Year{}, errors.Wrap(err, "getting year")
	}
	return row.toYear(), nil
}

func (repo *greetingRepository) selectYears(ctx context.Context, pred interface{}, ordering ...core.DBOrdering) ([]greeting.Year, error) {
	qb := psql.Select(yearColumns...).From("years")
	if pred != nil {
		qb = qb.Where(pred)
	}
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []yearRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying years")
	}
	years := make([]greeting.Year, len(rows))
	for i, row := range rows {
		years[i] = row.toYear()
	}
	return years, nil
}

func (repo *greetingRepository) CreateYear(ctx context.Context, y greeting.Year) (greeting.Year, error) {
	query, args, err := psql.Insert("years").
		Columns(yearColumns...).
		Values(
			y.ID, y.Year, y.OwnerID, y.Username, y.TitleText, y.GreetingText,
			nullStr(y.HeaderBackgroundURL), y.FooterText, y.FooterVisible, nullContactInfo{y.ContactInfo},
			y.EnglishEnabled, nullStr(y.TitleTextEn), nullStr(y.GreetingTextEn), nullStr(y.FooterTextEn),
			y.CreatedAt, y.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return greeting.Year{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return greeting.Year{}, errors.Wrap(err, "creating year")
	}
	return y, nil
}

func (repo *greetingRepository) GetYearByID(ctx context.Context, id string) (greeting.Year, error) {
	return repo.getYearBy(ctx, sq.Eq{"id": id})
}

func (repo *greetingRepository) GetYearByUsernameAndYear(ctx context.Context, username string, year int) (greeting.Year, error) {
	return repo.getYearBy(ctx, sq.Eq{"username": username, "year": year})
}

func (repo *greetingRepository) QueryYearsByOwner(ctx context.Context, ownerID string, ordering ...core.DBOrdering) ([]greeting.Year, error) {
	return repo.selectYears(ctx, sq.Eq{"owner_id": ownerID}, ordering...)
}

func (repo *greetingRepository) QueryAllYears(ctx context.Context, ordering ...core.DBOrdering) ([]greeting.Year, error) {
	return repo.selectYears(ctx, nil, ordering...)
}

func (repo *greetingRepository) UpdateYear(ctx context.Context, y greeting.Year) (greeting.Year, error) {
	query, args, err := psql.Update("years").
		Set("title_text", y.TitleText).
		Set("greeting_text", y.GreetingText).
		Set("header_background_url", nullStr(y.HeaderBackgroundURL)).
		Set("footer_text", y.FooterText).
		Set("footer_visible", y.FooterVisible).
		Set("contact_info", nullContactInfo{y.ContactInfo}).
		Set("english_enabled", y.EnglishEnabled).
		Set("title_text_en", nullStr(y.TitleTextEn)).
		Set("greeting_text_en", nullStr(y.GreetingTextEn)).
		Set("footer_text_en", nullStr(y.FooterTextEn)).
		Set("updated_at", y.UpdatedAt).
		Where(sq.Eq{"id": y.ID}).
		ToSql()
	if err != nil {
		return greeting.Year{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return greeting.Year{}, errors.Wrap(err, "updating year")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return greeting.Year{}, greeting.ErrYearNotFound
	}
	return y, nil
}

func (repo *greetingRepository) DeleteYear(ctx context.Context, id string) error {
	query, args, err := psql.Delete("years").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "deleting year")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return greeting.ErrYearNotFound
	}
	return nil
}

func (repo *greetingRepository) CreateCard(ctx context.Context, c greeting.Card) (greeting.Card, error) {
	query, args, err := psql.Insert("cards").
		Columns(cardColumns...).
		Values(
			c.ID, c.YearID, c.Title, c.ByText, c.Month, c.Description,
			nullStr(c.ImageURL), nullStr(c.ThumbnailURL), c.DisplayOrder,
			nullStr(c.TitleEn), nullStr(c.DescriptionEn), nullStr(c.ByTextEn),
			c.CreatedAt, c.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return greeting.Card{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return greeting.Card{}, errors.Wrap(err, "creating card")
	}
	return c, nil
}

func (repo *greetingRepository) GetCardByID(ctx context.Context, id string) (greeting.Card, error) {
	query, args, err := psql.Select(cardColumns...).From("cards").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return greeting.Card{}, errors.Wrap(err, "building query")
	}
	var row cardRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return greeting.Card{}, greeting.ErrCardNotFound
		}
		return greeting.Card{}, errors.Wrap(err, "getting card")
	}
	return row.toCard(), nil
}

func (repo *greetingRepository) QueryCardsByYear(ctx context.Context, yearID string) ([]greeting.Card, error) {
	query, args, err := psql.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"year_id": yearID}).
		OrderBy("display_order ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []cardRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying cards")
	}
	cards := make([]greeting.Card, len(rows))
	for i, row := range rows {
		cards[i] = row.toCard()
	}
	return cards, nil
}

func (repo *greetingRepository) UpdateCard(ctx context.Context, c greeting.Card) (greeting.Card, error) {
	query, args, err := psql.Update("cards").
		Set("title", c.Title).
		Set("by_text", c.ByText).
		Set("month", c.Month).
		Set("description", c.Description).
		Set("image_url", nullStr(c.ImageURL)).
		Set("thumbnail_url", nullStr(c.ThumbnailURL)).
		Set("title_en", nullStr(c.TitleEn)).
		Set("description_en", nullStr(c.DescriptionEn)).
		Set("by_text_en", nullStr(c.ByTextEn)).
		Set("updated_at", c.UpdatedAt).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return greeting.Card{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return greeting.Card{}, errors.Wrap(err, "updating card")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return greeting.Card{}, greeting.ErrCardNotFound
	}
	return c, nil
}

func (repo *greetingRepository) DeleteCard(ctx context.Context, id string) error {
	query, args, err := psql.Delete("cards").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "deleting card")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return greeting.ErrCardNotFound
	}
	return nil
}

// UpdateCardOrders applies all the display orders in one transaction so a
// reorder is never partially visible.
func (repo *greetingRepository) UpdateCardOrders(ctx context.Context, yearID string, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for id, order := range orders {
		query, args, err := psql.Update("cards").
			Set("display_order", order).
			Where(sq.Eq{"id": id, "year_id": yearID}).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "updating card order")
		}
	}
	return errors.Wrap(tx.Commit(), "committing card orders")
}
