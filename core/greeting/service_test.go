package greeting_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takanag/nenga/core"
	"github.com/takanag/nenga/core/greeting"
	"github.com/takanag/nenga/core/user"
	inmemdb "github.com/takanag/nenga/storage/database/inmem"
	"github.com/takanag/nenga/tests"
)

type echoTranslator struct{}

func (echoTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return "[en] " + text, nil
}

type failingTranslator struct{}

func (failingTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return "", errors.New("upstream down")
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func newTestService(t *testing.T, translator core.Translator, cascade bool) (*greeting.Service, greeting.Repository, user.Repository) {
	t.Helper()
	db := inmemdb.NewDB()
	repo := inmemdb.NewGreetingRepository(db)
	conf := &core.Config{CascadeYearDelete: cascade}
	return greeting.NewService(repo, translator, nopLogger{}, conf), repo, inmemdb.NewUserRepository(db)
}

func TestServiceMove(t *testing.T) {
	svc, repo, usrRepo := newTestService(t, echoTranslator{}, false)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
	y := testutil.CreateYear(t, repo, owner, 2026, "Happy 2026")
	a := testutil.CreateCard(t, repo, y, "A", "January", 0)
	b := testutil.CreateCard(t, repo, y, "B", "February", 1)
	c := testutil.CreateCard(t, repo, y, "C", "March", 2)

	to := 0
	seq, err := svc.Move(ctx, c.ID, greeting.MoveCard{ToIndex: &to})
	require.NoError(t, err)

	require.Len(t, seq, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{seq[0].ID, seq[1].ID, seq[2].ID})

	// the new sequence is what storage serves back
	cards, err := repo.QueryCardsByYear(ctx, y.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{cards[0].ID, cards[1].ID, cards[2].ID})
	for i, card := range cards {
		assert.Equal(t, i, card.DisplayOrder)
	}

	// relative move
	delta := 1
	_, err = svc.Move(ctx, c.ID, greeting.MoveCard{Delta: &delta})
	require.NoError(t, err)
	cards, _ = repo.QueryCardsByYear(ctx, y.ID)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, []string{cards[0].ID, cards[1].ID, cards[2].ID})

	// a target past the end changes nothing
	past := 99
	_, err = svc.Move(ctx, c.ID, greeting.MoveCard{ToIndex: &past})
	require.NoError(t, err)
	cards, _ = repo.QueryCardsByYear(ctx, y.ID)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, []string{cards[0].ID, cards[1].ID, cards[2].ID})

	_, err = svc.Move(ctx, "missing", greeting.MoveCard{ToIndex: &to})
	assert.Equal(t, greeting.ErrCardNotFound, errors.Cause(err))
}

func TestServiceDeleteCardClosesGap(t *testing.T) {
	svc, repo, usrRepo := newTestService(t, echoTranslator{}, false)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
	y := testutil.CreateYear(t, repo, owner, 2026, "Happy 2026")
	a := testutil.CreateCard(t, repo, y, "A", "January", 0)
	b := testutil.CreateCard(t, repo, y, "B", "February", 1)
	c := testutil.CreateCard(t, repo, y, "C", "March", 2)

	require.NoError(t, svc.DeleteCard(ctx, b.ID))

	cards, err := repo.QueryCardsByYear(ctx, y.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, a.ID, cards[0].ID)
	assert.Equal(t, 0, cards[0].DisplayOrder)
	assert.Equal(t, c.ID, cards[1].ID)
	assert.Equal(t, 1, cards[1].DisplayOrder)
}

func TestServiceCreateCardAppends(t *testing.T) {
	svc, repo, usrRepo := newTestService(t, echoTranslator{}, false)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
	y := testutil.CreateYear(t, repo, owner, 2026, "Happy 2026")
	testutil.CreateCard(t, repo, y, "A", "January", 0)

	c, err := svc.CreateCard(ctx, y.ID, greeting.NewCard{Title: "B", Month: "February"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.DisplayOrder)

	_, err = svc.CreateCard(ctx, "missing", greeting.NewCard{Title: "X", Month: "March"})
	assert.Equal(t, greeting.ErrYearNotFound, errors.Cause(err))
}

func TestServiceEnableEnglishTranslates(t *testing.T) {
	svc, repo, usrRepo := newTestService(t, echoTranslator{}, false)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
	y := testutil.CreateYear(t, repo, owner, 2026, "あけまして")
	card := testutil.CreateCard(t, repo, y, "正月", "January", 0)

	enabled := true
	updated, err := svc.UpdateYear(ctx, y.ID, greeting.UpdateYear{EnglishEnabled: &enabled})
	require.NoError(t, err)

	assert.True(t, updated.EnglishEnabled)
	assert.Equal(t, "[en] あけまして", updated.TitleTextEn)

	got, err := repo.GetCardByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "[en] 正月", got.TitleEn)
	assert.Empty(t, got.ByTextEn) // empty base fields stay empty
}

func TestServiceEnableEnglishSurvivesTranslatorFailure(t *testing.T) {
	svc, repo, usrRepo := newTestService(t, failingTranslator{}, false)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
	y := testutil.CreateYear(t, repo, owner, 2026, "あけまして")

	enabled := true
	updated, err := svc.UpdateYear(ctx, y.ID, greeting.UpdateYear{EnglishEnabled: &enabled})
	require.NoError(t, err)

	// the save sticks even though no translation was produced
	assert.True(t, updated.EnglishEnabled)
	assert.Empty(t, updated.TitleTextEn)

	got, err := repo.GetYearByID(ctx, y.ID)
	require.NoError(t, err)
	assert.True(t, got.EnglishEnabled)
}

func TestServiceGetPage(t *testing.T) {
	svc, repo, usrRepo := newTestService(t, echoTranslator{}, false)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
	y := testutil.CreateYear(t, repo, owner, 2026, "あけまして")
	testutil.CreateCard(t, repo, y, "正月", "January", 0)

	pv, err := svc.GetPage(ctx, "Taka", 2026, greeting.LocaleBase) // username match is case-insensitive
	require.NoError(t, err)
	assert.Equal(t, "あけまして", pv.Title)
	assert.Len(t, pv.Cards, 1)

	// english variant of a page that never enabled it does not exist
	_, err = svc.GetPage(ctx, "taka", 2026, greeting.LocaleEnglish)
	assert.Equal(t, greeting.ErrYearNotFound, errors.Cause(err))

	_, err = svc.GetPage(ctx, "nobody", 2026, greeting.LocaleBase)
	assert.Equal(t, greeting.ErrYearNotFound, errors.Cause(err))
}

func TestServiceDeleteYear(t *testing.T) {
	ctx := context.Background()

	t.Run("restrict refuses a year with cards", func(t *testing.T) {
		svc, repo, usrRepo := newTestService(t, echoTranslator{}, false)
		owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
		y := testutil.CreateYear(t, repo, owner, 2026, "Happy 2026")
		testutil.CreateCard(t, repo, y, "A", "January", 0)

		err := svc.DeleteYear(ctx, y.ID)
		require.Error(t, err)
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("cascade removes cards too", func(t *testing.T) {
		svc, repo, usrRepo := newTestService(t, echoTranslator{}, true)
		owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)
		y := testutil.CreateYear(t, repo, owner, 2026, "Happy 2026")
		testutil.CreateCard(t, repo, y, "A", "January", 0)

		require.NoError(t, svc.DeleteYear(ctx, y.ID))
		cards, err := repo.QueryCardsByYear(ctx, y.ID)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})
}

func TestServiceCreateYear(t *testing.T) {
	svc, _, usrRepo := newTestService(t, echoTranslator{}, false)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Taka", "taka", "taka@example.com", "", user.OwnerRoles, true)

	y, err := svc.CreateYear(ctx, owner, greeting.NewYear{Year: 2026, TitleText: "Happy 2026"})
	require.NoError(t, err)
	assert.NotEmpty(t, y.ID)
	assert.Equal(t, owner.ID, y.OwnerID)
	assert.Equal(t, "taka", y.Username)
	assert.True(t, y.FooterVisible)
}
