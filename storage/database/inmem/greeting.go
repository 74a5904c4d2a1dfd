package inmemdb

import (
	"context"
	"sort"

	"github.com/takanag/nenga/core"
	"github.com/takanag/nenga/core/greeting"
)

type greetingRepository struct {
	years *yearTable
	cards *cardTable
}

func NewGreetingRepository(db *DB) greeting.Repository {
	return &greetingRepository{years: db.year, cards: db.card}
}

func (repo *greetingRepository) queryYears() []greeting.Year {
	years := make([]greeting.Year, 0, len(repo.years.table))
	for _, y := range repo.years.table {
		years = append(years, *y)
	}
	return years
}

func orderYears(years []greeting.Year, ordering []core.DBOrdering) {
	for _, ord := range ordering {
		if ord.Field != "year" {
			continue
		}
		asc := ord.Ascending
		sort.SliceStable(years, func(i, j int) bool {
			if asc {
				return years[i].Year < years[j].Year
			}
			return years[i].Year > years[j].Year
		})
	}
}

func (repo *greetingRepository) CreateYear(ctx context.Context, y greeting.Year) (greeting.Year, error) {
	repo.years.mutex.Lock()
	defer repo.years.mutex.Unlock()

	repo.years.table[y.ID] = &y
	return y, nil
}

func (repo *greetingRepository) GetYearByID(ctx context.Context, id string) (greeting.Year, error) {
	repo.years.mutex.RLock()
	defer repo.years.mutex.RUnlock()

	if y, ok := repo.years.table[id]; ok {
		return *y, nil
	}
	return greeting.Year{}, greeting.ErrYearNotFound
}

func (repo *greetingRepository) GetYearByUsernameAndYear(ctx context.Context, username string, year int) (greeting.Year, error) {
	repo.years.mutex.RLock()
	defer repo.years.mutex.RUnlock()

	for _, y := range repo.years.table {
		if y.Username == username && y.Year == year {
			return *y, nil
		}
	}
	return greeting.Year{}, greeting.ErrYearNotFound
}

func (repo *greetingRepository) QueryYearsByOwner(ctx context.Context, ownerID string, ordering ...core.DBOrdering) ([]greeting.Year, error) {
	repo.years.mutex.RLock()
	defer repo.years.mutex.RUnlock()

	var years []greeting.Year
	for _, y := range repo.queryYears() {
		if y.OwnerID == ownerID {
			years = append(years, y)
		}
	}
	orderYears(years, ordering)
	return years, nil
}

func (repo *greetingRepository) QueryAllYears(ctx context.Context, ordering ...core.DBOrdering) ([]greeting.Year, error) {
	repo.years.mutex.RLock()
	defer repo.years.mutex.RUnlock()

	years := repo.queryYears()
	orderYears(years, ordering)
	return years, nil
}

func (repo *greetingRepository) UpdateYear(ctx context.Context, y greeting.Year) (greeting.Year, error) {
	repo.years.mutex.Lock()
	defer repo.years.mutex.Unlock()

	if _, ok := repo.years.table[y.ID]; !ok {
		return greeting.Year{}, greeting.ErrYearNotFound
	}
	repo.years.table[y.ID] = &y
	return y, nil
}

func (repo *greetingRepository) DeleteYear(ctx context.Context, id string) error {
	repo.years.mutex.Lock()
	defer repo.years.mutex.Unlock()

	if _, ok := repo.years.table[id]; !ok {
		return greeting.ErrYearNotFound
	}
	delete(repo.years.table, id)

	// cascade to cards, like the FK does
	repo.cards.mutex.Lock()
	defer repo.cards.mutex.Unlock()
	for cid, c := range repo.cards.table {
		if c.YearID == id {
			delete(repo.cards.table, cid)
		}
	}
	return nil
}

func (repo *greetingRepository) CreateCard(ctx context.Context, c greeting.Card) (greeting.Card, error) {
	repo.cards.mutex.Lock()
	defer repo.cards.mutex.Unlock()

	repo.cards.table[c.ID] = &c
	return c, nil
}

func (repo *greetingRepository) GetCardByID(ctx context.Context, id string) (greeting.Card, error) {
	repo.cards.mutex.RLock()
	defer repo.cards.mutex.RUnlock()

	if c, ok := repo.cards.table[id]; ok {
		return *c, nil
	}
	return greeting.Card{}, greeting.ErrCardNotFound
}

func (repo *greetingRepository) QueryCardsByYear(ctx context.Context, yearID string) ([]greeting.Card, error) {
	repo.cards.mutex.RLock()
	defer repo.cards.mutex.RUnlock()

	var cards []greeting.Card
	for _, c := range repo.cards.table {
		if c.YearID == yearID {
			cards = append(cards, *c)
		}
	}
	return greeting.SortBySequence(cards), nil
}

func (repo *greetingRepository) UpdateCard(ctx context.Context, c greeting.Card) (greeting.Card, error) {
	repo.cards.mutex.Lock()
	defer repo.cards.mutex.Unlock()

	orig, ok := repo.cards.table[c.ID]
	if !ok {
		return greeting.Card{}, greeting.ErrCardNotFound
	}
	c.DisplayOrder = orig.DisplayOrder // orders change only via UpdateCardOrders
	repo.cards.table[c.ID] = &c
	return c, nil
}

func (repo *greetingRepository) DeleteCard(ctx context.Context, id string) error {
	repo.cards.mutex.Lock()
	defer repo.cards.mutex.Unlock()

	if _, ok := repo.cards.table[id]; !ok {
		return greeting.ErrCardNotFound
	}
	delete(repo.cards.table, id)
	return nil
}

func (repo *greetingRepository) UpdateCardOrders(ctx context.Context, yearID string, orders map[string]int) error {
	repo.cards.mutex.Lock()
	defer repo.cards.mutex.Unlock()

	// all or nothing
	for id := range orders {
		c, ok := repo.cards.table[id]
		if !ok || c.YearID != yearID {
			return greeting.ErrCardNotFound
		}
	}
	for id, order := range orders {
		repo.cards.table[id].DisplayOrder = order
	}
	return nil
}
