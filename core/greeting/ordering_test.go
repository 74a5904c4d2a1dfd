package greeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardsWithOrders(orders ...int) []Card {
	names := []string{"A", "B", "C", "D", "E", "F"}
	cards := make([]Card, len(orders))
	for i, o := range orders {
		cards[i] = Card{ID: names[i], Title: names[i], DisplayOrder: o}
	}
	return cards
}

func sequenceIDs(seq []Card) []string {
	ids := make([]string, len(seq))
	for i, c := range seq {
		ids[i] = c.ID
	}
	return ids
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name        string
		orders      []int
		cardID      string
		toRank      int
		wantSeq     []string
		wantChanged map[string]int
	}{
		{
			name:        "move last to front",
			orders:      []int{0, 1, 2},
			cardID:      "C",
			toRank:      0,
			wantSeq:     []string{"C", "A", "B"},
			wantChanged: map[string]int{"C": 0, "A": 1, "B": 2},
		},
		{
			name:        "move front to last",
			orders:      []int{0, 1, 2},
			cardID:      "A",
			toRank:      2,
			wantSeq:     []string{"B", "C", "A"},
			wantChanged: map[string]int{"B": 0, "C": 1, "A": 2},
		},
		{
			name:        "move to same rank is a no-op",
			orders:      []int{0, 1, 2},
			cardID:      "B",
			toRank:      1,
			wantSeq:     []string{"A", "B", "C"},
			wantChanged: map[string]int{},
		},
		{
			name:        "target below zero is a no-op",
			orders:      []int{0, 1, 2},
			cardID:      "B",
			toRank:      -3,
			wantSeq:     []string{"A", "B", "C"},
			wantChanged: map[string]int{},
		},
		{
			name:        "target past end is a no-op",
			orders:      []int{0, 1, 2},
			cardID:      "B",
			toRank:      99,
			wantSeq:     []string{"A", "B", "C"},
			wantChanged: map[string]int{},
		},
		{
			name:        "sparse orders are treated by rank and made dense",
			orders:      []int{3, 7, 12},
			cardID:      "C",
			toRank:      0,
			wantSeq:     []string{"C", "A", "B"},
			wantChanged: map[string]int{"C": 0, "A": 1, "B": 2},
		},
		{
			name:        "single card",
			orders:      []int{0},
			cardID:      "A",
			toRank:      5,
			wantSeq:     []string{"A"},
			wantChanged: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, changed, ok := Reorder(cardsWithOrders(tt.orders...), tt.cardID, tt.toRank)
			require.True(t, ok)
			assert.Equal(t, tt.wantSeq, sequenceIDs(seq))
			assert.Equal(t, tt.wantChanged, changed)
			for i, c := range seq {
				assert.Equal(t, i, c.DisplayOrder)
			}
		})
	}
}

func TestReorderUnknownCard(t *testing.T) {
	_, _, ok := Reorder(cardsWithOrders(0, 1), "nope", 0)
	assert.False(t, ok)
}

func TestReorderBy(t *testing.T) {
	tests := []struct {
		name    string
		orders  []int
		cardID  string
		delta   int
		wantSeq []string
	}{
		{"move up", []int{0, 1, 2}, "C", -1, []string{"A", "C", "B"}},
		{"move down", []int{0, 1, 2}, "A", 1, []string{"B", "A", "C"}},
		{"move up at front clamps", []int{0, 1, 2}, "A", -1, []string{"A", "B", "C"}},
		{"move down at end clamps", []int{0, 1, 2}, "C", 1, []string{"A", "B", "C"}},
		{"big delta clamps", []int{0, 1, 2}, "A", 10, []string{"B", "C", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, _, ok := ReorderBy(cardsWithOrders(tt.orders...), tt.cardID, tt.delta)
			require.True(t, ok)
			assert.Equal(t, tt.wantSeq, sequenceIDs(seq))
		})
	}
}

func TestRenumberClosesGaps(t *testing.T) {
	seq := SortBySequence(cardsWithOrders(0, 2, 5)) // as after deleting cards
	changed := Renumber(seq)

	assert.Equal(t, map[string]int{"B": 1, "C": 2}, changed)
	for i, c := range seq {
		assert.Equal(t, i, c.DisplayOrder)
	}
}

func TestSortBySequenceIsStableOnTies(t *testing.T) {
	cards := []Card{
		{ID: "A", DisplayOrder: 1},
		{ID: "B", DisplayOrder: 1},
		{ID: "C", DisplayOrder: 0},
	}
	assert.Equal(t, []string{"C", "A", "B"}, sequenceIDs(SortBySequence(cards)))
}

func TestNextOrder(t *testing.T) {
	assert.Equal(t, 0, NextOrder(nil))
	assert.Equal(t, 3, NextOrder(cardsWithOrders(0, 1, 2)))
}
