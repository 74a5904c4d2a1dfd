package greeting

import "sort"

// Cards are ordered by rank, never by the literal DisplayOrder values:
// the display sequence is cards sorted ascending by DisplayOrder, and a
// card's rank is its index in that sequence. Sparse or duplicated stored
// values therefore cannot corrupt a move, and every mutation renumbers
// the sequence back to dense 0..N-1.

// SortBySequence returns the cards in display sequence. The sort is
// stable so equal DisplayOrder values keep their incoming relative order.
func SortBySequence(cards []Card) []Card {
	seq := make([]Card, len(cards))
	copy(seq, cards)
	sort.SliceStable(seq, func(i, j int) bool { return seq[i].DisplayOrder < seq[j].DisplayOrder })
	return seq
}

// rankOf returns the card's index within the display sequence, or -1.
func rankOf(seq []Card, cardID string) int {
	for i, c := range seq {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func clampRank(rank, n int) int {
	if rank < 0 {
		return 0
	}
	if rank > n-1 {
		return n - 1
	}
	return rank
}

// moveRank removes the element at from and re-inserts it at to.
func moveRank(seq []Card, from, to int) []Card {
	out := make([]Card, 0, len(seq))
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)
	out = append(out[:to], append([]Card{seq[from]}, out[to:]...)...)
	return out
}

// Renumber assigns dense 0..N-1 orders to the sequence and reports
// the cards whose DisplayOrder changed, keyed by card ID.
func Renumber(seq []Card) map[string]int {
	changed := make(map[string]int)
	for i := range seq {
		if seq[i].DisplayOrder != i {
			seq[i].DisplayOrder = i
			changed[seq[i].ID] = i
		}
	}
	return changed
}

// Reorder moves the identified card to the target rank and renumbers the
// whole sequence. A target outside [0, N-1] leaves the sequence untouched.
// It returns the new sequence plus the changed orders; an empty map means
// the move was a no-op. ok is false when the card is not part of cards.
func Reorder(cards []Card, cardID string, toRank int) (seq []Card, changed map[string]int, ok bool) {
	seq = SortBySequence(cards)
	from := rankOf(seq, cardID)
	if from < 0 {
		return nil, nil, false
	}
	if toRank < 0 || toRank > len(seq)-1 {
		return seq, map[string]int{}, true
	}
	if toRank != from {
		seq = moveRank(seq, from, toRank)
	}
	return seq, Renumber(seq), true
}

// ReorderBy moves the identified card by a relative number of ranks. The
// target is clamped to the ends, so over-long deltas still reach the edge.
func ReorderBy(cards []Card, cardID string, delta int) (seq []Card, changed map[string]int, ok bool) {
	from := rankOf(SortBySequence(cards), cardID)
	if from < 0 {
		return nil, nil, false
	}
	return Reorder(cards, cardID, clampRank(from+delta, len(cards)))
}

// NextOrder returns the rank a newly created card takes: the end of the
// sequence.
func NextOrder(cards []Card) int {
	return len(cards)
}
