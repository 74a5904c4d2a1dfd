package greeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLegacyRoster(t *testing.T) {
	ci := ContactInfo{
		Takahiko: &ContactEntry{Name: "Takahiko", Email: "taka@example.com"},
		Itsuki:   &ContactEntry{Name: "Itsuki", Phone: "090-0000-0000"},
	}

	got := ci.Normalize()

	require.Len(t, got.Contacts, 2)
	assert.Equal(t, "Takahiko", got.Contacts[0].Name)
	assert.Equal(t, "Itsuki", got.Contacts[1].Name)
	assert.Equal(t, 2, got.ContactCount)
	// legacy fields survive
	assert.NotNil(t, got.Takahiko)
	assert.NotNil(t, got.Itsuki)
	assert.NotNil(t, got.Home)
}

func TestNormalizePartialLegacyRoster(t *testing.T) {
	ci := ContactInfo{Itsuki: &ContactEntry{Name: "Itsuki", Email: "itsuki@example.com"}}

	got := ci.Normalize()

	require.Len(t, got.Contacts, 2)
	assert.Equal(t, ContactEntry{}, got.Contacts[0])
	assert.Equal(t, "Itsuki", got.Contacts[1].Name)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	ci := ContactInfo{
		Home:     &HomeEntry{Address: "Tokyo"},
		Takahiko: &ContactEntry{Name: "Takahiko", Email: "taka@example.com"},
		Contacts: []ContactEntry{
			{Name: "One", Email: "one@example.com"},
			{Name: "Two", Email: "two@example.com"},
			{Name: "Three", Email: "three@example.com"},
		},
		ContactCount: 3,
	}

	once := ci.Normalize()
	twice := once.Normalize()

	assert.Equal(t, once, twice)
}

func TestNormalizeClampsCount(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"too high", 9, MaxContactCount},
		{"negative", -1, MinContactCount},
		{"in range", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci := ContactInfo{Contacts: []ContactEntry{{}, {}}, ContactCount: tt.count}
			assert.Equal(t, tt.want, ci.Normalize().ContactCount)
		})
	}
}

func TestSetContactCountKeepsSurplusEntries(t *testing.T) {
	ci := ContactInfo{
		Contacts: []ContactEntry{
			{Name: "One", Email: "one@example.com"},
			{Name: "Two", Email: "two@example.com"},
			{Name: "Three", Email: "three@example.com"},
		},
		ContactCount: 3,
	}
	ci = ci.Normalize()

	ci.SetContactCount(1)
	assert.Equal(t, 1, ci.ContactCount)
	require.Len(t, ci.Contacts, 3) // data is not destroyed

	ci.SetContactCount(3)
	assert.Equal(t, "Three", ci.Contacts[2].Name)
}

func TestSetContactCountPads(t *testing.T) {
	ci := ContactInfo{}.Normalize()

	ci.SetContactCount(5)

	assert.Equal(t, 5, ci.ContactCount)
	assert.Len(t, ci.Contacts, 5)
}

func TestRenderableFiltersIneligibleEntries(t *testing.T) {
	ci := ContactInfo{
		Home: &HomeEntry{}, // no address nor phone
		Contacts: []ContactEntry{
			{Name: "Reachable", Email: "r@example.com"},
			{Name: "NameOnly"}, // no channel, dropped
			{Name: "Phoned", Phone: "090-1111-2222"},
		},
		ContactCount: 3,
	}

	rv := ci.Renderable(false, LocaleBase)

	assert.Nil(t, rv.Home)
	require.Len(t, rv.Contacts, 2)
	assert.Equal(t, "Reachable", rv.Contacts[0].Name)
	assert.Equal(t, "Phoned", rv.Contacts[1].Name)
}

func TestRenderableHonorsDeclaredCount(t *testing.T) {
	ci := ContactInfo{
		Contacts: []ContactEntry{
			{Name: "One", Email: "one@example.com"},
			{Name: "Two", Email: "two@example.com"},
			{Name: "Three", Email: "three@example.com"},
		},
		ContactCount: 2,
	}

	rv := ci.Renderable(false, LocaleBase)

	require.Len(t, rv.Contacts, 2)
	assert.Equal(t, "Two", rv.Contacts[1].Name)
}

func TestRenderableEnglishNames(t *testing.T) {
	ci := ContactInfo{
		Home: &HomeEntry{Address: "東京都", Phone: "03-0000-0000"},
		Contacts: []ContactEntry{
			{Name: "隆彦", Email: "taka@example.com"},
			{Name: "樹", Email: "itsuki@example.com"},
		},
		ContactCount: 2,
		HomeEn:       &HomeEntryEn{Address: "Tokyo"},
		ContactsEn:   []ContactEntryEn{{Name: "Takahiko"}},
	}

	rv := ci.Renderable(true, LocaleEnglish)

	require.NotNil(t, rv.Home)
	assert.Equal(t, "Tokyo", rv.Home.Address)
	require.Len(t, rv.Contacts, 2)
	assert.Equal(t, "Takahiko", rv.Contacts[0].Name)
	assert.Equal(t, "樹", rv.Contacts[1].Name) // no translation, base name stands
}

func TestRenderableEmpty(t *testing.T) {
	rv := ContactInfo{}.Renderable(false, LocaleBase)
	assert.True(t, rv.Empty())
}
