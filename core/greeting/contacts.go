package greeting

const (
	MinContactCount = 1
	MaxContactCount = 5
)

// eligible contacts carry at least one reachable channel.
func (e ContactEntry) eligible() bool { return e.Email != "" || e.Phone != "" }

// eligible home entries carry an address or a phone number.
func (h HomeEntry) eligible() bool { return h.Address != "" || h.Phone != "" }

func clampCount(n int) int {
	if n < MinContactCount {
		return MinContactCount
	}
	if n > MaxContactCount {
		return MaxContactCount
	}
	return n
}

// Normalize returns a canonical copy of the roster. Pages saved before
// the Contacts array existed carried exactly the fixed Takahiko/Itsuki
// pair; those entries are lifted into slots 0 and 1 of Contacts, padded
// with empty entries up to two slots. Legacy fields and out-of-range
// slots are preserved verbatim so normalizing never loses data, and
// normalizing an already-canonical roster is the identity.
func (ci ContactInfo) Normalize() ContactInfo {
	out := ci
	if out.Home == nil {
		out.Home = &HomeEntry{}
	}
	if out.Contacts == nil {
		out.Contacts = make([]ContactEntry, 2)
		if ci.Takahiko != nil {
			out.Contacts[0] = *ci.Takahiko
		}
		if ci.Itsuki != nil {
			out.Contacts[1] = *ci.Itsuki
		}
	}
	if out.ContactCount == 0 {
		out.ContactCount = len(out.Contacts)
	}
	out.ContactCount = clampCount(out.ContactCount)
	return out
}

// SetContactCount updates the declared slot count on a normalized
// roster. Growing pads Contacts with empty entries; shrinking only
// lowers the count and keeps the surplus entries in storage, so a later
// grow restores them.
func (ci *ContactInfo) SetContactCount(n int) {
	n = clampCount(n)
	for len(ci.Contacts) < n {
		ci.Contacts = append(ci.Contacts, ContactEntry{})
	}
	ci.ContactCount = n
}

// englishName returns the translated display name for slot i, falling
// back to the base name.
func (ci ContactInfo) englishName(i int) string {
	if i < len(ci.ContactsEn) && ci.ContactsEn[i].Name != "" {
		return ci.ContactsEn[i].Name
	}
	return ci.Contacts[i].Name
}

type (
	// HomeView is the postal block as rendered on the public page.
	HomeView struct {
		Address string
		Phone   string
	}

	// ContactView is one rendered roster row.
	ContactView struct {
		Name  string
		Email string
		Phone string
	}

	// RosterView is what the page template consumes: only eligible
	// entries within the declared count survive.
	RosterView struct {
		Home     *HomeView
		Contacts []ContactView
	}
)

// Empty reports whether the contact section should be omitted entirely.
func (rv RosterView) Empty() bool { return rv.Home == nil && len(rv.Contacts) == 0 }

// Renderable projects the roster for display: it considers the first
// ContactCount slots, drops the ineligible ones, and localizes names and
// the home address when the english variant is requested.
func (ci ContactInfo) Renderable(englishEnabled bool, loc Locale) RosterView {
	ci = ci.Normalize()
	var rv RosterView

	if ci.Home.eligible() {
		hv := HomeView{Address: ci.Home.Address, Phone: ci.Home.Phone}
		if loc == LocaleEnglish && englishEnabled && ci.HomeEn != nil && ci.HomeEn.Address != "" {
			hv.Address = ci.HomeEn.Address
		}
		rv.Home = &hv
	}

	count := ci.ContactCount
	if count > len(ci.Contacts) {
		count = len(ci.Contacts)
	}
	for i := 0; i < count; i++ {
		entry := ci.Contacts[i]
		if !entry.eligible() {
			continue
		}
		name := entry.Name
		if loc == LocaleEnglish && englishEnabled {
			name = ci.englishName(i)
		}
		rv.Contacts = append(rv.Contacts, ContactView{Name: name, Email: entry.Email, Phone: entry.Phone})
	}
	return rv
}
