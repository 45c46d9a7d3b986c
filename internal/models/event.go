package models

import (
	"fmt"
	"strings"
)

// Category classifies an event. The remote API transports it as a plain
// string; ParseCategory narrows it on ingress.
type Category string

const (
	CategoryTech   Category = "Tech"
	CategoryMusic  Category = "Music"
	CategorySports Category = "Sports"
	CategoryOther  Category = "Other"
)

// Visibility controls who can see an event.
type Visibility string

const (
	VisibilityPublic  Visibility = "Public"
	VisibilityPrivate Visibility = "Private"
)

// ParseCategory converts a transport string into a Category, rejecting
// anything outside the closed set.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryTech, CategoryMusic, CategorySports, CategoryOther:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ParseVisibility converts a transport string into a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// Event is the canonical persisted representation of one event. The ID is
// assigned by the remote service and immutable afterwards; Date is always a
// calendar date in YYYY-MM-DD form.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Location    string     `json:"location"`
	Category    Category   `json:"category"`
	Visibility  Visibility `json:"visibility"`
	OwnerEmail  string     `json:"ownerEmail"`
}

// Draft is a mutable, not-yet-confirmed edit of an Event, or a new record in
// progress. Fields stay free-form strings while the user types; validation
// narrows them at submit time.
type Draft struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Visibility  string `json:"visibility"`
}

// NewDraft returns an empty draft for the create flow.
func NewDraft() Draft {
	return Draft{Visibility: string(VisibilityPublic)}
}

// DraftFromEvent seeds a draft for the edit flow. The draft is a field-wise
// copy and never aliases the event it was seeded from.
func DraftFromEvent(ev Event) Draft {
	return Draft{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Date:        ev.Date,
		Location:    ev.Location,
		Category:    string(ev.Category),
		Visibility:  string(ev.Visibility),
	}
}

// Patch carries the subset of event fields being changed by an update. Nil
// fields are left untouched on merge.
type Patch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Date        *string     `json:"date,omitempty"`
	Location    *string     `json:"location,omitempty"`
	Category    *Category   `json:"category,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil &&
		p.Location == nil && p.Category == nil && p.Visibility == nil
}

// Apply merges the patch into a copy of ev and returns it.
func (p Patch) Apply(ev Event) Event {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Date != nil {
		ev.Date = *p.Date
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}
	if p.Category != nil {
		ev.Category = *p.Category
	}
	if p.Visibility != nil {
		ev.Visibility = *p.Visibility
	}
	return ev
}

// Diff builds the patch that turns seed into the submitted draft. The draft
// is assumed to have passed validation, so the enum fields parse cleanly.
func Diff(seed Event, d Draft) Patch {
	var p Patch
	if t := strings.TrimSpace(d.Title); t != seed.Title {
		p.Title = &t
	}
	if desc := d.Description; desc != seed.Description {
		p.Description = &desc
	}
	if date := strings.TrimSpace(d.Date); date != seed.Date {
		p.Date = &date
	}
	if loc := strings.TrimSpace(d.Location); loc != seed.Location {
		p.Location = &loc
	}
	if c := Category(d.Category); c != seed.Category {
		p.Category = &c
	}
	if v := Visibility(d.Visibility); v != seed.Visibility {
		p.Visibility = &v
	}
	return p
}
