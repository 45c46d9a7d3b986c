// Package validate holds the pure checks run against a draft before any
// create or update submission. Nothing here performs I/O.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eventhub/event-gateway/internal/models"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsWellFormedDate reports whether s is a real calendar date in YYYY-MM-DD
// form. Overflowed dates such as 2024-02-30 construct a different day when
// fed through time.Date, so the round-trip comparison rejects them.
func IsWellFormedDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	parts := strings.SplitN(s, "-", 3)
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && d.Month() == time.Month(month) && d.Day() == day
}

// CheckDraft validates a draft for submission. It returns a
// *models.ValidationError naming the first offending field, or nil when the
// draft is complete and well formed.
func CheckDraft(d models.Draft) *models.ValidationError {
	if strings.TrimSpace(d.Title) == "" {
		return &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.Date) == "" {
		return &models.ValidationError{Field: "date", Reason: "must not be empty"}
	}
	if !IsWellFormedDate(strings.TrimSpace(d.Date)) {
		return &models.ValidationError{Field: "date", Reason: "must be a valid date in YYYY-MM-DD form"}
	}
	if strings.TrimSpace(d.Location) == "" {
		return &models.ValidationError{Field: "location", Reason: "must not be empty"}
	}
	if _, err := models.ParseCategory(d.Category); err != nil {
		return &models.ValidationError{Field: "category", Reason: "must be one of Tech, Music, Sports, Other"}
	}
	if _, err := models.ParseVisibility(d.Visibility); err != nil {
		return &models.ValidationError{Field: "visibility", Reason: "must be Public or Private"}
	}
	return nil
}
