// Package messages holds the user-facing copy of reminder and expiry
// notifications.
package messages

import (
	"fmt"
	"strings"
)

// Locale selects a copy catalog.
type Locale string

const (
	LocaleIT Locale = "it"
	LocaleEN Locale = "en"

	// DefaultLocale is used for unknown locales.
	DefaultLocale = LocaleIT
)

type catalog struct {
	reminderTitle, reminderBody string
	expiryTitle, expiryBody     string
}

var catalogs = map[Locale]catalog{
	LocaleIT: {ReminderTitleIT, ReminderBodyIT, ExpiryTitleIT, ExpiryBodyIT},
	LocaleEN: {ReminderTitleEN, ReminderBodyEN, ExpiryTitleEN, ExpiryBodyEN},
}

func lookup(l Locale) catalog {
	if c, ok := catalogs[Locale(strings.ToLower(string(l)))]; ok {
		return c
	}
	return catalogs[DefaultLocale]
}

// ─── Builders ────────────────────────────────────────────────────────────────

// Reminder returns the title and body of the one-week-ahead notification.
func Reminder(l Locale, itemName string) (string, string) {
	c := lookup(l)
	return fmt.Sprintf(c.reminderTitle, itemName), fmt.Sprintf(c.reminderBody, strings.ToLower(itemName))
}

// Expiry returns the title and body of the replacement-day notification.
func Expiry(l Locale, itemName string) (string, string) {
	c := lookup(l)
	return fmt.Sprintf(c.expiryTitle, itemName), fmt.Sprintf(c.expiryBody, strings.ToLower(itemName))
}
