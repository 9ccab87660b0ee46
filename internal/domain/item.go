package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Category groups catalog items.
type Category string

const (
	CategoryPersonalCare Category = "igiene_personale"
	CategoryKitchen      Category = "cucina"
	CategoryBathroom     Category = "bagno"
)

// Item is an activated catalog entry as delivered by the item store.
// ExpiredAt is computed upstream (CreatedAt + DurationDays) and trusted as-is.
type Item struct {
	Name         string    `json:"name" validate:"required"`
	Owner        string    `json:"owner" validate:"required"`
	DurationDays int       `json:"duration_days" validate:"min=1"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiredAt    time.Time `json:"expired_at"`

	// Display metadata, carried through untouched.
	Category    Category `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Link        string   `json:"link,omitempty"`
}

var validate = validator.New()

// Validate checks the fields the scheduler relies on.
func (i Item) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return nil
}

// HasExpiry reports whether the upstream store supplied an expiry timestamp.
func (i Item) HasExpiry() bool {
	return !i.ExpiredAt.IsZero()
}
