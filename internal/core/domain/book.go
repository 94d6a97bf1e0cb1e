package domain

import (
	"fmt"
	"time"
)

// Book is a catalog entry. Copies are tracked only as a total/available pair.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	Category        string    `json:"category,omitempty"`
	Description     string    `json:"description,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	// DeletedAt is set once the book is withdrawn from the catalog. Its loans
	// stay on record.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (b *Book) IsAvailable() bool { return b.AvailableCopies > 0 }

// AdjustAvailability applies delta to the available count, keeping it within
// [0, TotalCopies].
func (b *Book) AdjustAvailability(delta int) error {
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return fmt.Errorf("%w: book %d available %d%+d (total %d)", ErrInventory, b.ID, b.AvailableCopies, delta, b.TotalCopies)
	}
	b.AvailableCopies = next
	return nil
}

// Resize moves the available count by the same amount as the total, never
// below zero. Copies already out on loan are not re-counted.
func (b *Book) Resize(newTotal int) error {
	if newTotal < 0 {
		return fmt.Errorf("%w: total copies must be >= 0", ErrValidation)
	}
	b.AvailableCopies = max(0, b.AvailableCopies+(newTotal-b.TotalCopies))
	b.TotalCopies = newTotal
	return nil
}
