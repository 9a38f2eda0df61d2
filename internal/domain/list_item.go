package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rating bounds. UnratedRating marks an item the owner has not rated yet.
const (
	UnratedRating = -1
	MaxRating     = 5
)

// List item validation errors
var (
	ErrEmptyListItemID   = errors.New("list item ID cannot be empty")
	ErrEmptyOwnerID      = errors.New("list item owner ID cannot be empty")
	ErrEmptyBookID       = errors.New("list item book ID cannot be empty")
	ErrInvalidRating     = errors.New("rating must be between -1 and 5")
	ErrFinishBeforeStart = errors.New("finishDate cannot be before startDate")
)

// storedTime normalizes t to UTC at the microsecond precision list item
// timestamps are persisted with, so an item reads back exactly as written.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Owned is implemented by resources that belong to exactly one user.
type Owned interface {
	GetOwnerID() string
}

// ListItem associates a user with a book they are reading or have read.
// OwnerID never changes after creation.
type ListItem struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"ownerId"`
	BookID     string     `json:"bookId"`
	Notes      string     `json:"notes"`
	Rating     int        `json:"rating"`
	StartDate  time.Time  `json:"startDate"`
	FinishDate *time.Time `json:"finishDate"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}

var _ Owned = (*ListItem)(nil)

// NewListItem creates an unrated list item for ownerID and bookID,
// started now.
func NewListItem(ownerID, bookID string) (*ListItem, error) {
	now := storedTime(time.Now())
	item := &ListItem{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		BookID:    bookID,
		Rating:    UnratedRating,
		StartDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// GetOwnerID implements Owned.
func (li *ListItem) GetOwnerID() string {
	return li.OwnerID
}

// Validate checks if the ListItem has valid data.
func (li *ListItem) Validate() error {
	if li.ID == "" {
		return ErrEmptyListItemID
	}
	if li.OwnerID == "" {
		return ErrEmptyOwnerID
	}
	if li.BookID == "" {
		return ErrEmptyBookID
	}
	if li.Rating < UnratedRating || li.Rating > MaxRating {
		return ErrInvalidRating
	}
	if li.FinishDate != nil && li.FinishDate.Before(li.StartDate) {
		return ErrFinishBeforeStart
	}
	return nil
}

// Apply returns a copy of li with the fields present in update merged in.
// The copy is validated; li itself is never modified.
func (li *ListItem) Apply(update ListItemUpdate) (*ListItem, error) {
	updated := *li
	if update.BookID != nil {
		updated.BookID = *update.BookID
	}
	if update.Notes != nil {
		updated.Notes = *update.Notes
	}
	if update.Rating != nil {
		updated.Rating = *update.Rating
	}
	if update.StartDate != nil {
		updated.StartDate = storedTime(*update.StartDate)
	}
	if update.FinishDate.Set {
		updated.FinishDate = nil
		if update.FinishDate.Time != nil {
			finish := storedTime(*update.FinishDate.Time)
			updated.FinishDate = &finish
		}
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	updated.UpdatedAt = storedTime(time.Now())
	return &updated, nil
}

// ListItemUpdate is a partial update of a list item. Nil fields are left
// unchanged. It has no owner field.
type ListItemUpdate struct {
	BookID     *string    `json:"bookId,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	Rating     *int       `json:"rating,omitempty"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	FinishDate NullTime   `json:"finishDate"`
}

// IsEmpty reports whether the update changes nothing.
func (u ListItemUpdate) IsEmpty() bool {
	return u.BookID == nil && u.Notes == nil && u.Rating == nil &&
		u.StartDate == nil && !u.FinishDate.Set
}

// NullTime distinguishes an absent JSON field from an explicit null.
// Set is true whenever the field appeared in the payload.
type NullTime struct {
	Set  bool
	Time *time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	t = storedTime(t)
	n.Time = &t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullTime) MarshalJSON() ([]byte, error) {
	if n.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}

// ListItemWithBook is the response view of a list item joined with its
// book. Book is nil when the referenced book could not be found.
type ListItemWithBook struct {
	ListItem
	Book *Book `json:"book"`
}

// JoinBook builds the response view of li with book.
func JoinBook(li *ListItem, book *Book) *ListItemWithBook {
	return &ListItemWithBook{ListItem: *li, Book: book}
}
