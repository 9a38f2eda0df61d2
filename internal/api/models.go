package api

import (
	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// CredentialsRequest is the payload of register and login. Blank fields are
// reported by the user service so the messages match across both routes.
type CredentialsRequest struct {
	Username string `json:"username" validate:"max=64"`
	Password string `json:"password" validate:"max=72"`
}

// UserResponse is the public view of an authenticated user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// UserEnvelope wraps UserResponse as {"user": ...}.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// CreateListItemRequest is the payload of POST /list-items.
type CreateListItemRequest struct {
	BookID string `json:"bookId"`
}

// ListItemEnvelope wraps a single list item as {"listItem": ...}.
type ListItemEnvelope struct {
	ListItem *domain.ListItemWithBook `json:"listItem"`
}

// ListItemsEnvelope wraps a list as {"listItems": [...]}.
type ListItemsEnvelope struct {
	ListItems []*domain.ListItemWithBook `json:"listItems"`
}

// SuccessResponse is the body of a successful delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

func newUserEnvelope(user *domain.User, token string) UserEnvelope {
	return UserEnvelope{User: UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	}}
}
