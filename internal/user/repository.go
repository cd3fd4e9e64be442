package user

import "context"

// Repository persists users.
type Repository interface {
	// Save inserts or updates u. Duplicate usernames return ErrUsernameTaken.
	Save(ctx context.Context, u *User) error
	// FindByID returns a *NotFoundError for unknown ids.
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByUsername returns a *NotFoundError for unknown names.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// List returns every user ordered by username.
	List(ctx context.Context) ([]*User, error)
}
