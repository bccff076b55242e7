package user

import "context"

type Repo interface {
	// Register inserts the user. A second registration of the same id fails with a conflict.
	Register(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
}
