package users

import "context"

type Repo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, userCd string) error
	GetByUserCd(ctx context.Context, userCd string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
}
