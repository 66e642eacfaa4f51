package fakeuserrepo

import (
	"context"
	"errors"
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users map[string]*users.User // userCd -> user
	lock  sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	if user == nil || user.UserCd == "" {
		return errors.New("userCd is required")
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	stored := *user
	stored.AuthGroups = append([]string(nil), user.AuthGroups...)
	ur.users[user.UserCd] = &stored
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, userCd string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.users[userCd]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(ur.users, userCd)
	return nil
}

func (ur *FakeUserRepo) GetByUserCd(_ context.Context, userCd string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[userCd]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (ur *FakeUserRepo) List(_ context.Context, offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, v)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].UserCd < userList[j].UserCd
	})

	if offset >= len(userList) {
		return []*users.User{}, nil
	}
	end := len(userList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return userList[offset:end], nil
}
