// Package gormrepo stores console accounts in PostgreSQL.
package gormrepo

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errDBUnavailable = errors.New("db unavailable")

const authGroupSeparator = ","

// UserModel is the users table. Auth groups keep their priority order in a
// comma separated column.
type UserModel struct {
	UserCd       string `gorm:"primaryKey;size:64"`
	UserNm       string `gorm:"size:128"`
	PasswordHash string `gorm:"size:128"`
	Email        string `gorm:"size:256"`
	HpNo         string `gorm:"size:32"`
	Locale       string `gorm:"size:16"`
	TimeZone     int
	DateFormat   string `gorm:"size:32"`
	MenuGrpCd    string `gorm:"size:64"`
	AuthGroups   string `gorm:"size:512"`
	UseYn        string `gorm:"size:1;default:Y"`
}

func (UserModel) TableName() string { return "users" }

func userFromModel(m *UserModel) *users.User {
	var groups []string
	if m.AuthGroups != "" {
		groups = strings.Split(m.AuthGroups, authGroupSeparator)
	}
	return &users.User{
		UserCd:       m.UserCd,
		UserNm:       m.UserNm,
		PasswordHash: m.PasswordHash,
		Email:        m.Email,
		HpNo:         m.HpNo,
		Locale:       m.Locale,
		TimeZone:     m.TimeZone,
		DateFormat:   m.DateFormat,
		MenuGrpCd:    m.MenuGrpCd,
		AuthGroups:   groups,
		UseYn:        m.UseYn,
	}
}

func userToModel(u *users.User) UserModel {
	return UserModel{
		UserCd:       u.UserCd,
		UserNm:       u.UserNm,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		HpNo:         u.HpNo,
		Locale:       u.Locale,
		TimeZone:     u.TimeZone,
		DateFormat:   u.DateFormat,
		MenuGrpCd:    u.MenuGrpCd,
		AuthGroups:   strings.Join(u.AuthGroups, authGroupSeparator),
		UseYn:        u.UseYn,
	}
}

type Repo struct {
	db *gorm.DB
}

var _ users.Repo = (*Repo)(nil)

func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Migrate(ctx context.Context) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).AutoMigrate(&UserModel{})
}

func (r *Repo) Upsert(ctx context.Context, user *users.User) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if user == nil || user.UserCd == "" {
		return errors.New("userCd is required")
	}
	model := userToModel(user)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
		return errors.Wrapf(err, "[Repo Upsert] user %s", user.UserCd)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userCd string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Delete(&UserModel{}, "user_cd = ?", userCd)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "[Repo Delete] user %s", userCd)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *Repo) GetByUserCd(ctx context.Context, userCd string) (*users.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "user_cd = ?", userCd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[Repo GetByUserCd] user %s", userCd)
	}
	return userFromModel(&model), nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).Order("user_cd").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []UserModel
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "[Repo List]")
	}
	list := make([]*users.User, 0, len(models))
	for i := range models {
		list = append(list, userFromModel(&models[i]))
	}
	return list, nil
}
