package users

import (
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Used flag values shared by users, programs and grants.
const (
	UsedYes = "Y"
	UsedNo  = "N"
)

const defaultDateFormat = "yyyy-mm-dd"

// User is the persisted console account.
type User struct {
	UserCd       string   `json:"userCd"`          // Login id, unique
	UserNm       string   `json:"userNm"`          // Display name
	PasswordHash string   `json:"-"`               // bcrypt hash - never serialize
	Email        string   `json:"email,omitempty"` // Contact address
	HpNo         string   `json:"hpNo,omitempty"`  // Mobile number
	Locale       string   `json:"locale,omitempty"`
	TimeZone     int      `json:"timeZone,omitempty"` // Offset in minutes
	DateFormat   string   `json:"dateFormat,omitempty"`
	MenuGrpCd    string   `json:"menuGrpCd"`  // Menu group the user navigates
	AuthGroups   []string `json:"authGroups"` // Authorization group codes, in priority order
	UseYn        string   `json:"useYn"`      // Y when the account may log in
}

// SessionUser is the identity carried inside the session token. It is
// self-contained: resolving a request never reloads it from the user store.
type SessionUser struct {
	UserCd        string   `json:"userCd"`
	UserNm        string   `json:"userNm"`
	Email         string   `json:"email,omitempty"`
	Locale        string   `json:"locale,omitempty"`
	TimeZone      int      `json:"timeZone,omitempty"`
	DateFormat    string   `json:"dateFormat,omitempty"`
	MenuGrpCd     string   `json:"menuGrpCd"`
	AuthGroupList []string `json:"authGroupList"`
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return strings.EqualFold(u.UseYn, UsedYes)
}

// SessionUser projects the account onto the token payload.
func (u *User) SessionUser() SessionUser {
	dateFormat := u.DateFormat
	if dateFormat == "" {
		dateFormat = defaultDateFormat
	}
	return SessionUser{
		UserCd:        u.UserCd,
		UserNm:        u.UserNm,
		Email:         u.Email,
		Locale:        u.Locale,
		TimeZone:      u.TimeZone,
		DateFormat:    dateFormat,
		MenuGrpCd:     u.MenuGrpCd,
		AuthGroupList: slices.Clone(u.AuthGroups),
	}
}

// HasAuthGroup reports whether the session user is a member of grpAuthCd.
func (s SessionUser) HasAuthGroup(grpAuthCd string) bool {
	return slices.Contains(s.AuthGroupList, grpAuthCd)
}

// Equal compares every identity field, including group order.
func (s SessionUser) Equal(other SessionUser) bool {
	return s.UserCd == other.UserCd &&
		s.UserNm == other.UserNm &&
		s.Email == other.Email &&
		s.Locale == other.Locale &&
		s.TimeZone == other.TimeZone &&
		s.DateFormat == other.DateFormat &&
		s.MenuGrpCd == other.MenuGrpCd &&
		slices.Equal(s.AuthGroupList, other.AuthGroupList)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks password against the account's stored hash.
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
