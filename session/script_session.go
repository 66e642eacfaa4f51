package session

import (
	"strings"

	"github.com/jrsteele09/go-admin-console/users"
)

// ScriptSession is the view of the session exposed to page scripts.
type ScriptSession struct {
	UserCd     string `json:"userCd"`
	UserNm     string `json:"userNm"`
	Email      string `json:"email,omitempty"`
	Locale     string `json:"locale,omitempty"`
	TimeZone   int    `json:"timeZone"`
	DateFormat string `json:"dateFormat"`
	MenuGrpCd  string `json:"menuGrpCd"`
	Login      bool   `json:"login"`
}

// NewScriptSession builds the script view of user. The date format is upper
// cased for the client-side date library.
func NewScriptSession(user users.SessionUser) ScriptSession {
	return ScriptSession{
		UserCd:     user.UserCd,
		UserNm:     user.UserNm,
		Email:      user.Email,
		Locale:     user.Locale,
		TimeZone:   user.TimeZone,
		DateFormat: strings.ToUpper(user.DateFormat),
		MenuGrpCd:  user.MenuGrpCd,
		Login:      true,
	}
}

// NoLoginSession is the placeholder rendered for anonymous requests.
func NoLoginSession() ScriptSession {
	return ScriptSession{
		DateFormat: "YYYY-MM-DD",
		Login:      false,
	}
}
