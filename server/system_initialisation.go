package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/go-admin-console/catalog"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

const (
	SystemUserCd    = "system"
	SystemAuthGroup = "S0001"
	SystemMenuGroup = "SYSTEM_MANAGER"
)

// InitialiseSystem creates the system user when it does not exist yet and,
// when catalogWriter is set, seeds the console menus. It returns the
// password generated for a new system user, or "" when the user already
// existed or password was supplied.
func InitialiseSystem(ctx context.Context, userRepo users.Repo, catalogWriter catalog.Writer, password string) (generatedPassword string, err error) {
	generatedPassword, err = createSystemUser(ctx, userRepo, password)
	if err != nil {
		return "", fmt.Errorf("[server InitialiseSystem] failed to bootstrap system user: %w", err)
	}

	if catalogWriter != nil {
		if err := seedCatalog(ctx, catalogWriter); err != nil {
			return "", fmt.Errorf("[server InitialiseSystem] failed to seed catalog: %w", err)
		}
	}

	if generatedPassword != "" {
		log.Warn().
			Str("userCd", SystemUserCd).
			Str("password", generatedPassword).
			Msg("created system user with a generated password; set ADMIN_BOOTSTRAP_PASSWORD to choose one")
	}
	return generatedPassword, nil
}

func createSystemUser(ctx context.Context, userRepo users.Repo, password string) (string, error) {
	_, err := userRepo.GetByUserCd(ctx, SystemUserCd)
	if err == nil {
		log.Info().Str("userCd", SystemUserCd).Msg("system user already exists")
		return "", nil
	}
	if !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return "", err
	}

	var generated string
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[server createSystemUser] failed to generate password: %w", err)
		}
		generated = base64.RawURLEncoding.EncodeToString(passwordBytes)
		password = generated
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[server createSystemUser] failed to hash password: %w", err)
	}

	systemUser := &users.User{
		UserCd:       SystemUserCd,
		UserNm:       "System Administrator",
		PasswordHash: passwordHash,
		Locale:       "en_US",
		DateFormat:   "yyyy-mm-dd",
		MenuGrpCd:    SystemMenuGroup,
		AuthGroups:   []string{SystemAuthGroup},
		UseYn:        users.UsedYes,
	}
	if err := userRepo.Upsert(ctx, systemUser); err != nil {
		return "", fmt.Errorf("[server createSystemUser] failed to create system user: %w", err)
	}
	return generated, nil
}

func seedCatalog(ctx context.Context, w catalog.Writer) error {
	programs := []*catalog.Program{
		{ProgCd: "main", ProgNm: "Home", ProgPh: "/pages/main", AuthCheck: "N", Remark: "Console home"},
		{ProgCd: "system-menu", ProgNm: "Menus", ProgPh: "/pages/system/system-menu", AuthCheck: catalog.AuthCheckEnabled, Remark: "Menu and menu group management"},
		{ProgCd: "system-program", ProgNm: "Programs", ProgPh: "/pages/system/system-program", AuthCheck: catalog.AuthCheckEnabled, Remark: "Program registry"},
		{ProgCd: "system-user", ProgNm: "Users", ProgPh: "/pages/system/system-user", AuthCheck: catalog.AuthCheckEnabled, Remark: "Console users and authorization groups"},
		{ProgCd: "notice", ProgNm: "Notices", ProgPh: "/pages/board/notice", AuthCheck: "N", Remark: "Notice board"},
	}
	for _, p := range programs {
		if err := w.UpsertProgram(ctx, p); err != nil {
			return err
		}
	}

	menus := []*catalog.Menu{
		{MenuID: 1, MenuGrpCd: SystemMenuGroup, MenuNm: "Home", Sort: 0, ProgCd: "main"},
		{MenuID: 100, MenuGrpCd: SystemMenuGroup, MenuNm: "System", Sort: 1},
		{MenuID: 101, MenuGrpCd: SystemMenuGroup, MenuNm: "Menus", ParentID: utils.Ptr(int64(100)), Level: 1, Sort: 1, ProgCd: "system-menu"},
		{MenuID: 102, MenuGrpCd: SystemMenuGroup, MenuNm: "Programs", ParentID: utils.Ptr(int64(100)), Level: 1, Sort: 2, ProgCd: "system-program"},
		{MenuID: 103, MenuGrpCd: SystemMenuGroup, MenuNm: "Users", ParentID: utils.Ptr(int64(100)), Level: 1, Sort: 3, ProgCd: "system-user"},
		{MenuID: 200, MenuGrpCd: SystemMenuGroup, MenuNm: "Board", Sort: 2},
		{MenuID: 201, MenuGrpCd: SystemMenuGroup, MenuNm: "Notices", ParentID: utils.Ptr(int64(200)), Level: 1, Sort: 1, ProgCd: "notice"},
	}
	for _, m := range menus {
		if err := w.UpsertMenu(ctx, m); err != nil {
			return err
		}
	}

	for _, m := range menus {
		if m.ProgCd == "" || m.ProgCd == "notice" || m.ProgCd == "main" {
			continue
		}
		grant := &catalog.AuthGroupMenu{
			GrpAuthCd: SystemAuthGroup,
			MenuID:    m.MenuID,
			ProgCd:    m.ProgCd,
			SchAh:     users.UsedYes,
			SavAh:     users.UsedYes,
			ExlAh:     users.UsedYes,
			DelAh:     users.UsedYes,
			Fn1Ah:     users.UsedYes,
			Fn2Ah:     users.UsedYes,
		}
		if err := w.UpsertGrant(ctx, grant); err != nil {
			return err
		}
	}
	return nil
}
