// Package gormrepo stores the menu catalog in PostgreSQL.
package gormrepo

import (
	"context"

	"github.com/jrsteele09/go-admin-console/catalog"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var errDBUnavailable = errors.New("db unavailable")

// Open connects to PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[gormrepo Open] connect postgres")
	}
	return db, nil
}

type Repo struct {
	db *gorm.DB
}

var (
	_ catalog.Repo   = (*Repo)(nil)
	_ catalog.Writer = (*Repo)(nil)
)

func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Migrate creates or updates the catalog tables.
func (r *Repo) Migrate(ctx context.Context) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).AutoMigrate(&ProgramModel{}, &MenuModel{}, &AuthGroupMenuModel{})
}

func (r *Repo) FindMenu(ctx context.Context, menuID int64) (*catalog.Menu, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model MenuModel
	err := r.db.WithContext(ctx).Preload("Program").First(&model, "menu_id = ?", menuID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "menu %d", menuID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[Repo FindMenu] menu %d", menuID)
	}
	return menuFromModel(&model), nil
}

// CurrentGrant returns the grant of the first group in authGroups that has
// one for menuID.
func (r *Repo) CurrentGrant(ctx context.Context, menuID int64, authGroups []string) (*catalog.AuthGroupMenu, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if len(authGroups) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "grant for menu %d", menuID)
	}

	var models []AuthGroupMenuModel
	err := r.db.WithContext(ctx).
		Where("menu_id = ? AND grp_auth_cd IN ?", menuID, authGroups).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "[Repo CurrentGrant] menu %d", menuID)
	}

	byGroup := make(map[string]*AuthGroupMenuModel, len(models))
	for i := range models {
		byGroup[models[i].GrpAuthCd] = &models[i]
	}
	for _, grp := range authGroups {
		if m, ok := byGroup[grp]; ok {
			return grantFromModel(m), nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "grant for menu %d", menuID)
}

func (r *Repo) AuthorizedMenus(ctx context.Context, menuGrpCd string, authGroups []string) ([]*catalog.Menu, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	db := r.db.WithContext(ctx)

	var models []MenuModel
	err := db.Preload("Program").
		Where("menu_grp_cd = ?", menuGrpCd).
		Order("sort, menu_id").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "[Repo AuthorizedMenus] menu group %s", menuGrpCd)
	}

	granted := make(map[int64]struct{})
	if len(authGroups) > 0 {
		var ids []int64
		err = db.Model(&AuthGroupMenuModel{}).
			Where("grp_auth_cd IN ?", authGroups).
			Distinct().
			Pluck("menu_id", &ids).Error
		if err != nil {
			return nil, errors.Wrapf(err, "[Repo AuthorizedMenus] grants for %v", authGroups)
		}
		for _, id := range ids {
			granted[id] = struct{}{}
		}
	}

	menus := make([]*catalog.Menu, 0, len(models))
	for i := range models {
		menus = append(menus, menuFromModel(&models[i]))
	}
	return catalog.FilterAuthorized(menus, granted), nil
}

func (r *Repo) UpsertProgram(ctx context.Context, p *catalog.Program) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := programToModel(p)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (r *Repo) UpsertMenu(ctx context.Context, m *catalog.Menu) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := menuToModel(m)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (r *Repo) UpsertGrant(ctx context.Context, g *catalog.AuthGroupMenu) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := grantToModel(g)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (r *Repo) DeleteGrant(ctx context.Context, grpAuthCd string, menuID int64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).
		Delete(&AuthGroupMenuModel{}, "grp_auth_cd = ? AND menu_id = ?", grpAuthCd, menuID).Error
	return errors.Wrapf(err, "[Repo DeleteGrant] %s menu %d", grpAuthCd, menuID)
}
