package gormrepo

import "github.com/jrsteele09/go-admin-console/catalog"

type ProgramModel struct {
	ProgCd    string `gorm:"column:prog_cd;primaryKey"`
	ProgNm    string `gorm:"column:prog_nm;not null"`
	ProgPh    string `gorm:"column:prog_ph"`
	AuthCheck string `gorm:"column:auth_check;size:1;not null;default:N"`
	Remark    string `gorm:"column:remark"`
}

func (ProgramModel) TableName() string { return "programs" }

type MenuModel struct {
	MenuID    int64         `gorm:"column:menu_id;primaryKey;autoIncrement:false"`
	MenuGrpCd string        `gorm:"column:menu_grp_cd;index;not null"`
	MenuNm    string        `gorm:"column:menu_nm;not null"`
	ParentID  *int64        `gorm:"column:parent_id;index"`
	Level     int           `gorm:"column:level"`
	Sort      int           `gorm:"column:sort"`
	ProgCd    *string       `gorm:"column:prog_cd"`
	Program   *ProgramModel `gorm:"foreignKey:ProgCd;references:ProgCd"`
}

func (MenuModel) TableName() string { return "menus" }

type AuthGroupMenuModel struct {
	GrpAuthCd string `gorm:"column:grp_auth_cd;primaryKey"`
	MenuID    int64  `gorm:"column:menu_id;primaryKey;autoIncrement:false"`
	ProgCd    string `gorm:"column:prog_cd"`
	SchAh     string `gorm:"column:sch_ah;size:1"`
	SavAh     string `gorm:"column:sav_ah;size:1"`
	ExlAh     string `gorm:"column:exl_ah;size:1"`
	DelAh     string `gorm:"column:del_ah;size:1"`
	Fn1Ah     string `gorm:"column:fn1_ah;size:1"`
	Fn2Ah     string `gorm:"column:fn2_ah;size:1"`
}

func (AuthGroupMenuModel) TableName() string { return "auth_group_menus" }

func programFromModel(m *ProgramModel) *catalog.Program {
	if m == nil {
		return nil
	}
	return &catalog.Program{
		ProgCd:    m.ProgCd,
		ProgNm:    m.ProgNm,
		ProgPh:    m.ProgPh,
		AuthCheck: m.AuthCheck,
		Remark:    m.Remark,
	}
}

func programToModel(p *catalog.Program) ProgramModel {
	return ProgramModel{
		ProgCd:    p.ProgCd,
		ProgNm:    p.ProgNm,
		ProgPh:    p.ProgPh,
		AuthCheck: p.AuthCheck,
		Remark:    p.Remark,
	}
}

func menuFromModel(m *MenuModel) *catalog.Menu {
	menu := &catalog.Menu{
		MenuID:    m.MenuID,
		MenuGrpCd: m.MenuGrpCd,
		MenuNm:    m.MenuNm,
		ParentID:  m.ParentID,
		Level:     m.Level,
		Sort:      m.Sort,
		Program:   programFromModel(m.Program),
	}
	if m.ProgCd != nil {
		menu.ProgCd = *m.ProgCd
	}
	return menu
}

func menuToModel(m *catalog.Menu) MenuModel {
	model := MenuModel{
		MenuID:    m.MenuID,
		MenuGrpCd: m.MenuGrpCd,
		MenuNm:    m.MenuNm,
		ParentID:  m.ParentID,
		Level:     m.Level,
		Sort:      m.Sort,
	}
	if m.ProgCd != "" {
		progCd := m.ProgCd
		model.ProgCd = &progCd
	}
	return model
}

func grantFromModel(m *AuthGroupMenuModel) *catalog.AuthGroupMenu {
	return &catalog.AuthGroupMenu{
		GrpAuthCd: m.GrpAuthCd,
		MenuID:    m.MenuID,
		ProgCd:    m.ProgCd,
		SchAh:     m.SchAh,
		SavAh:     m.SavAh,
		ExlAh:     m.ExlAh,
		DelAh:     m.DelAh,
		Fn1Ah:     m.Fn1Ah,
		Fn2Ah:     m.Fn2Ah,
	}
}

func grantToModel(g *catalog.AuthGroupMenu) AuthGroupMenuModel {
	return AuthGroupMenuModel{
		GrpAuthCd: g.GrpAuthCd,
		MenuID:    g.MenuID,
		ProgCd:    g.ProgCd,
		SchAh:     g.SchAh,
		SavAh:     g.SavAh,
		ExlAh:     g.ExlAh,
		DelAh:     g.DelAh,
		Fn1Ah:     g.Fn1Ah,
		Fn2Ah:     g.Fn2Ah,
	}
}
