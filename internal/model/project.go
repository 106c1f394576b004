package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Project represents a work assignment that time entries are recorded against.
// ApprovedManDays is the contracted budget in man-days; one man-day equals
// 7.5 hours. A nil value means no budget has been defined, which is distinct
// from a zero budget.
type Project struct {
	ID                     uint             `json:"id" gorm:"primarykey"`
	Code                   string           `json:"code" gorm:"type:varchar(50);not null;index"`
	RequirementCode        string           `json:"requirement_code" gorm:"type:varchar(50);not null"`
	Name                   string           `json:"name" gorm:"type:varchar(200);not null"`
	ApprovedManDays        *decimal.Decimal `json:"approved_man_days" gorm:"type:numeric(10,2)"`
	DefaultAccountGroupID  *uint            `json:"default_account_group_id"`
	DefaultWorkCategoryID  *uint            `json:"default_work_category_id"`
	Description            string           `json:"description" gorm:"type:text"`
	Status                 string           `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Color                  string           `json:"color" gorm:"type:varchar(7);not null;default:'#409EFF'"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
	DeletedAt              gorm.DeletedAt   `json:"deleted_at,omitempty" gorm:"index"`
}
