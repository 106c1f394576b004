package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry is the core transactional record: work performed on a specific
// date for a specific project. Hours use a fixed-point numeric column,
// conventionally entered in 0.5 increments (not enforced). AccountGroupID is
// optional; nil means the entry has no designated account group.
type TimeEntry struct {
	ID             uint            `json:"id" gorm:"primarykey"`
	Date           time.Time       `json:"date" gorm:"type:date;not null;index;index:idx_time_entry_date_project"`
	ProjectID      uint            `json:"project_id" gorm:"not null;index;index:idx_time_entry_date_project"`
	AccountGroupID *uint           `json:"account_group_id"`
	WorkCategoryID uint            `json:"work_category_id" gorm:"not null"`
	Hours          decimal.Decimal `json:"hours" gorm:"type:numeric(5,2);not null"`
	Description    string          `json:"description" gorm:"type:text;not null"`
	AccountItem    string          `json:"account_item" gorm:"type:varchar(200)"`
	DisplayOrder   int             `json:"display_order" gorm:"not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
