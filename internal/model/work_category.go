package model

import "time"

// WorkCategory classifies the type of work performed (e.g. A07 其它, A08 商模).
//
// DeductApprovedHours is the fulcrum of the stats engine: categories with the
// flag set consume the project's approved budget, categories without it
// (vacation, unbilled sales work) count toward total hours only.
type WorkCategory struct {
	ID                  uint      `json:"id" gorm:"primarykey"`
	Code                string    `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:uq_work_category_code_name"`
	Name                string    `json:"name" gorm:"type:varchar(200);not null;uniqueIndex:uq_work_category_code_name"`
	DeductApprovedHours bool      `json:"deduct_approved_hours" gorm:"not null;default:true"`
	IsDefault           bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FullName returns "code name" (e.g. "A07 其它").
func (c *WorkCategory) FullName() string {
	return c.Code + " " + c.Name
}
