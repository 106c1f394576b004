package model

import "time"

// Milestone is a key phase of exactly one project. Deleting the project
// removes its milestones via the FK cascade. EndDate must not be before
// StartDate; handlers validate this whenever either bound is supplied.
type Milestone struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	ProjectID    uint      `json:"project_id" gorm:"not null;index:idx_milestones_project"`
	Project      *Project  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null"`
	StartDate    time.Time `json:"start_date" gorm:"type:date;not null;index:idx_milestones_dates"`
	EndDate      time.Time `json:"end_date" gorm:"type:date;not null;index:idx_milestones_dates"`
	Description  string    `json:"description" gorm:"type:text"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
