package model

import "time"

// AccountGroup is an organizational/cost-center tag for time entries
// (e.g. A00 中概全權, O18 數據智能應用科). The code/name pair is unique as a
// combination; two groups may share a code as long as the names differ.
type AccountGroup struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Code      string    `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:uq_account_group_code_name"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null;uniqueIndex:uq_account_group_code_name"`
	IsDefault bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "code name", the label TCS expects (e.g. "A00 中概全權").
func (g *AccountGroup) FullName() string {
	return g.Code + " " + g.Name
}
