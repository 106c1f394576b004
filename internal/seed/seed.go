package seed

import (
	"timetrack-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run inserts the bootstrap account groups, work categories and system
// settings. It is idempotent: a database that already has account groups is
// left untouched.
func Run(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&model.AccountGroup{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Database already seeded, skipping")
		return nil
	}

	log.Info("Seeding bootstrap data")

	accountGroups := []model.AccountGroup{
		{Code: "A00", Name: "中概全權"},
		{Code: "O18", Name: "數據智能應用科", IsDefault: true},
	}
	if err := db.Create(&accountGroups).Error; err != nil {
		return err
	}

	workCategories := []model.WorkCategory{
		{Code: "A07", Name: "其它", DeductApprovedHours: true, IsDefault: true},
		{Code: "A08", Name: "商模", DeductApprovedHours: false, IsDefault: true},
		{Code: "B04", Name: "其它", DeductApprovedHours: true, IsDefault: true},
		{Code: "I07", Name: "休假（休假、病假、事假等）", DeductApprovedHours: false, IsDefault: true},
	}
	if err := db.Create(&workCategories).Error; err != nil {
		return err
	}

	settings := []model.Setting{
		{Key: "language", Value: "zh-TW"},
		{Key: "theme", Value: "light"},
		{Key: "timezone", Value: "UTC+8"},
		{Key: "standard_work_hours", Value: "7.5"},
		{Key: "max_work_hours", Value: "12"},
		{Key: "min_time_unit", Value: "0.5"},
		{Key: "work_days", Value: "1,2,3,4,5"},
		{Key: "show_weekends", Value: "true"},
	}
	if err := db.Create(&settings).Error; err != nil {
		return err
	}

	log.Info("Seed data inserted",
		zap.Int("account_groups", len(accountGroups)),
		zap.Int("work_categories", len(workCategories)),
		zap.Int("settings", len(settings)))
	return nil
}
