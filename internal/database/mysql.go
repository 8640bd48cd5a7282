package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"market-survey-portal/internal/models"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	// AutoMigrate will create tables if they don't exist
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.DataImport{},
		&models.FloorPlan{},
		&models.MarketReport{},
		&models.PropertySearch{},
		&models.SearchResult{},
		&models.ResultStatusChange{},
		&models.ImportDeleteLog{},
	)
}

// FindOrCreateProperty resolves a property by name, creating it when absent.
// The name column carries a unique index, so a concurrent create loses the
// race cleanly and we re-read the winner. The subject flag is sticky: once a
// property is marked subject it stays subject.
func (gdb *GormDB) FindOrCreateProperty(name string, isSubject bool) (*models.Property, error) {
	var prop models.Property
	err := gdb.db.Where("name = ?", name).First(&prop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prop = models.Property{Name: name, IsSubject: isSubject}
		err = gdb.db.Create(&prop).Error
		if err != nil && isDuplicateKey(err) {
			// Lost the insert race, the row exists now
			err = gdb.db.Where("name = ?", name).First(&prop).Error
		}
	}
	if err != nil {
		return nil, err
	}

	if isSubject && !prop.IsSubject {
		if err := gdb.db.Model(&prop).Update("is_subject", true).Error; err != nil {
			return nil, err
		}
		prop.IsSubject = true
	}
	return &prop, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetProperties retrieves all properties, subject first then alphabetical
func (gdb *GormDB) GetProperties() ([]models.Property, error) {
	var properties []models.Property
	err := gdb.db.Order("is_subject DESC, name ASC").Find(&properties).Error
	return properties, err
}

// CreateImport inserts a new import record
func (gdb *GormDB) CreateImport(imp *models.DataImport) error {
	return gdb.db.Create(imp).Error
}

// UpdateImport persists changed import fields
func (gdb *GormDB) UpdateImport(imp *models.DataImport) error {
	return gdb.db.Save(imp).Error
}

// GetImportHistory retrieves recent imports, newest first
func (gdb *GormDB) GetImportHistory(limit int) ([]models.DataImport, error) {
	if limit <= 0 {
		limit = 50
	}
	var imports []models.DataImport
	err := gdb.db.Order("created_at DESC").Limit(limit).Find(&imports).Error
	return imports, err
}

// GetImportByID retrieves a single import
func (gdb *GormDB) GetImportByID(id uint) (*models.DataImport, error) {
	var imp models.DataImport
	if err := gdb.db.First(&imp, id).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

// CreateFloorPlan inserts one floor plan record
func (gdb *GormDB) CreateFloorPlan(fp *models.FloorPlan) error {
	return gdb.db.Create(fp).Error
}

// DeleteFloorPlansByImport removes every floor plan written by an import.
// Used by strict mode rollback and retention cleanup.
func (gdb *GormDB) DeleteFloorPlansByImport(importID uint) error {
	return gdb.db.Where("import_id = ?", importID).Delete(&models.FloorPlan{}).Error
}

// GetFloorPlanByID retrieves a single floor plan
func (gdb *GormDB) GetFloorPlanByID(id uint) (*models.FloorPlan, error) {
	var fp models.FloorPlan
	if err := gdb.db.First(&fp, id).Error; err != nil {
		return nil, err
	}
	return &fp, nil
}

// UpdateFloorPlanOverlay updates only the user-editable overlay rents.
// Spreadsheet-sourced fields and the derived PSF are never touched here.
func (gdb *GormDB) UpdateFloorPlanOverlay(id uint, brokerRent, manualAmcRent *float64) (*models.FloorPlan, error) {
	updates := map[string]interface{}{}
	if brokerRent != nil {
		updates["broker_rent"] = *brokerRent
	}
	if manualAmcRent != nil {
		updates["manual_amc_rent"] = *manualAmcRent
	}
	if len(updates) > 0 {
		if err := gdb.db.Model(&models.FloorPlan{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return gdb.GetFloorPlanByID(id)
}

// GetConsolidatedRows joins floor plans with their properties in the stable
// presentation order: subject property first, then the rest alphabetically.
// A nil reportID returns the unscoped view across all reports.
func (gdb *GormDB) GetConsolidatedRows(reportID *uint) ([]models.ConsolidatedRow, error) {
	query := gdb.db.Table("floor_plans").
		Select(`floor_plans.id AS floor_plan_id,
			properties.name AS property_name,
			properties.is_subject,
			floor_plans.floor_plan_name AS floor_plan,
			floor_plans.bedrooms,
			floor_plans.bathrooms,
			floor_plans.square_feet,
			floor_plans.number_of_units,
			floor_plans.market_rent,
			floor_plans.rent_psf,
			floor_plans.amc_rent,
			floor_plans.broker_rent,
			floor_plans.rediq_column_s AS recent_leases,
			floor_plans.data_source`).
		Joins("JOIN properties ON properties.id = floor_plans.property_id").
		Order("properties.is_subject DESC, properties.name ASC, floor_plans.id ASC")

	if reportID != nil {
		query = query.Where("floor_plans.report_id = ?", *reportID)
	}

	var rows []models.ConsolidatedRow
	err := query.Scan(&rows).Error
	return rows, err
}
