package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"market-survey-portal/internal/models"
)

// DB is the legacy PostgreSQL store. It covers spreadsheet imports and the
// consolidated read path; reports and searches require the MySQL/GORM backend.
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname, sslmode string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// NewDBFromConn wraps an existing connection, used by tests
func NewDBFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the import tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		is_subject BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS floor_plans (
		id SERIAL PRIMARY KEY,
		report_id INTEGER,
		property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		import_id INTEGER,
		floor_plan_name VARCHAR(255) NOT NULL,
		bedrooms DECIMAL(4, 1),
		bathrooms DECIMAL(4, 1),
		square_feet DECIMAL(10, 2),
		number_of_units DECIMAL(10, 2),
		units_available DECIMAL(10, 2),
		market_rent DECIMAL(10, 2),
		rent_psf DECIMAL(10, 4),
		amc_rent DECIMAL(10, 2),
		manual_amc_rent DECIMAL(10, 2),
		broker_rent DECIMAL(10, 2),
		rediq_column_s TEXT,
		data_source VARCHAR(10) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS data_imports (
		id SERIAL PRIMARY KEY,
		report_id INTEGER,
		source VARCHAR(10) NOT NULL,
		file_name VARCHAR(255) NOT NULL,
		file_size BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		records_imported INTEGER NOT NULL DEFAULT 0,
		records_failed INTEGER NOT NULL DEFAULT 0,
		null_coercions INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		processing_time_ms BIGINT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_floor_plans_property_id ON floor_plans(property_id);
	CREATE INDEX IF NOT EXISTS idx_floor_plans_report_id ON floor_plans(report_id);
	CREATE INDEX IF NOT EXISTS idx_floor_plans_import_id ON floor_plans(import_id);
	CREATE INDEX IF NOT EXISTS idx_properties_is_subject ON properties(is_subject);
	CREATE INDEX IF NOT EXISTS idx_data_imports_created_at ON data_imports(created_at);
	`
	_, err := db.conn.Exec(query)
	return err
}

// FindOrCreateProperty upserts a property by name. The subject flag only
// ever flips from false to true.
func (db *DB) FindOrCreateProperty(name string, isSubject bool) (*models.Property, error) {
	query := `
	INSERT INTO properties (name, is_subject)
	VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET
		is_subject = properties.is_subject OR EXCLUDED.is_subject,
		updated_at = NOW()
	RETURNING id, is_subject
	`
	prop := &models.Property{Name: name}
	if err := db.conn.QueryRow(query, name, isSubject).Scan(&prop.ID, &prop.IsSubject); err != nil {
		return nil, err
	}
	return prop, nil
}

// CreateImport inserts an import record and fills in its assigned ID
func (db *DB) CreateImport(imp *models.DataImport) error {
	query := `
	INSERT INTO data_imports (report_id, source, file_name, file_size, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	return db.conn.QueryRow(query,
		imp.ReportID, string(imp.Source), imp.FileName, imp.FileSize, string(imp.Status)).
		Scan(&imp.ID, &imp.CreatedAt, &imp.UpdatedAt)
}

// UpdateImport settles an import's status and counters
func (db *DB) UpdateImport(imp *models.DataImport) error {
	query := `
	UPDATE data_imports
	SET status = $1, records_imported = $2, records_failed = $3,
		null_coercions = $4, error_message = $5, processing_time_ms = $6,
		updated_at = NOW()
	WHERE id = $7
	`
	_, err := db.conn.Exec(query,
		string(imp.Status), imp.RecordsImported, imp.RecordsFailed,
		imp.NullCoercions, imp.ErrorMessage, imp.ProcessingTimeMs, imp.ID)
	return err
}

// GetImportHistory retrieves recent imports, newest first
func (db *DB) GetImportHistory(limit int) ([]models.DataImport, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, report_id, source, file_name, file_size, status,
		   records_imported, records_failed, null_coercions,
		   COALESCE(error_message, ''), processing_time_ms, created_at, updated_at
	FROM data_imports
	ORDER BY created_at DESC
	LIMIT $1
	`
	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []models.DataImport
	for rows.Next() {
		var imp models.DataImport
		err := rows.Scan(
			&imp.ID, &imp.ReportID, &imp.Source, &imp.FileName, &imp.FileSize,
			&imp.Status, &imp.RecordsImported, &imp.RecordsFailed, &imp.NullCoercions,
			&imp.ErrorMessage, &imp.ProcessingTimeMs, &imp.CreatedAt, &imp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// GetImportByID retrieves a single import
func (db *DB) GetImportByID(id uint) (*models.DataImport, error) {
	query := `
	SELECT id, report_id, source, file_name, file_size, status,
		   records_imported, records_failed, null_coercions,
		   COALESCE(error_message, ''), processing_time_ms, created_at, updated_at
	FROM data_imports
	WHERE id = $1
	`
	var imp models.DataImport
	err := db.conn.QueryRow(query, id).Scan(
		&imp.ID, &imp.ReportID, &imp.Source, &imp.FileName, &imp.FileSize,
		&imp.Status, &imp.RecordsImported, &imp.RecordsFailed, &imp.NullCoercions,
		&imp.ErrorMessage, &imp.ProcessingTimeMs, &imp.CreatedAt, &imp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

// CreateFloorPlan inserts one floor plan record
func (db *DB) CreateFloorPlan(fp *models.FloorPlan) error {
	query := `
	INSERT INTO floor_plans (
		report_id, property_id, import_id, floor_plan_name,
		bedrooms, bathrooms, square_feet, number_of_units, units_available,
		market_rent, rent_psf, amc_rent, manual_amc_rent, broker_rent,
		rediq_column_s, data_source
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := db.conn.Exec(query,
		fp.ReportID, fp.PropertyID, fp.ImportID, fp.FloorPlanName,
		fp.Bedrooms, fp.Bathrooms, fp.SquareFeet, fp.NumberOfUnits, fp.UnitsAvailable,
		fp.MarketRent, fp.RentPsf, fp.AmcRent, fp.ManualAmcRent, fp.BrokerRent,
		fp.RediqColumnS, fp.DataSource)
	return err
}

// DeleteFloorPlansByImport removes every floor plan written by an import.
// Used by strict mode rollback.
func (db *DB) DeleteFloorPlansByImport(importID uint) error {
	_, err := db.conn.Exec(`DELETE FROM floor_plans WHERE import_id = $1`, importID)
	return err
}

// GetConsolidatedRows joins floor plans with properties, subject first then
// alphabetical. Same ordering contract as the GORM store.
func (db *DB) GetConsolidatedRows(reportID *uint) ([]models.ConsolidatedRow, error) {
	query := `
		SELECT f.id, p.name, p.is_subject, f.floor_plan_name,
			   f.bedrooms, f.bathrooms, f.square_feet, f.number_of_units,
			   f.market_rent, f.rent_psf, f.amc_rent, f.broker_rent,
			   COALESCE(f.rediq_column_s, ''), f.data_source
		FROM floor_plans f
		JOIN properties p ON p.id = f.property_id
	`
	args := []interface{}{}
	if reportID != nil {
		query += " WHERE f.report_id = $1"
		args = append(args, *reportID)
	}
	query += " ORDER BY p.is_subject DESC, p.name ASC, f.id ASC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConsolidatedRow
	for rows.Next() {
		var r models.ConsolidatedRow
		err := rows.Scan(
			&r.FloorPlanID, &r.PropertyName, &r.IsSubject, &r.FloorPlan,
			&r.Bedrooms, &r.Bathrooms, &r.SquareFeet, &r.NumberOfUnits,
			&r.MarketRent, &r.RentPsf, &r.AmcRent, &r.BrokerRent,
			&r.RecentLeases, &r.DataSource,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetProperties retrieves all properties, subject first then alphabetical
func (db *DB) GetProperties() ([]models.Property, error) {
	query := `
		SELECT id, name, is_subject, created_at, updated_at
		FROM properties
		ORDER BY is_subject DESC, name ASC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.IsSubject, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}

	return properties, rows.Err()
}
