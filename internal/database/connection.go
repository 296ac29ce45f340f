// connection.go
//
// Check-in and profile service for Jurado's Burger locations
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jurados-presence.
// jurados-presence is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jurados-presence is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jurados-presence.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.


package database

import (
	"fmt"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/localnerve/jurados-presence/internal/config"
	"github.com/localnerve/jurados-presence/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes the app pool, used for migrations, location seeding and health checks
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := open(cfg, cfg.DBAppUser, cfg.DBAppPassword, cfg.DBAppConnectionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("connected to app database", zap.String("type", cfg.DBType), zap.String("database", cfg.DBAppDatabase))
	return db, nil
}

// ConnectUser establishes the user pool (with different credentials), used by the record store
func ConnectUser(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := open(cfg, cfg.DBUser, cfg.DBPassword, cfg.DBConnectionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to user database: %w", err)
	}
	log.Info("connected to user database", zap.String("type", cfg.DBType), zap.String("database", cfg.DBAppDatabase))
	return db, nil
}

func open(cfg *config.Config, user, password string, limit int) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg, user, password)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	if limit < 1 {
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns(max(limit/2, 1))

	return db, nil
}

func dialectorFor(cfg *config.Config, user, password string) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			user, password, cfg.DBHost, cfg.DBPort, cfg.DBAppDatabase)
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, user, password, cfg.DBAppDatabase, cfg.DBPort)
		return postgres.Open(dsn), nil

	case "sqlite":
		// DBAppDatabase is the file path; both pools share it
		return sqlite.Open(cfg.DBAppDatabase), nil

	case "sqlite-pure":
		return puresqlite.Open(cfg.DBAppDatabase), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			user, password, cfg.DBHost, cfg.DBPort, cfg.DBAppDatabase)
		return sqlserver.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	}
	return logger.Warn
}

// OpenMemory opens a private in-memory database with the schema migrated.
// It backs the unit tests and the schema inspection tool.
func OpenMemory() (*gorm.DB, error) {
	db, err := gorm.Open(puresqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	// Every pooled connection would get its own empty :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate memory database: %w", err)
	}
	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Record{},
		&models.RecordField{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
