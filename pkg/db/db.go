package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/conwetlab/privatedatasets-backend/config"
)

// NewConnection opens a gorm connection against the configured
// database. The connection is created once at startup and injected into
// the repository; there is no package-level handle.
func NewConnection(databaseConfig *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
		databaseConfig.Host,
		databaseConfig.Username,
		databaseConfig.Password,
		databaseConfig.Name,
		databaseConfig.Port,
		databaseConfig.TimeZone,
	)
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		QueryFields: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(databaseConfig.Pool.IdleConnections)
	sqlDB.SetMaxOpenConns(databaseConfig.Pool.MaxConnections)
	sqlDB.SetConnMaxLifetime(databaseConfig.Pool.ConnLifeTime)

	return db, nil
}

// Close closes the underlying sql.DB of a gorm connection.
func Close(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}
}
