package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

// FacilityRepository reads the facility catalog used to ground prompts.
// It never writes; bookings and issues are persisted by the calling application.
type FacilityRepository struct {
	db *sqlx.DB
}

// NewFacilityRepository opens the facility store.
// driver is "postgres" or "sqlite3".
func NewFacilityRepository(driver, dsn string, maxConn, maxIdleConn int) (*FacilityRepository, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	return NewFacilityRepositoryFromDB(db), nil
}

// NewFacilityRepositoryFromDB wraps an existing connection pool
func NewFacilityRepositoryFromDB(db *sqlx.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// Close closes the database connection
func (r *FacilityRepository) Close() error {
	return r.db.Close()
}

// Ping checks that the store is reachable
func (r *FacilityRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListFacilities returns every facility in catalog order
func (r *FacilityRepository) ListFacilities(ctx context.Context) ([]model.FacilityRef, error) {
	query := `
		SELECT name, category, location,
			COALESCE(description, '') AS description,
			is_bookable
		FROM facilities
		ORDER BY id
	`

	facilities := []model.FacilityRef{}
	if err := r.db.SelectContext(ctx, &facilities, query); err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}

	return facilities, nil
}
