package repository

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE facilities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	location TEXT NOT NULL,
	description TEXT,
	is_bookable BOOLEAN NOT NULL DEFAULT 0
);`

func newTestRepository(t *testing.T) (*FacilityRepository, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	repo := NewFacilityRepositoryFromDB(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, db
}

func TestListFacilities(t *testing.T) {
	repo, db := newTestRepository(t)

	db.MustExec(`INSERT INTO facilities (name, category, location, description, is_bookable) VALUES
		('Computer Lab 1', 'lab', 'Block A, Level 2', '40 workstations', 1),
		('Sports Complex', 'sports', 'Block C', NULL, 0),
		('Main Library', 'library', 'Central Campus', 'Quiet study zones', 1)`)

	facilities, err := repo.ListFacilities(context.Background())
	require.NoError(t, err)
	require.Len(t, facilities, 3)

	assert.Equal(t, "Computer Lab 1", facilities[0].Name)
	assert.Equal(t, "Block A, Level 2", facilities[0].Location)
	assert.True(t, facilities[0].Bookable)

	assert.Equal(t, "Sports Complex", facilities[1].Name)
	assert.Equal(t, "", facilities[1].Description)
	assert.False(t, facilities[1].Bookable)

	assert.Equal(t, "Main Library", facilities[2].Name)
}

func TestListFacilities_Empty(t *testing.T) {
	repo, _ := newTestRepository(t)

	facilities, err := repo.ListFacilities(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, facilities)
	assert.Empty(t, facilities)
}

func TestListFacilities_MissingTable(t *testing.T) {
	repo, db := newTestRepository(t)
	db.MustExec(`DROP TABLE facilities`)

	_, err := repo.ListFacilities(context.Background())
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	repo, _ := newTestRepository(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
