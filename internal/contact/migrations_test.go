package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyContactsDDL = `CREATE TABLE contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	message TEXT NOT NULL,
	timestamp TEXT NOT NULL
)`

func TestMigrateFreshDatabase(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, col := range []string{"name", "email", "phone", "company", "subject", "project_type", "budget", "timeline", "message", "timestamp"} {
		assert.True(t, db.Migrator().HasColumn(&Contact{}, col), col)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
	require.NoError(t, GetMigrator(db).Migrate())
}

func TestMigrateKeepsLegacyRows(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec(legacyContactsDDL).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO contacts (name, email, message, timestamp) VALUES (?, ?, ?, ?)",
		"Old Visitor", "old@example.com", "hello from before", "2024-01-01T10:00:00",
	).Error)

	require.NoError(t, Migrate(db))

	repo := NewGormRepository(db)
	contacts, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	old := contacts[0]
	assert.Equal(t, "Old Visitor", old.Name)
	assert.Equal(t, "hello from before", old.Message)
	assert.Equal(t, "2024-01-01T10:00:00", old.Timestamp)
	assert.Empty(t, old.Subject)
	assert.Nil(t, old.Phone)
	assert.Nil(t, old.Company)
	assert.Nil(t, old.ProjectType)
	assert.Nil(t, old.Budget)
	assert.Nil(t, old.Timeline)

	// New rows land next to the old one.
	svcContact := &Contact{Name: "New", Email: "new@example.com", Subject: "Hi", Message: "m", Timestamp: "2025-01-01T00:00:00Z"}
	require.NoError(t, repo.Create(context.Background(), svcContact))
	assert.Equal(t, int64(2), countContacts(t, db))
}

func TestMigratePartiallyUpgradedTable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec(legacyContactsDDL).Error)
	require.NoError(t, db.Exec("ALTER TABLE contacts ADD COLUMN phone TEXT").Error)
	require.NoError(t, db.Exec("ALTER TABLE contacts ADD COLUMN subject TEXT").Error)
	require.NoError(t, db.Exec(
		"INSERT INTO contacts (name, email, phone, subject, message, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		"Mid Visitor", "mid@example.com", "123", "Question", "msg", "2024-06-01T10:00:00",
	).Error)

	require.NoError(t, Migrate(db))

	contacts, err := NewGormRepository(db).List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.NotNil(t, contacts[0].Phone)
	assert.Equal(t, "123", *contacts[0].Phone)
	assert.Equal(t, "Question", contacts[0].Subject)
	assert.Nil(t, contacts[0].Budget)
}

func TestMigrateRollbackDropsProjectColumns(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, GetMigrator(db).RollbackLast())
	assert.False(t, db.Migrator().HasColumn(&Contact{}, "budget"))
	assert.True(t, db.Migrator().HasColumn(&Contact{}, "subject"))
}
