package contact

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "contacts.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func migratedRepo(t *testing.T) (*GormRepository, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	return NewGormRepository(db), db
}

func countContacts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&Contact{}).Count(&n).Error)
	return n
}

// recordingNotifier counts notifications and optionally fails or panics.
type recordingNotifier struct {
	mu       sync.Mutex
	contacts []Contact
	err      error
	panicMsg string
}

func (n *recordingNotifier) Notify(_ context.Context, c Contact) error {
	n.mu.Lock()
	n.contacts = append(n.contacts, c)
	n.mu.Unlock()
	if n.panicMsg != "" {
		panic(n.panicMsg)
	}
	return n.err
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.contacts)
}

// failingRepo rejects every insert.
type failingRepo struct{}

func (failingRepo) Create(context.Context, *Contact) error {
	return errors.New("disk I/O error")
}

func (failingRepo) List(context.Context, int) ([]Contact, error) {
	return nil, nil
}

func validSubmission() Submission {
	return Submission{
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Phone:       "+44 20 7946 0000",
		Company:     "Analytical Engines Ltd",
		Subject:     "Project inquiry",
		ProjectType: "web",
		Budget:      "5k-10k",
		Timeline:    "Q3",
		Message:     "I would like to build a dashboard.",
	}
}
