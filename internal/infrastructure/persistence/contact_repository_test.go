package persistence

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupContactTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE contacts (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			name TEXT NOT NULL,
			phone TEXT,
			phone_digits TEXT,
			email TEXT,
			address TEXT,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			origin_type TEXT NOT NULL,
			referred_by_type TEXT NOT NULL,
			referred_by_id TEXT,
			relation_to_referrer TEXT NOT NULL,
			assigned_to TEXT NOT NULL,
			marital_status TEXT,
			home_ownership TEXT,
			converted INTEGER NOT NULL DEFAULT 0,
			client_id TEXT
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newTestContact(t *testing.T, name, phone string) *funnel.Contact {
	contact, err := funnel.NewContact(name, phone, uuid.New())
	require.NoError(t, err)
	contact.ClearDomainEvents()
	return contact
}

func TestGormContactRepository_SaveAndFindByID(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	contact := newTestContact(t, "Maria Lopez", "305-555-0100")
	require.NoError(t, repo.Save(ctx, contact))

	found, err := repo.FindByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", found.Name)
	assert.Equal(t, "3055550100", found.PhoneDigits)
	assert.Equal(t, funnel.Unspecified, found.City)
}

func TestGormContactRepository_FindByID_NotFound(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormContactRepository_FindByPhoneDigits(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	contact := newTestContact(t, "Maria Lopez", "(305) 555-0100")
	require.NoError(t, repo.Save(ctx, contact))

	found, err := repo.FindByPhoneDigits(ctx, "3055550100")
	require.NoError(t, err)
	assert.Equal(t, contact.ID, found.ID)
}

func TestGormContactRepository_FindByPhoneDigits_LegacyFallback(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	// Rows imported before phone normalization carry a free-form phone and an
	// empty phone_digits column.
	legacyID := uuid.New()
	err := db.Exec(`
		INSERT INTO contacts (id, created_at, updated_at, name, phone, phone_digits,
			city, state, origin_type, referred_by_type, relation_to_referrer, assigned_to, converted)
		VALUES (?, datetime('now'), datetime('now'), 'Juan Perez', '+1 (305) 555-0199', '',
			'Miami', 'FL', 'import', 'none', 'unspecified', ?, 0)
	`, legacyID, uuid.New()).Error
	require.NoError(t, err)

	found, err := repo.FindByPhoneDigits(ctx, "3055550199")
	require.NoError(t, err)
	assert.Equal(t, legacyID, found.ID)
	assert.Equal(t, "Juan Perez", found.Name)
}

func TestGormContactRepository_FindByPhoneDigits_NotFound(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)

	_, err := repo.FindByPhoneDigits(context.Background(), "3055550100")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormContactRepository_FindAll_AssignedToFilter(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	mine := newTestContact(t, "Maria Lopez", "305-555-0100")
	other := newTestContact(t, "Juan Perez", "305-555-0101")
	require.NoError(t, repo.Save(ctx, mine))
	require.NoError(t, repo.Save(ctx, other))

	filter := shared.DefaultFilter()
	filter.Filters["assigned_to_ids"] = []uuid.UUID{mine.AssignedTo}

	contacts, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, mine.ID, contacts[0].ID)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormContactRepository_FindAll_Search(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestContact(t, "Maria Lopez", "305-555-0100")))
	require.NoError(t, repo.Save(ctx, newTestContact(t, "Juan Perez", "305-555-0101")))

	filter := shared.DefaultFilter()
	filter.Search = "Lopez"

	contacts, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Maria Lopez", contacts[0].Name)
}

func TestGormContactRepository_Delete(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	contact := newTestContact(t, "Maria Lopez", "305-555-0100")
	require.NoError(t, repo.Save(ctx, contact))

	require.NoError(t, repo.Delete(ctx, contact.ID))

	_, err := repo.FindByID(ctx, contact.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = repo.Delete(ctx, contact.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
