package funnel

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestContactResolver_ResolveOrCreate_FindsByNormalizedPhone(t *testing.T) {
	contactRepo := new(MockContactRepository)
	resolver := NewContactResolver(contactRepo)

	ctx := context.Background()
	existing := createTestContact(t)

	contactRepo.On("FindByPhoneDigits", ctx, "3055550100").Return(existing, nil)

	contact, created, err := resolver.ResolveOrCreate(ctx, "Maria", "1 (305) 555-0100", funnel.ReferredByContact, uuid.New(), newTestSellerID())

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, contact.ID)
	contactRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContactResolver_ResolveOrCreate_CreatesWithSentinelDefaults(t *testing.T) {
	contactRepo := new(MockContactRepository)
	resolver := NewContactResolver(contactRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	referrerID := uuid.New()

	contactRepo.On("FindByPhoneDigits", ctx, "3055550101").Return(nil, shared.ErrNotFound)
	contactRepo.On("Save", ctx, mock.AnythingOfType("*funnel.Contact")).Return(nil)

	contact, created, err := resolver.ResolveOrCreate(ctx, "Juan Perez", "3055550101", funnel.ReferredByClient, referrerID, sellerID)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Juan Perez", contact.Name)
	assert.Equal(t, "3055550101", contact.PhoneDigits)
	assert.Equal(t, funnel.ReferredByClient, contact.ReferredByType)
	assert.Equal(t, sellerID, contact.AssignedTo)
	// the NOT-NULL business columns a bare name+phone cannot populate
	assert.Equal(t, funnel.Unspecified, contact.City)
	assert.Equal(t, funnel.Unspecified, contact.State)
	contactRepo.AssertExpectations(t)
}

func TestContactResolver_ResolveOrCreate_NameOnlySkipsLookup(t *testing.T) {
	contactRepo := new(MockContactRepository)
	resolver := NewContactResolver(contactRepo)

	ctx := context.Background()

	contactRepo.On("Save", ctx, mock.AnythingOfType("*funnel.Contact")).Return(nil)

	contact, created, err := resolver.ResolveOrCreate(ctx, "Carlos", "", funnel.ReferredByContact, uuid.New(), newTestSellerID())

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, contact.PhoneDigits)
	contactRepo.AssertNotCalled(t, "FindByPhoneDigits", mock.Anything, mock.Anything)
}
