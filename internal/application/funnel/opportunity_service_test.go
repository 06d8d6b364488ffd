package funnel

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockOpportunityRepository is a mock implementation of OpportunityRepository
type MockOpportunityRepository struct {
	mock.Mock
}

func (m *MockOpportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funnel.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]funnel.Opportunity, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]funnel.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) FindActiveByContact(ctx context.Context, contactID uuid.UUID) (*funnel.Opportunity, error) {
	args := m.Called(ctx, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funnel.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) FindByContact(ctx context.Context, contactID uuid.UUID) ([]funnel.Opportunity, error) {
	args := m.Called(ctx, contactID)
	return args.Get(0).([]funnel.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) Save(ctx context.Context, opp *funnel.Opportunity) error {
	args := m.Called(ctx, opp)
	return args.Error(0)
}

func (m *MockOpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOpportunityRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactRepository is a mock implementation of ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funnel.Contact), args.Error(1)
}

func (m *MockContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]funnel.Contact, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]funnel.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByPhoneDigits(ctx context.Context, digits string) (*funnel.Contact, error) {
	args := m.Called(ctx, digits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funnel.Contact), args.Error(1)
}

func (m *MockContactRepository) Save(ctx context.Context, contact *funnel.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContactRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funnel.Client), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *funnel.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) EnsureBillingAccount(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

// passthroughTxManager runs the transactional function on the caller's
// context, which keeps mock expectations simple.
type passthroughTxManager struct{}

func (passthroughTxManager) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// Test helper functions
func newTestSellerID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestContactID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func createTestContact(t *testing.T) *funnel.Contact {
	t.Helper()
	contact, err := funnel.NewContact("Maria Lopez", "(305) 555-0100", newTestSellerID())
	assert.NoError(t, err)
	return contact
}

func newOpportunityService(oppRepo *MockOpportunityRepository, contactRepo *MockContactRepository, clientRepo *MockClientRepository) *OpportunityService {
	return NewOpportunityService(oppRepo, contactRepo, clientRepo, passthroughTxManager{}, zap.NewNop())
}

// Tests for OpportunityService.Create

func TestOpportunityService_Create_Success(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	contact := createTestContact(t)

	contactRepo.On("FindByID", ctx, contact.ID).Return(contact, nil)
	oppRepo.On("FindActiveByContact", ctx, contact.ID).Return(nil, shared.ErrNotFound)
	oppRepo.On("Save", ctx, mock.AnythingOfType("*funnel.Opportunity")).Return(nil)

	result, err := service.Create(ctx, actor, CreateOpportunityRequest{ContactID: contact.ID})

	assert.NoError(t, err)
	assert.Equal(t, funnel.StageNewLead, result.Stage)
	assert.Equal(t, funnel.ClosureActive, result.ClosureState)
	assert.Equal(t, contact.ID, *result.ContactID)
	assert.Nil(t, result.ClientID)
	assert.Equal(t, sellerID, result.OwnerUserID)
	oppRepo.AssertExpectations(t)
}

func TestOpportunityService_Create_DuplicateActiveConflicts(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	contact := createTestContact(t)
	existing, _ := funnel.NewContactOpportunity(contact.ID, sellerID)

	contactRepo.On("FindByID", ctx, contact.ID).Return(contact, nil)
	oppRepo.On("FindActiveByContact", ctx, contact.ID).Return(existing, nil)

	result, err := service.Create(ctx, actor, CreateOpportunityRequest{ContactID: contact.ID})

	assert.Nil(t, result)
	var conflict *shared.ConflictError
	assert.ErrorAs(t, err, &conflict)
	// the conflicting record rides along so the caller can act on it
	assert.Equal(t, existing.ID, conflict.Existing.(OpportunityResponse).ID)
	oppRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOpportunityService_Create_ForceBypassesDuplicateGuard(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	contact := createTestContact(t)

	contactRepo.On("FindByID", ctx, contact.ID).Return(contact, nil)
	oppRepo.On("Save", ctx, mock.AnythingOfType("*funnel.Opportunity")).Return(nil)

	result, err := service.Create(ctx, actor, CreateOpportunityRequest{ContactID: contact.ID, Force: true})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	oppRepo.AssertNotCalled(t, "FindActiveByContact", mock.Anything, mock.Anything)
}

func TestOpportunityService_Create_ForAnotherSellerDenied(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	actor := identity.Actor{UserID: newTestSellerID(), Role: identity.RoleSeller}
	otherSeller := uuid.New()

	_, err := service.Create(context.Background(), actor, CreateOpportunityRequest{
		ContactID:   newTestContactID(),
		OwnerUserID: &otherSeller,
	})

	assert.Equal(t, shared.CodeAccessDenied, shared.ErrorCode(err))
}

// Tests for OpportunityService.TransitionStage

func TestOpportunityService_TransitionStage_AppointmentRequiresDatetime(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.TransitionStage(ctx, actor, opp.ID, TransitionStageRequest{
		Stage: funnel.StageAppointmentScheduled,
	})

	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	oppRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOpportunityService_TransitionStage_TelemarketerBeyondSubsetForbidden(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{
		UserID:      uuid.New(),
		Role:        identity.RoleTelemarketer,
		Delegations: []uuid.UUID{sellerID},
	}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.TransitionStage(ctx, actor, opp.ID, TransitionStageRequest{
		Stage: funnel.StageDemoCompleted,
	})

	assert.Equal(t, shared.CodeForbiddenTransition, shared.ErrorCode(err))
}

func TestOpportunityService_TransitionStage_TelemarketerInsideSubsetAllowed(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{
		UserID:      uuid.New(),
		Role:        identity.RoleTelemarketer,
		Delegations: []uuid.UUID{sellerID},
	}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)
	oppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.TransitionStage(ctx, actor, opp.ID, TransitionStageRequest{
		Stage: funnel.StageContacted,
	})

	assert.NoError(t, err)
	assert.Equal(t, funnel.StageContacted, result.Stage)
}

func TestOpportunityService_TransitionStage_WonPromotesContact(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	contact := createTestContact(t)
	opp, _ := funnel.NewContactOpportunity(contact.ID, sellerID)

	var savedClient *funnel.Client
	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)
	contactRepo.On("FindByID", ctx, contact.ID).Return(contact, nil)
	clientRepo.On("Save", ctx, mock.AnythingOfType("*funnel.Client")).Run(func(args mock.Arguments) {
		savedClient = args.Get(1).(*funnel.Client)
	}).Return(nil)
	contactRepo.On("Save", ctx, contact).Return(nil)
	clientRepo.On("EnsureBillingAccount", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)
	oppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.TransitionStage(ctx, actor, opp.ID, TransitionStageRequest{
		Stage: funnel.StageWon,
	})

	assert.NoError(t, err)
	assert.Equal(t, funnel.StageWon, result.Stage)
	assert.NotNil(t, result.WonAt)

	// all four promotion effects
	assert.NotNil(t, savedClient)
	assert.Equal(t, contact.Name, savedClient.Name)
	assert.True(t, contact.Converted)
	assert.Equal(t, savedClient.ID, *contact.ClientID)
	assert.Equal(t, savedClient.ID, *result.ClientID)
	assert.Nil(t, result.ContactID)
	clientRepo.AssertExpectations(t)
}

func TestOpportunityService_TransitionStage_LostRequiresReason(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.TransitionStage(ctx, actor, opp.ID, TransitionStageRequest{Stage: funnel.StageLost})

	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
}

// Tests for OpportunityService.GetByID

func TestOpportunityService_GetByID_OtherSellersRecordDenied(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	actor := identity.Actor{UserID: uuid.New(), Role: identity.RoleSeller}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), newTestSellerID())

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.GetByID(ctx, actor, opp.ID)

	assert.Equal(t, shared.CodeAccessDenied, shared.ErrorCode(err))
}

func TestOpportunityService_GetByID_TelemarketerPastQualificationDenied(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{
		UserID:      uuid.New(),
		Role:        identity.RoleTelemarketer,
		Delegations: []uuid.UUID{sellerID},
	}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)
	assert.NoError(t, opp.ChangeStage(funnel.StageProposal, funnel.StageChange{}))

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.GetByID(ctx, actor, opp.ID)

	assert.Equal(t, shared.CodeAccessDenied, shared.ErrorCode(err))
}

// Tests for OpportunityService.List

func TestOpportunityService_List_SellerRestrictedToOwnRecords(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}

	var captured shared.Filter
	oppRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(shared.Filter)
	}).Return([]funnel.Opportunity{}, nil)
	oppRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(0), nil)

	_, _, err := service.List(ctx, actor, OpportunityListFilter{})

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{sellerID}, captured.Filters["owner_ids"])
}

func TestOpportunityService_List_TelemarketerGetsStageSubset(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{
		UserID:      uuid.New(),
		Role:        identity.RoleTelemarketer,
		Delegations: []uuid.UUID{sellerID},
	}

	var captured shared.Filter
	oppRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(shared.Filter)
	}).Return([]funnel.Opportunity{}, nil)
	oppRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(0), nil)

	_, _, err := service.List(ctx, actor, OpportunityListFilter{})

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{sellerID}, captured.Filters["owner_ids"])
	assert.Equal(t, []string{"NEW_LEAD", "CONTACT_ATTEMPTED", "CONTACTED", "QUALIFICATION"}, captured.Filters["stages"])
}

func TestOpportunityService_List_TelemarketerWithoutDelegationsSeesNothing(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	actor := identity.Actor{UserID: uuid.New(), Role: identity.RoleTelemarketer}

	results, total, err := service.List(context.Background(), actor, OpportunityListFilter{})

	assert.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, total)
	oppRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

// Tests for OpportunityService.SetClosureState

func TestOpportunityService_SetClosureState_FollowUpRequiresDate(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.SetClosureState(ctx, actor, opp.ID, SetClosureRequest{State: funnel.ClosureFollowUp})

	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
}

func TestOpportunityService_SetClosureState_NotInterestedRequiresReason(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.SetClosureState(ctx, actor, opp.ID, SetClosureRequest{State: funnel.ClosureNotInterested})

	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
}

func TestOpportunityService_SetClosureState_NotInterestedWithReason(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	actor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)
	oppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.SetClosureState(ctx, actor, opp.ID, SetClosureRequest{
		State:  funnel.ClosureNotInterested,
		Reason: "moved out of state",
	})

	assert.NoError(t, err)
	assert.Equal(t, funnel.ClosureNotInterested, result.ClosureState)
	assert.Equal(t, "moved out of state", result.ClosureReason)
	// the funnel position is untouched by the closure write
	assert.Equal(t, funnel.StageNewLead, result.Stage)
}

// Tests for OpportunityService.PromoteToClient

func TestOpportunityService_PromoteToClient_AlreadyPromotedIsIdempotent(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	contact := createTestContact(t)
	opp, _ := funnel.NewContactOpportunity(contact.ID, sellerID)
	assert.NoError(t, opp.ChangeStage(funnel.StageWon, funnel.StageChange{}))
	clientID := uuid.New()
	assert.NoError(t, opp.AttachToClient(clientID))

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	result, err := service.PromoteToClient(ctx, opp.ID)

	assert.NoError(t, err)
	assert.Equal(t, clientID, result)
	clientRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOpportunityService_PromoteToClient_NotWonFailsPrecondition(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), newTestSellerID())

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	_, err := service.PromoteToClient(ctx, opp.ID)

	assert.Equal(t, shared.CodePreconditionFailed, shared.ErrorCode(err))
}

// Tests for OpportunityService.Delete and Reassign

func TestOpportunityService_Delete_RequiresOwnership(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	actor := identity.Actor{UserID: uuid.New(), Role: identity.RoleSeller}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), newTestSellerID())

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)

	err := service.Delete(ctx, actor, opp.ID)

	assert.Equal(t, shared.CodeAccessDenied, shared.ErrorCode(err))
	oppRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOpportunityService_Reassign_DistributorOnly(t *testing.T) {
	oppRepo := new(MockOpportunityRepository)
	contactRepo := new(MockContactRepository)
	clientRepo := new(MockClientRepository)
	service := newOpportunityService(oppRepo, contactRepo, clientRepo)

	ctx := context.Background()
	sellerID := newTestSellerID()
	sellerActor := identity.Actor{UserID: sellerID, Role: identity.RoleSeller}

	_, err := service.Reassign(ctx, sellerActor, uuid.New(), ReassignOpportunityRequest{OwnerUserID: uuid.New()})
	assert.Equal(t, shared.CodeAccessDenied, shared.ErrorCode(err))

	distributor := identity.Actor{UserID: uuid.New(), Role: identity.RoleDistributor}
	opp, _ := funnel.NewContactOpportunity(newTestContactID(), sellerID)
	newOwner := uuid.New()

	oppRepo.On("FindByID", ctx, opp.ID).Return(opp, nil)
	oppRepo.On("Save", ctx, opp).Return(nil)

	result, err := service.Reassign(ctx, distributor, opp.ID, ReassignOpportunityRequest{OwnerUserID: newOwner})
	assert.NoError(t, err)
	assert.Equal(t, newOwner, result.OwnerUserID)
}
