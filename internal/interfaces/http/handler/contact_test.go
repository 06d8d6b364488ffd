package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appfunnel "github.com/crm/backend/internal/application/funnel"
	"github.com/crm/backend/internal/domain/funnel"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubContactRepository is an in-memory ContactRepository for handler tests
type stubContactRepository struct {
	contacts map[uuid.UUID]*funnel.Contact
}

func newStubContactRepository() *stubContactRepository {
	return &stubContactRepository{contacts: make(map[uuid.UUID]*funnel.Contact)}
}

func (r *stubContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*funnel.Contact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *contact
	return &copied, nil
}

func (r *stubContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]funnel.Contact, error) {
	result := make([]funnel.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		result = append(result, *c)
	}
	return result, nil
}

func (r *stubContactRepository) FindByPhoneDigits(ctx context.Context, digits string) (*funnel.Contact, error) {
	for _, c := range r.contacts {
		if c.PhoneDigits == digits {
			copied := *c
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubContactRepository) Save(ctx context.Context, contact *funnel.Contact) error {
	copied := *contact
	r.contacts[contact.ID] = &copied
	return nil
}

func (r *stubContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.contacts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}

func (r *stubContactRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.contacts)), nil
}

// actorInjector stands in for the auth middleware in handler tests
func actorInjector(actor identity.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Next()
	}
}

func setupContactRouter(t *testing.T, repo *stubContactRepository, actor identity.Actor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := appfunnel.NewContactService(repo)
	h := NewContactHandler(service, zap.NewNop())

	engine := gin.New()
	engine.Use(actorInjector(actor))
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestContactHandler_Create(t *testing.T) {
	seller := identity.NewActor(uuid.New(), identity.RoleSeller)
	repo := newStubContactRepository()
	engine := setupContactRouter(t, repo, seller)

	body, _ := json.Marshal(map[string]string{
		"name":  "Maria Lopez",
		"phone": "(305) 555-0101",
		"city":  "Miami",
		"state": "FL",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Maria Lopez", data["name"])
	assert.Equal(t, "3055550101", data["phone_digits"])
	assert.Len(t, repo.contacts, 1)
}

func TestContactHandler_Create_MissingName(t *testing.T) {
	seller := identity.NewActor(uuid.New(), identity.RoleSeller)
	engine := setupContactRouter(t, newStubContactRepository(), seller)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", bytes.NewReader([]byte(`{"phone":"3055550101"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.CodeBadRequest, resp.Error.Code)
}

func TestContactHandler_Get_NotFound(t *testing.T) {
	seller := identity.NewActor(uuid.New(), identity.RoleSeller)
	engine := setupContactRouter(t, newStubContactRepository(), seller)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, shared.CodeNotFound, resp.Error.Code)
}

func TestContactHandler_Get_InvalidID(t *testing.T) {
	seller := identity.NewActor(uuid.New(), identity.RoleSeller)
	engine := setupContactRouter(t, newStubContactRepository(), seller)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/not-a-uuid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactHandler_Get_AccessDenied(t *testing.T) {
	owner := uuid.New()
	other := identity.NewActor(uuid.New(), identity.RoleSeller)

	repo := newStubContactRepository()
	contact, err := funnel.NewContact("Ana Ruiz", "3055550102", owner)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), contact))

	engine := setupContactRouter(t, repo, other)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/"+contact.ID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, shared.CodeAccessDenied, resp.Error.Code)
}

func TestContactHandler_Delete_RequiresDistributor(t *testing.T) {
	seller := identity.NewActor(uuid.New(), identity.RoleSeller)

	repo := newStubContactRepository()
	contact, err := funnel.NewContact("Ana Ruiz", "3055550102", seller.UserID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), contact))

	engine := setupContactRouter(t, repo, seller)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/"+contact.ID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, repo.contacts, 1)
}

func TestContactHandler_Delete_Distributor(t *testing.T) {
	distributor := identity.NewActor(uuid.New(), identity.RoleDistributor)

	repo := newStubContactRepository()
	contact, err := funnel.NewContact("Ana Ruiz", "3055550102", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), contact))

	engine := setupContactRouter(t, repo, distributor)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/"+contact.ID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.contacts)
}
