package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/userdir-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	createFn     func(ctx context.Context, fields models.NewUserFields) (*models.User, error)
	byAccountFn  func(ctx context.Context, accountNumber string) (*models.User, error)
	byIdentityFn func(ctx context.Context, identityNumber string) (*models.User, error)
	updateFn     func(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	deleteFn     func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserService) CreateUser(ctx context.Context, fields models.NewUserFields) (*models.User, error) {
	return m.createFn(ctx, fields)
}
func (m *mockUserService) GetUserByAccountNumber(ctx context.Context, accountNumber string) (*models.User, error) {
	return m.byAccountFn(ctx, accountNumber)
}
func (m *mockUserService) GetUserByIdentityNumber(ctx context.Context, identityNumber string) (*models.User, error) {
	return m.byIdentityFn(ctx, identityNumber)
}
func (m *mockUserService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return m.updateFn(ctx, id, patch)
}
func (m *mockUserService) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	return m.deleteFn(ctx, id)
}

type recordingPublisher struct {
	events []models.UserEvent
}

func (p *recordingPublisher) Publish(event models.UserEvent) {
	p.events = append(p.events, event)
}

var testUser = &models.User{ID: "u1", Username: "A", AccountNumber: "ACC1", EmailAddress: "a@x.com", IdentityNumber: "ID1"}

func newTestRouter(svc *mockUserService, pub EventPublisher) http.Handler {
	h := NewUserHandler(svc, pub)
	r := chi.NewRouter()
	r.Post("/api/user", h.Create)
	r.Get("/api/user/account/{accountNumber}", h.GetByAccountNumber)
	r.Get("/api/user/identity/{identityNumber}", h.GetByIdentityNumber)
	r.Put("/api/user/{id}", h.Update)
	r.Delete("/api/user/{id}", h.Delete)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUserHandler_Create(t *testing.T) {
	pub := &recordingPublisher{}
	svc := &mockUserService{
		createFn: func(ctx context.Context, fields models.NewUserFields) (*models.User, error) {
			assert.Equal(t, "ACC1", fields.AccountNumber)
			return testUser, nil
		},
	}
	rec := do(newTestRouter(svc, pub), http.MethodPost, "/api/user",
		`{"username":"A","accountNumber":"ACC1","emailAddress":"a@x.com","identityNumber":"ID1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accountNumber":"ACC1"`)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventUserCreated, pub.events[0].Type)
}

func TestUserHandler_Create_Errors(t *testing.T) {
	svc := &mockUserService{
		createFn: func(ctx context.Context, fields models.NewUserFields) (*models.User, error) {
			return nil, fmt.Errorf("%w: duplicate key", models.ErrValidation)
		},
	}
	h := newTestRouter(svc, nil)

	rec := do(h, http.MethodPost, "/api/user", `{"accountNumber":"ACC1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")

	rec = do(h, http.MethodPost, "/api/user", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_GetByAccountNumber(t *testing.T) {
	svc := &mockUserService{
		byAccountFn: func(ctx context.Context, accountNumber string) (*models.User, error) {
			switch accountNumber {
			case "ACC1":
				return testUser, nil
			case "boom":
				return nil, errors.New("redis down")
			}
			return &models.User{}, nil
		},
	}
	h := newTestRouter(svc, nil)

	rec := do(h, http.MethodGet, "/api/user/account/ACC1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accountNumber":"ACC1"`)

	rec = do(h, http.MethodGet, "/api/user/account/nope", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/user/account/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error fetching user"}`, rec.Body.String())
}

func TestUserHandler_GetByIdentityNumber(t *testing.T) {
	svc := &mockUserService{
		byIdentityFn: func(ctx context.Context, identityNumber string) (*models.User, error) {
			switch identityNumber {
			case "ID1":
				return testUser, nil
			case "boom":
				return nil, errors.New("mongo down")
			}
			return nil, nil
		},
	}
	h := newTestRouter(svc, nil)

	rec := do(h, http.MethodGet, "/api/user/identity/ID1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"identityNumber":"ID1"`)

	rec = do(h, http.MethodGet, "/api/user/identity/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/user/identity/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUserHandler_Update(t *testing.T) {
	pub := &recordingPublisher{}
	svc := &mockUserService{
		updateFn: func(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
			switch id {
			case "u1":
				require.NotNil(t, patch.EmailAddress)
				assert.Nil(t, patch.Username)
				u := *testUser
				patch.Apply(&u)
				return &u, nil
			case "dup":
				return nil, fmt.Errorf("%w: duplicate key", models.ErrValidation)
			case "boom":
				return nil, errors.New("mongo down")
			}
			return nil, nil
		},
	}
	h := newTestRouter(svc, pub)

	rec := do(h, http.MethodPut, "/api/user/u1", `{"emailAddress":"b@x.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"emailAddress":"b@x.com"`)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventUserUpdated, pub.events[0].Type)

	rec = do(h, http.MethodPut, "/api/user/missing", `{"emailAddress":"b@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodPut, "/api/user/dup", `{"emailAddress":"b@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPut, "/api/user/boom", `{"emailAddress":"b@x.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error updating user"}`, rec.Body.String())

	assert.Len(t, pub.events, 1, "failed updates publish nothing")
}

func TestUserHandler_Delete(t *testing.T) {
	pub := &recordingPublisher{}
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, id string) (*models.User, error) {
			switch id {
			case "u1":
				return testUser, nil
			case "boom":
				return nil, errors.New("redis down")
			}
			return nil, nil
		},
	}
	h := newTestRouter(svc, pub)

	rec := do(h, http.MethodDelete, "/api/user/u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, rec.Body.String())
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventUserDeleted, pub.events[0].Type)
	assert.Equal(t, "ACC1", pub.events[0].AccountNumber)

	rec = do(h, http.MethodDelete, "/api/user/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodDelete, "/api/user/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type failingTokens struct{}

func (failingTokens) GenerateToken() (string, error) { return "", errors.New("no entropy") }

func TestAuthHandler_TokenError(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAuthHandler(failingTokens{}).Token(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error generating token"}`, rec.Body.String())
}
