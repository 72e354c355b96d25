package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/user-service/internal/config"
	"github.com/deppfellow/user-service/internal/handler"
	"github.com/deppfellow/user-service/internal/model"
	"github.com/deppfellow/user-service/internal/repository"
	"github.com/deppfellow/user-service/internal/server"
	"github.com/deppfellow/user-service/internal/service"
	"github.com/deppfellow/user-service/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("connection refused")

// failingStore fails every operation like an unreachable database.
type failingStore struct{}

func (failingStore) Create(context.Context, model.UserFields) (*model.User, error) {
	return nil, errStoreDown
}

func (failingStore) FindAll(context.Context, model.ListOptions) ([]model.User, error) {
	return nil, errStoreDown
}

func (failingStore) FindByID(context.Context, int64) (*model.User, error) {
	return nil, errStoreDown
}

func (failingStore) Update(context.Context, int64, model.UserFields) (*model.User, error) {
	return nil, errStoreDown
}

func (failingStore) Delete(context.Context, int64) (bool, error) {
	return false, errStoreDown
}

func newTestRouter(t *testing.T, store service.UserStore) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{Config: config.DefaultConfig(), Logger: &logger}

	if store == nil {
		store = repository.NewUserRepository(testutil.NewSQLiteDB(t), &logger, 0)
	}

	services := &service.Services{User: service.NewUserService(store, nil, &logger)}
	return NewRouter(s, handler.NewHandlers(s, services))
}

type response struct {
	Code int
	Body string
}

func (r response) decode(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.Body), &out), r.Body)
	return out
}

func do(t *testing.T, e *echo.Echo, method, target, body string) response {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return response{Code: rec.Code, Body: rec.Body.String()}
}

func TestUsers_AnaLifecycle(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodPost, "/users", `{"name":"Ana","email":"ana@x.io","age":30}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	created := res.decode(t)
	assert.Equal(t, true, created["success"])
	assert.Equal(t, "User created successfully", created["message"])

	user := created["user"].(map[string]any)
	assert.EqualValues(t, 1, user["id"])
	assert.Equal(t, "Ana", user["name"])
	assert.Equal(t, "ana@x.io", user["email"])
	assert.EqualValues(t, 30, user["age"])
	assert.NotEmpty(t, user["createdAt"])
	assert.NotEmpty(t, user["updatedAt"])

	res = do(t, e, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	got := res.decode(t)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "User retrieved successfully", got["message"])
	assert.Nil(t, got["error"])
	assert.Equal(t, user, got["data"])

	res = do(t, e, http.MethodPut, "/users/1", `{"age":31}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	updated := res.decode(t)
	assert.Equal(t, "User updated successfully", updated["message"])
	updatedUser := updated["user"].(map[string]any)
	assert.EqualValues(t, 31, updatedUser["age"])
	assert.Equal(t, "Ana", updatedUser["name"])
	assert.Equal(t, "ana@x.io", updatedUser["email"])

	res = do(t, e, http.MethodGet, "/users?search=an", "")
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	users := res.decode(t)["data"].(map[string]any)["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].(map[string]any)["name"])

	res = do(t, e, http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	assert.JSONEq(t, `{"success":true,"message":"User deleted successfully"}`, res.Body)

	res = do(t, e, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"success":false,"message":"User not found","data":null,"error":null}`, res.Body)

	res = do(t, e, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"success":false,"message":"User not found"}`, res.Body)
}

func TestUsers_CreateStoresNullForMissingFields(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodPost, "/users", `{"name":"Bo"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	user := res.decode(t)["user"].(map[string]any)
	assert.Contains(t, user, "email")
	assert.Nil(t, user["email"])
	assert.Nil(t, user["age"])
}

func TestUsers_ListEmpty(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"data":{"users":[]},"error":null}`, res.Body)

	res = do(t, e, http.MethodGet, "/users?search=nobody", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"data":{"users":[]},"error":null}`, res.Body)
}

func TestUsers_ListSortedByAge(t *testing.T) {
	e := newTestRouter(t, nil)

	for _, age := range []int{42, 7, 19, 7, 63} {
		res := do(t, e, http.MethodPost, "/users", fmt.Sprintf(`{"name":"u%d","age":%d}`, age, age))
		require.Equal(t, http.StatusCreated, res.Code)
	}

	res := do(t, e, http.MethodGet, "/users?sortBy=age", "")
	require.Equal(t, http.StatusOK, res.Code)

	users := res.decode(t)["data"].(map[string]any)["users"].([]any)
	require.Len(t, users, 5)

	prev := -1.0
	for _, u := range users {
		age := u.(map[string]any)["age"].(float64)
		assert.GreaterOrEqual(t, age, prev)
		prev = age
	}
}

func TestUsers_ListUnknownSortField(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodGet, "/users?sortBy=password", "")
	require.Equal(t, http.StatusInternalServerError, res.Code)

	body := res.decode(t)
	assert.Nil(t, body["data"])

	failure := body["error"].(map[string]any)
	assert.Equal(t, false, failure["success"])
	assert.Equal(t, "Unable to retrieve users", failure["message"])
	assert.Contains(t, failure["errorMessage"], "unknown sort field")
}

func TestUsers_UpdateKeepsOmittedFields(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodPost, "/users", `{"name":"Ana","email":"ana@x.io","age":30}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(t, e, http.MethodPut, "/users/1", `{}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	user := res.decode(t)["user"].(map[string]any)
	assert.Equal(t, "Ana", user["name"])
	assert.Equal(t, "ana@x.io", user["email"])
	assert.EqualValues(t, 30, user["age"])

	res = do(t, e, http.MethodPut, "/users/99", `{"age":1}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"success":false,"message":"User not found"}`, res.Body)
}

func TestUsers_UpdateNullClearsField(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodPost, "/users", `{"name":"Ana","email":"ana@x.io","age":30}`)
	require.Equal(t, http.StatusCreated, res.Code)
	created := res.decode(t)["user"].(map[string]any)

	res = do(t, e, http.MethodPut, "/users/1", `{"email":null,"age":null}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	user := res.decode(t)["user"].(map[string]any)

	assert.Contains(t, user, "email")
	assert.Nil(t, user["email"])
	assert.Nil(t, user["age"])
	assert.Equal(t, "Ana", user["name"])

	before, err := time.Parse(time.RFC3339Nano, created["updatedAt"].(string))
	require.NoError(t, err)
	after, err := time.Parse(time.RFC3339Nano, user["updatedAt"].(string))
	require.NoError(t, err)
	assert.False(t, after.Before(before))

	res = do(t, e, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Nil(t, res.decode(t)["data"].(map[string]any)["email"])
}

func TestUsers_CreateCoercesFieldTypes(t *testing.T) {
	e := newTestRouter(t, nil)

	tests := []struct {
		name      string
		body      string
		wantName  any
		wantEmail any
		wantAge   any
	}{
		{name: "numeric string age", body: `{"name":"Ana","age":"30"}`, wantName: "Ana", wantAge: 30.0},
		{name: "integral float age", body: `{"name":"Ana","age":30.0}`, wantName: "Ana", wantAge: 30.0},
		{name: "number name", body: `{"name":123}`, wantName: "123"},
		{name: "boolean email", body: `{"email":true}`, wantEmail: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, e, http.MethodPost, "/users", tt.body)
			require.Equal(t, http.StatusCreated, res.Code, res.Body)

			user := res.decode(t)["user"].(map[string]any)
			assert.Equal(t, tt.wantName, user["name"])
			assert.Equal(t, tt.wantEmail, user["email"])
			assert.Equal(t, tt.wantAge, user["age"])
		})
	}
}

func TestUsers_CreateWithoutContentType(t *testing.T) {
	e := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Ana"}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := response{Code: rec.Code, Body: rec.Body.String()}
	user := res.decode(t)["user"].(map[string]any)
	assert.Nil(t, user["name"])
	assert.Nil(t, user["email"])
	assert.Nil(t, user["age"])
}

func TestUsers_UncoercibleValuesAreStorageFaults(t *testing.T) {
	e := newTestRouter(t, nil)

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		message string
	}{
		{name: "create with text age", method: http.MethodPost, target: "/users", body: `{"name":"Ana","age":"abc"}`, message: "Unable to create user"},
		{name: "create with fractional age", method: http.MethodPost, target: "/users", body: `{"age":30.5}`, message: "Unable to create user"},
		{name: "create with object name", method: http.MethodPost, target: "/users", body: `{"name":{"first":"Ana"}}`, message: "Unable to create user"},
		{name: "update with text age", method: http.MethodPut, target: "/users/1", body: `{"age":"abc"}`, message: "Unable to update user"},
	}

	res := do(t, e, http.MethodPost, "/users", `{"name":"Ana","age":30}`)
	require.Equal(t, http.StatusCreated, res.Code)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, e, tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusInternalServerError, res.Code, res.Body)

			body := res.decode(t)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.NotEmpty(t, body["error"])
		})
	}

	res = do(t, e, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 30, res.decode(t)["data"].(map[string]any)["age"])

	res = do(t, e, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.decode(t)["data"].(map[string]any)["users"], 1)
}

func TestUsers_NonNumericIDIsNotFound(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"success":false,"message":"User not found","data":null,"error":null}`, res.Body)

	res = do(t, e, http.MethodPut, "/users/abc", `{"age":1}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"success":false,"message":"User not found"}`, res.Body)

	res = do(t, e, http.MethodDelete, "/users/abc", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"success":false,"message":"User not found"}`, res.Body)
}

func TestUsers_StorageFaults(t *testing.T) {
	e := newTestRouter(t, failingStore{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   string
	}{
		{
			name:   "create",
			method: http.MethodPost,
			target: "/users",
			body:   `{"name":"Ana"}`,
			want:   `{"success":false,"message":"Unable to create user","error":"connection refused"}`,
		},
		{
			name:   "list",
			method: http.MethodGet,
			target: "/users",
			want:   `{"data":null,"error":{"success":false,"message":"Unable to retrieve users","errorMessage":"connection refused"}}`,
		},
		{
			name:   "get",
			method: http.MethodGet,
			target: "/users/1",
			want:   `{"success":false,"message":"Unable to retrieve user","data":null,"error":"connection refused"}`,
		},
		{
			name:   "update",
			method: http.MethodPut,
			target: "/users/1",
			body:   `{"age":1}`,
			want:   `{"success":false,"message":"Unable to update user","error":"connection refused"}`,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/users/1",
			want:   `{"success":false,"message":"Unable to delete user","error":"connection refused"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, e, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusInternalServerError, res.Code)
			assert.JSONEq(t, tt.want, res.Body)
		})
	}
}

func TestUsers_MalformedJSON(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodPost, "/users", `{"name":`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	body := res.decode(t)
	assert.Equal(t, "BAD_REQUEST", body["code"])
	assert.EqualValues(t, http.StatusBadRequest, body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, res.Code)

	body := res.decode(t)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestRouter_RequestID(t *testing.T) {
	e := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRouter_Docs(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body, "/static/openapi.json")

	res = do(t, e, http.MethodGet, "/static/openapi.json", "")
	require.Equal(t, http.StatusOK, res.Code)

	doc := res.decode(t)
	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/users")
	assert.Contains(t, paths, "/users/{id}")
}

func TestRouter_StatusWithoutDependencies(t *testing.T) {
	e := newTestRouter(t, nil)

	res := do(t, e, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, res.Code)

	body := res.decode(t)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "development", body["environment"])
}
