package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lrivas/postly-be/internal/auth"
	"github.com/lrivas/postly-be/internal/database"
	"github.com/lrivas/postly-be/internal/models"
	"github.com/lrivas/postly-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *chi.Mux
	users  *services.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	issuer := auth.NewIssuer("test-secret", time.Hour)
	userService := services.NewUserService(db)
	postService := services.NewPostService(db)

	return &testEnv{
		router: NewRouter(issuer, userService, postService, "http://localhost:3000"),
		users:  userService,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user over the API and returns their access token.
func (e *testEnv) signup(t *testing.T, name, email string, role models.Role) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name": name, "email": email, "password": "pw", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	return tok.AccessToken
}

func decodePost(t *testing.T, rec *httptest.ResponseRecorder) models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	return post
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	env.signup(t, "Ana", "ana@example.com", models.RoleEditor)

	// Duplicate email, even with a different role, is a conflict.
	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name": "Ana 2", "email": "ana@example.com", "password": "pw", "role": models.RoleAdmin,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong password.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing and garbage tokens.
	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_StopsWorkingAfterDeactivation(t *testing.T) {
	env := newTestEnv(t)

	token := env.signup(t, "Ana", "ana@example.com", models.RoleEditor)

	rec := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "ana@example.com", me.Email)

	ok, err := env.users.DeactivateUser(me.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// The still-valid token no longer resolves to an active account.
	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserEndpoints_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	adminToken := env.signup(t, "Root", "root@example.com", models.RoleAdmin)
	editorToken := env.signup(t, "Ana", "ana@example.com", models.RoleEditor)
	lectorToken := env.signup(t, "Leo", "leo@example.com", models.RoleLector)

	for _, token := range []string{editorToken, lectorToken} {
		rec := env.do(t, http.MethodGet, "/api/v1/users", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = env.do(t, http.MethodGet, "/api/v1/users/filter?search=ana", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 3)

	rec = env.do(t, http.MethodGet, "/api/v1/users/filter?search=lector", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result models.SearchResult[models.User]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Total)

	rec = env.do(t, http.MethodGet, "/api/v1/users/"+users[0].ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/users/missing", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)

	adminToken := env.signup(t, "Root", "root@example.com", models.RoleAdmin)
	env.signup(t, "Ana", "ana@example.com", models.RoleLector)

	user, err := env.users.GetActiveUserByEmail("ana@example.com")
	require.NoError(t, err)

	// Promote via update.
	rec := env.do(t, http.MethodPut, "/api/v1/users/"+user.ID, adminToken, map[string]interface{}{
		"name": "Ana", "email": "ana@example.com", "role": models.RoleEditor, "active": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.RoleEditor, updated.Role)

	rec = env.do(t, http.MethodPut, "/api/v1/users/missing", adminToken, map[string]interface{}{
		"name": "x", "email": "x@example.com", "role": models.RoleLector, "active": true,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deactivate, then a repeat is a 404.
	rec = env.do(t, http.MethodDelete, "/api/v1/users/"+user.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/users/"+user.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Activate restores, repeat is a 404 again.
	rec = env.do(t, http.MethodPost, "/api/v1/users/"+user.ID+"/activate", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/users/"+user.ID+"/activate", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostEndpoints_RoleAndOwnership(t *testing.T) {
	env := newTestEnv(t)

	anaToken := env.signup(t, "Ana", "ana@example.com", models.RoleEditor)
	beaToken := env.signup(t, "Bea", "bea@example.com", models.RoleEditor)
	leoToken := env.signup(t, "Leo", "leo@example.com", models.RoleLector)

	// Lector cannot write, whatever the payload.
	rec := env.do(t, http.MethodPost, "/api/v1/posts", leoToken, map[string]interface{}{
		"title": "nope", "content": "nope",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/posts", anaToken, map[string]interface{}{
		"title": "Go guide", "content": "getting started", "tagNames": []string{"golang"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decodePost(t, rec)
	require.Len(t, post.Tags, 1)

	// Everyone with a role may read.
	for _, token := range []string{anaToken, beaToken, leoToken} {
		rec = env.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = env.do(t, http.MethodGet, "/api/v1/posts", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = env.do(t, http.MethodGet, "/api/v1/posts/filter?search=go", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// A role-permitted non-owner is still forbidden.
	rec = env.do(t, http.MethodPut, "/api/v1/posts/"+post.ID, beaToken, map[string]interface{}{
		"title": "hijack", "content": "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, beaToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Lector is forbidden by role before ownership is even considered.
	rec = env.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, leoToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner updates; new tags append.
	rec = env.do(t, http.MethodPut, "/api/v1/posts/"+post.ID, anaToken, map[string]interface{}{
		"title": "Go guide v2", "content": "updated", "tagNames": []string{"tutorial"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodePost(t, rec)
	assert.Equal(t, "Go guide v2", updated.Title)
	assert.Len(t, updated.Tags, 2)

	// Owner deletes; the post vanishes from reads and a second delete 404s.
	rec = env.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, anaToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, anaToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, anaToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostFilter_PaginationEnvelope(t *testing.T) {
	env := newTestEnv(t)

	token := env.signup(t, "Ana", "ana@example.com", models.RoleEditor)

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]interface{}{
			"title": fmt.Sprintf("Go post %d", i), "content": "text",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/posts/filter?search=go&offset=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.SearchResult[models.Post]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.Offset)
	assert.Equal(t, 1, result.Limit)
}

func TestListTags(t *testing.T) {
	env := newTestEnv(t)

	token := env.signup(t, "Ana", "ana@example.com", models.RoleEditor)

	rec := env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]interface{}{
		"title": "T", "content": "c", "tagNames": []string{"b", "a"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/posts/tags", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tags []models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "a", tags[0].Name)
}
