package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*httprouter.Router, *Store) {
	t.Helper()

	store := newTestStore(t)
	cfg := &Config{}
	mux := httprouter.New()
	registerAuthRoutes(cfg, zerolog.Nop(), store, mux)
	registerRoomRoutes(cfg, zerolog.Nop(), store, mux)

	return mux, store
}

func postJSON(t *testing.T, mux *httprouter.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestSignupCreatesUser(t *testing.T) {
	mux, store := newTestAPI(t)

	rec := postJSON(t, mux, "/api/auth/signup", `{"name":"Alice","username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["userId"])

	user, found, err := store.FindUserByName(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, "hunter2", user.Password, "password must be stored hashed")
}

func TestSignupRejectsMissingFields(t *testing.T) {
	mux, _ := newTestAPI(t)

	rec := postJSON(t, mux, "/api/auth/signup", `{"name":"Alice","username":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name, username, and password are required.", decodeBody(t, rec)["message"])
}

func TestSignupRejectsMalformedBody(t *testing.T) {
	mux, _ := newTestAPI(t)

	rec := postJSON(t, mux, "/api/auth/signup", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupRejectsTakenUsername(t *testing.T) {
	mux, _ := newTestAPI(t)

	rec := postJSON(t, mux, "/api/auth/signup", `{"name":"Alice","username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, mux, "/api/auth/signup", `{"name":"Other","username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username is already taken.", decodeBody(t, rec)["message"])
}

func TestLoginSucceeds(t *testing.T) {
	mux, _ := newTestAPI(t)

	rec := postJSON(t, mux, "/api/auth/signup", `{"name":"Alice","username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, mux, "/api/auth/login", `{"username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Alice", body["name"])
}

func TestLoginDoesNotRevealWhichFieldFailed(t *testing.T) {
	mux, _ := newTestAPI(t)

	rec := postJSON(t, mux, "/api/auth/signup", `{"name":"Alice","username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPassword := postJSON(t, mux, "/api/auth/login", `{"username":"alice","password":"wrong"}`)
	unknownUser := postJSON(t, mux, "/api/auth/login", `{"username":"nobody","password":"hunter2"}`)

	require.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	require.Equal(t, http.StatusBadRequest, unknownUser.Code)
	assert.Equal(t, "Invalid username or password.", decodeBody(t, wrongPassword)["message"])
	assert.Equal(t, "Invalid username or password.", decodeBody(t, unknownUser)["message"])
}
