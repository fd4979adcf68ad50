package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type signupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func serveSignup(log zerolog.Logger, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Message: "Invalid request body."})
			return
		}

		if req.Name == "" || req.Username == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, apiError{Message: "Name, username, and password are required."})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, apiError{Message: "Server error."})
			return
		}

		userID, err := store.CreateUser(r.Context(), req.Name, req.Username, string(hash))
		if errors.Is(err, ErrDuplicate) {
			writeJSON(w, http.StatusBadRequest, apiError{Message: "Username is already taken."})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("create user")
			writeJSON(w, http.StatusInternalServerError, apiError{Message: "Could not create user."})
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "userId": userID})
	}
}

func serveLogin(log zerolog.Logger, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Message: "Invalid request body."})
			return
		}

		user, found, err := store.FindUserByName(r.Context(), req.Username)
		if err != nil {
			log.Error().Err(err).Msg("find user")
			writeJSON(w, http.StatusInternalServerError, apiError{Message: "Server error."})
			return
		}
		if !found {
			writeJSON(w, http.StatusBadRequest, apiError{Message: "Invalid username or password."})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Message: "Invalid username or password."})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "userId": user.ID, "name": user.Name})
	}
}

func registerAuthRoutes(cfg *Config, log zerolog.Logger, store *Store, mux *httprouter.Router) {
	mux.POST(cfg.prefix+"/api/auth/signup", serveSignup(log, store))
	mux.POST(cfg.prefix+"/api/auth/login", serveLogin(log, store))
}
