package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

const defaultMaxPlayers = 6

type createRoomRequest struct {
	MaxPlayers int `json:"maxPlayers"`
}

// newRoomCode derives a short lowercase token from a v4 UUID.
// Uniqueness is advisory; the unique column catches the rare clash.
func newRoomCode() string {
	return strings.ToLower(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func serveCreateRoom(log zerolog.Logger, store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req createRoomRequest
		// An empty body is fine; maxPlayers just defaults.
		_ = json.NewDecoder(r.Body).Decode(&req)

		maxPlayers := req.MaxPlayers
		if maxPlayers <= 0 {
			maxPlayers = defaultMaxPlayers
		}

		for attempt := 0; attempt < 3; attempt++ {
			code := newRoomCode()
			_, err := store.CreateRoom(r.Context(), code, maxPlayers)
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			if err != nil {
				log.Error().Err(err).Msg("create room")
				writeJSON(w, http.StatusInternalServerError, apiError{Message: "Could not create room."})
				return
			}

			log.Info().Str("room", code).Int("maxPlayers", maxPlayers).Msg("room created")
			writeJSON(w, http.StatusCreated, map[string]any{"success": true, "roomCode": code})
			return
		}

		writeJSON(w, http.StatusInternalServerError, apiError{Message: "Could not create room."})
	}
}

func serveCheckRoom(store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		code := r.URL.Query().Get("roomCode")

		_, found, err := store.FindRoomByCode(r.Context(), code)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, apiError{Message: "Server error."})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"exists": found})
	}
}

// QR handler: generates a PNG QR code for the room's join URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("roomcode")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:roomcode/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func registerRoomRoutes(cfg *Config, log zerolog.Logger, store *Store, mux *httprouter.Router) {
	mux.POST(cfg.prefix+"/api/rooms/create", serveCreateRoom(log, store))
	mux.GET(cfg.prefix+"/api/rooms/check", serveCheckRoom(store))
}
