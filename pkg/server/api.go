package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/session"
	"github.com/jameshartig/sungrowmon/pkg/types"
	"github.com/jameshartig/sungrowmon/pkg/views"
)

// maxBodyBytes caps request bodies. Login forms are tiny.
const maxBodyBytes = 64 << 10

type authStatus struct {
	Authenticated bool          `json:"authenticated"`
	State         session.State `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, authStatus{
		Authenticated: s.session.Authenticated(),
		State:         s.session.State(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form views.LoginForm
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&form); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := s.session.Login(r.Context(), form)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrLoginInFlight):
		writeJSONError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, views.ErrInvalidForm):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	default:
		log.Ctx(r.Context()).ErrorContext(r.Context(), "failed to login", slog.Any("error", err))
		writeJSONError(w, "failed to login", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.session.Logout(r.Context())
	writeJSON(w, r, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleGateways(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, types.GatewayOptions())
}

func (s *Server) handleRefreshPlants(w http.ResponseWriter, r *http.Request) {
	// a failed fetch is part of the snapshot
	if err := s.session.LoadPlants(r.Context()); errors.Is(err, session.ErrNotAuthenticated) {
		writeJSONError(w, err.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, r, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSelectPlant(w http.ResponseWriter, r *http.Request) {
	psID, err := strconv.Atoi(r.PathValue("psID"))
	if err != nil {
		writeJSONError(w, "invalid plant id", http.StatusBadRequest)
		return
	}

	err = s.session.SelectPlant(r.Context(), psID)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotAuthenticated):
		writeJSONError(w, err.Error(), http.StatusUnauthorized)
		return
	case errors.Is(err, session.ErrPlantNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	default:
		log.Ctx(r.Context()).ErrorContext(r.Context(), "failed to select plant", slog.Any("error", err), slog.Int("psID", psID))
		writeJSONError(w, "failed to select plant", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.session.Back()
	writeJSON(w, r, http.StatusOK, s.session.Snapshot())
}
