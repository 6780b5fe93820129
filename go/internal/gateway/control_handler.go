package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcdev12/courtclock/go/internal/entitlement"
	"github.com/mcdev12/courtclock/go/internal/models"
	"github.com/mcdev12/courtclock/go/internal/score"
	"github.com/mcdev12/courtclock/go/internal/session"
)

// Board is the operator-facing surface of a scoreboard session.
type Board interface {
	State(ctx context.Context) (session.Snapshot, error)
	Toggle(ctx context.Context) (session.Snapshot, error)
	Skip(ctx context.Context) (session.Snapshot, error)
	Reset(ctx context.Context) (session.Snapshot, error)
	AdjustScore(ctx context.Context, side score.Side, delta int) (session.Snapshot, error)
	UpdateSettings(ctx context.Context, settings models.GameSettings) (session.Snapshot, error)
	UpdateTeam(ctx context.Context, side score.Side, u models.TeamUpdate) (session.Snapshot, error)
	SetMuted(ctx context.Context, muted bool) (session.Snapshot, error)

	RecordMatch(ctx context.Context) (models.GameStat, error)
	DeleteMatch(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	History(ctx context.Context) ([]models.GameStat, error)

	SaveProfile(ctx context.Context, name string) (models.SettingsProfile, error)
	DeleteProfile(ctx context.Context, id string) error
	LoadProfile(ctx context.Context, id string) (session.Snapshot, error)
	Profiles(ctx context.Context) ([]models.SettingsProfile, error)

	Activate(ctx context.Context, key string) (bool, session.Snapshot, error)
	Entitlement(ctx context.Context) (entitlement.Status, error)
}

// ControlHandler serves the operator JSON API.
type ControlHandler struct {
	board Board
}

func NewControlHandler(board Board) *ControlHandler {
	return &ControlHandler{board: board}
}

// Routes mounts the API on r.
func (h *ControlHandler) Routes(r chi.Router) {
	r.Get("/state", h.getState)

	r.Route("/clock", func(r chi.Router) {
		r.Post("/toggle", h.snapshotAction(h.board.Toggle))
		r.Post("/skip", h.snapshotAction(h.board.Skip))
		r.Post("/reset", h.snapshotAction(h.board.Reset))
	})

	r.Post("/score/{side}/gesture", h.scoreGesture)
	r.Post("/score/{side}/{delta}", h.adjustScore)
	r.Put("/settings", h.updateSettings)
	r.Put("/teams/{side}", h.updateTeam)
	r.Post("/mute", h.setMuted)

	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.listHistory)
		r.Post("/", h.recordMatch)
		r.Delete("/", h.clearHistory)
		r.Delete("/{id}", h.deleteMatch)
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", h.listProfiles)
		r.Post("/", h.saveProfile)
		r.Post("/{id}/load", h.loadProfile)
		r.Delete("/{id}", h.deleteProfile)
	})

	r.Get("/entitlement", h.getEntitlement)
	r.Post("/entitlement/activate", h.activate)
}

func (h *ControlHandler) getState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.board.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ControlHandler) snapshotAction(fn func(context.Context) (session.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := fn(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func parseSide(r *http.Request) (score.Side, error) {
	return score.ParseSide(chi.URLParam(r, "side"))
}

func (h *ControlHandler) adjustScore(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var delta int
	switch chi.URLParam(r, "delta") {
	case "up":
		delta = 1
	case "down":
		delta = -1
	default:
		writeError(w, fmt.Errorf("%w: delta must be up or down", errBadRequest))
		return
	}

	snap, err := h.board.AdjustScore(r.Context(), side, delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type gestureRequest struct {
	StartY float64 `json:"start_y"`
	EndY   float64 `json:"end_y"`
}

// scoreGesture resolves a vertical drag on a score digit. Drags within the
// threshold leave the score alone and return the current state.
func (h *ControlHandler) scoreGesture(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req gestureRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var snap session.Snapshot
	if delta, ok := score.GestureDelta(req.StartY, req.EndY); ok {
		snap, err = h.board.AdjustScore(r.Context(), side, delta)
	} else {
		snap, err = h.board.State(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ControlHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	settings := models.DefaultGameSettings()
	if err := decode(w, r, &settings); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.board.UpdateSettings(r.Context(), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ControlHandler) updateTeam(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var update models.TeamUpdate
	if err := decode(w, r, &update); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.board.UpdateTeam(r.Context(), side, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

func (h *ControlHandler) setMuted(w http.ResponseWriter, r *http.Request) {
	var req muteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.board.SetMuted(r.Context(), req.Muted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ControlHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.board.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *ControlHandler) recordMatch(w http.ResponseWriter, r *http.Request) {
	stat, err := h.board.RecordMatch(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stat)
}

func (h *ControlHandler) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.board.ClearHistory(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ControlHandler) deleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := h.board.DeleteMatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ControlHandler) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.board.Profiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

type saveProfileRequest struct {
	ProfileName string `json:"profile_name"`
}

func (h *ControlHandler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req saveProfileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.board.SaveProfile(r.Context(), req.ProfileName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *ControlHandler) loadProfile(w http.ResponseWriter, r *http.Request) {
	snap, err := h.board.LoadProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ControlHandler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.board.DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type entitlementResponse struct {
	DeviceID string             `json:"device_id"`
	Status   entitlement.Status `json:"status"`
}

func (h *ControlHandler) getEntitlement(w http.ResponseWriter, r *http.Request) {
	status, err := h.board.Entitlement(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.board.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entitlementResponse{DeviceID: snap.DeviceID, Status: status})
}

type activateRequest struct {
	Key string `json:"key"`
}

func (h *ControlHandler) activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ok, snap, err := h.board.Activate(r.Context(), req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, ErrInvalidKey)
		return
	}
	writeJSON(w, http.StatusOK, entitlementResponse{DeviceID: snap.DeviceID, Status: snap.Entitlement})
}
