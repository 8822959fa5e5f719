package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zwavehub/zwave-hub-server/internal/activity"
	"github.com/zwavehub/zwave-hub-server/internal/models"
	"github.com/zwavehub/zwave-hub-server/internal/storage"
)

// ========== Device group handlers ==========

// HandleListGroups lists device groups with members
func (s *RESTServer) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListDeviceGroups(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"result": groups,
		"total":  len(groups),
	})
}

// groupRequest is the create/update payload for a device group
type groupRequest struct {
	Number           int      `json:"number"`
	Name             string   `json:"name" validate:"required"`
	ThresholdDays    int      `json:"thresholdDays" validate:"min=0"`
	ThresholdHours   int      `json:"thresholdHours" validate:"min=0"`
	ThresholdMinutes int      `json:"thresholdMinutes" validate:"min=0"`
	Modes            []string `json:"modes"`
	Notify           bool     `json:"notify"`
	SortByName       bool     `json:"sortByName"`
}

// HandleCreateGroup creates a device group
func (s *RESTServer) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group := &models.DeviceGroup{
		Number:           req.Number,
		Name:             req.Name,
		ThresholdDays:    req.ThresholdDays,
		ThresholdHours:   req.ThresholdHours,
		ThresholdMinutes: req.ThresholdMinutes,
		Modes:            req.Modes,
		Notify:           req.Notify,
		SortByName:       req.SortByName,
	}

	if err := s.store.CreateDeviceGroup(r.Context(), group); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "group already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, group)
}

// HandleGetGroup gets a device group
func (s *RESTServer) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	group, err := s.store.GetDeviceGroup(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, group)
}

// HandleUpdateGroup updates a device group
func (s *RESTServer) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	group, err := s.store.GetDeviceGroup(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group.Number = req.Number
	group.Name = req.Name
	group.ThresholdDays = req.ThresholdDays
	group.ThresholdHours = req.ThresholdHours
	group.ThresholdMinutes = req.ThresholdMinutes
	group.Modes = req.Modes
	group.Notify = req.Notify
	group.SortByName = req.SortByName

	if err := s.store.UpdateDeviceGroup(r.Context(), group); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, group)
}

// HandleDeleteGroup deletes a device group
func (s *RESTServer) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := s.store.DeleteDeviceGroup(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleSetGroupDevices replaces a group's membership
func (s *RESTServer) HandleSetGroupDevices(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req struct {
		DeviceIDs []uuid.UUID `json:"deviceIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetGroupDevices(r.Context(), id, req.DeviceIDs); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	group, err := s.store.GetDeviceGroup(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, group)
}

// ========== Activity report ==========

// HandleActivityReport evaluates every group right now and returns the
// devices past their thresholds.
func (s *RESTServer) HandleActivityReport(w http.ResponseWriter, r *http.Request) {
	mode, err := s.store.GetHubMode(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	groups, err := s.store.ListDeviceGroups(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	inactive := activity.Evaluate(groups, mode, now)

	lines := make([]string, 0, len(inactive))
	for _, d := range inactive {
		lines = append(lines, d.Describe(now))
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"time":    now,
		"mode":    mode,
		"count":   len(inactive),
		"lines":   lines,
		"devices": inactive,
	})
}

// ========== Hub mode ==========

// HandleGetHubMode returns the current hub mode
func (s *RESTServer) HandleGetHubMode(w http.ResponseWriter, r *http.Request) {
	mode, err := s.store.GetHubMode(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"mode": mode})
}

// HandleSetHubMode sets the current hub mode
func (s *RESTServer) HandleSetHubMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetHubMode(r.Context(), req.Mode); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"mode": req.Mode})
}
