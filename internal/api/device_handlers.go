package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zwavehub/zwave-hub-server/internal/driver"
	"github.com/zwavehub/zwave-hub-server/internal/models"
	"github.com/zwavehub/zwave-hub-server/internal/storage"
)

// ========== Device handlers ==========

// HandleListDevices lists devices
func (s *RESTServer) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	devices, total, err := s.store.ListDevices(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"result": devices,
		"total":  total,
	})
}

// HandleCreateDevice creates a device
func (s *RESTServer) HandleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeID          uint8  `json:"nodeId" validate:"required,min=1"`
		Name            string `json:"name" validate:"required"`
		Description     string `json:"description"`
		SecureInclusion bool   `json:"secureInclusion"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	device := &models.Device{
		NodeID:          req.NodeID,
		Name:            req.Name,
		Description:     req.Description,
		SecureInclusion: req.SecureInclusion,
	}

	if err := s.store.CreateDevice(r.Context(), device); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "node id already registered")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, device)
}

// HandleGetDevice gets a device
func (s *RESTServer) HandleGetDevice(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, device)
}

// HandleUpdateDevice updates a device
func (s *RESTServer) HandleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Name            *string `json:"name"`
		Description     *string `json:"description"`
		IsDisabled      *bool   `json:"isDisabled"`
		SecureInclusion *bool   `json:"secureInclusion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		device.Name = *req.Name
	}
	if req.Description != nil {
		device.Description = *req.Description
	}
	if req.IsDisabled != nil {
		device.IsDisabled = *req.IsDisabled
	}
	if req.SecureInclusion != nil {
		device.SecureInclusion = *req.SecureInclusion
	}

	if err := s.store.UpdateDevice(r.Context(), device); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, device)
}

// HandleDeleteDevice deletes a device
func (s *RESTServer) HandleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	if err := s.store.DeleteDevice(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "device not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ========== Device state ==========

// HandleGetDeviceState returns the adapter's cached protocol state
func (s *RESTServer) HandleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}

	state := s.commander.Adapter(device.NodeID).State()
	s.respondJSON(w, http.StatusOK, state)
}

// HandleClearDeviceState resets the adapter's cache
func (s *RESTServer) HandleClearDeviceState(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}

	s.commander.Adapter(device.NodeID).Clear()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ========== Device commands ==========

// HandleDeviceOn switches the relay on
func (s *RESTServer) HandleDeviceOn(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}
	adapter := s.commander.Adapter(device.NodeID)
	s.sendCommands(w, r, device, "on", adapter.On())
}

// HandleDeviceOff switches the relay off
func (s *RESTServer) HandleDeviceOff(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}
	adapter := s.commander.Adapter(device.NodeID)
	s.sendCommands(w, r, device, "off", adapter.Off())
}

// HandleDeviceRefresh queries the relay state and versions
func (s *RESTServer) HandleDeviceRefresh(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}
	adapter := s.commander.Adapter(device.NodeID)
	s.sendCommands(w, r, device, "refresh", adapter.Refresh())
}

// HandleDeviceConfigure runs the first-time bootstrap sequence
func (s *RESTServer) HandleDeviceConfigure(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}
	adapter := s.commander.Adapter(device.NodeID)
	s.sendCommands(w, r, device, "configure", adapter.Configure())
}

// HandleDeviceSetLED changes an LED's color and brightness
func (s *RESTServer) HandleDeviceSetLED(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		LED        int    `json:"led" validate:"required,min=1,max=5"`
		Color      string `json:"color"`
		Brightness *int   `json:"brightness"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	adapter := s.commander.Adapter(device.NodeID)
	cmds := adapter.SetLED(req.LED, req.Color, req.Brightness)
	if len(cmds) == 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "LED change refused, check inputs and relay override setting")
		return
	}

	s.sendCommands(w, r, device, fmt.Sprintf("led %d", req.LED), cmds)
}

// HandleDeviceSetIndicator drives an LED through the indicator class
func (s *RESTServer) HandleDeviceSetIndicator(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		LED    int                 `json:"led" validate:"min=0,max=5"`
		Mode   string              `json:"mode" validate:"required,oneof=flash on off"`
		Timing *driver.FlashTiming `json:"timing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	adapter := s.commander.Adapter(device.NodeID)
	cmds := adapter.SetIndicator(req.LED, req.Mode, req.Timing)
	if len(cmds) == 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "indicator change refused, check led and mode")
		return
	}

	s.sendCommands(w, r, device, fmt.Sprintf("indicator %d %s", req.LED, req.Mode), cmds)
}

// ========== Device parameters ==========

// HandleListDeviceParameters lists known parameters with cached values
func (s *RESTServer) HandleListDeviceParameters(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}

	state := s.commander.Adapter(device.NodeID).State()

	type paramValue struct {
		driver.Parameter
		Value *uint32 `json:"value,omitempty"`
	}

	params := driver.Parameters()
	result := make([]paramValue, 0, len(params))
	for _, p := range params {
		pv := paramValue{Parameter: p}
		if v, ok := state.Parameters[p.Number]; ok {
			value := v
			pv.Value = &value
		}
		result = append(result, pv)
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
	})
}

// HandleSetDeviceParameter writes one configuration parameter
func (s *RESTServer) HandleSetDeviceParameter(w http.ResponseWriter, r *http.Request) {
	device, ok := s.deviceFromPath(w, r)
	if !ok {
		return
	}

	number, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 8)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid parameter number")
		return
	}

	var req struct {
		Value uint32 `json:"value"`
		Size  byte   `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adapter := s.commander.Adapter(device.NodeID)
	cmds := adapter.SetParameter(uint8(number), req.Value, req.Size)
	if len(cmds) == 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "parameter write refused, unknown parameter or bad size")
		return
	}

	s.sendCommands(w, r, device, fmt.Sprintf("parameter %d = %d", number, req.Value), cmds)
}

// ========== Helpers ==========

// deviceFromPath resolves the {id} path parameter to a device
func (s *RESTServer) deviceFromPath(w http.ResponseWriter, r *http.Request) (*models.Device, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return nil, false
	}

	device, err := s.store.GetDevice(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "device not found")
			return nil, false
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	return device, true
}

// sendCommands publishes commands for a device and records the call
func (s *RESTServer) sendCommands(w http.ResponseWriter, r *http.Request, device *models.Device, action string, cmds []driver.Command) {
	if err := s.commander.Send(r.Context(), device.NodeID, cmds); err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to publish commands")
		return
	}

	event := &models.EventLog{
		DeviceID:    &device.ID,
		NodeID:      &device.NodeID,
		Type:        models.EventTypeCommand,
		Level:       models.EventLevelInfo,
		Description: fmt.Sprintf("Command sent: %s", action),
		Details: models.Variables{
			"frames": len(cmds),
		},
	}
	if err := s.store.CreateEventLog(r.Context(), event); err != nil {
		log.Error().Err(err).Msg("Failed to record command event")
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "queued",
		"frames": len(cmds),
	})
}
