package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/zwavehub/zwave-hub-server/internal/models"
	"github.com/zwavehub/zwave-hub-server/internal/storage"
)

// HandleListEvents lists event log entries, newest first. Filters:
// device_id, node_id, type, level, start, end (RFC 3339).
func (s *RESTServer) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var filters storage.EventLogFilters
	q := r.URL.Query()

	if v := q.Get("device_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid device_id")
			return
		}
		filters.DeviceID = &id
	}
	if v := q.Get("node_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid node_id")
			return
		}
		nodeID := uint8(n)
		filters.NodeID = &nodeID
	}
	if v := q.Get("type"); v != "" {
		t := models.EventType(v)
		filters.Type = &t
	}
	if v := q.Get("level"); v != "" {
		l := models.EventLevel(v)
		filters.Level = &l
	}
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid start time")
			return
		}
		filters.StartTime = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid end time")
			return
		}
		filters.EndTime = &t
	}

	events, total, err := s.store.ListEventLogs(r.Context(), filters, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"result": events,
		"total":  total,
	})
}
