package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zwavehub/zwave-hub-server/internal/models"
)

// ========== Event Log Methods ==========

// CreateEventLog creates a new event log entry
func (s *PostgresStore) CreateEventLog(ctx context.Context, event *models.EventLog) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO event_logs (
            id, created_at, device_id, node_id, type, level,
            code, description, details
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        )`

	_, err := s.getDB().ExecContext(ctx, query,
		event.ID, event.CreatedAt, event.DeviceID, event.NodeID,
		event.Type, event.Level, event.Code, event.Description, event.Details,
	)
	return err
}

// ListEventLogs lists event logs matching the filters, newest first
func (s *PostgresStore) ListEventLogs(ctx context.Context, filters EventLogFilters, limit, offset int) ([]*models.EventLog, int64, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argn := 0

	addFilter := func(clause string, value interface{}) {
		argn++
		where += fmt.Sprintf(" AND %s $%d", clause, argn)
		args = append(args, value)
	}

	if filters.DeviceID != nil {
		addFilter("device_id =", *filters.DeviceID)
	}
	if filters.NodeID != nil {
		addFilter("node_id =", *filters.NodeID)
	}
	if filters.Type != nil {
		addFilter("type =", *filters.Type)
	}
	if filters.Level != nil {
		addFilter("level =", *filters.Level)
	}
	if filters.StartTime != nil {
		addFilter("created_at >=", *filters.StartTime)
	}
	if filters.EndTime != nil {
		addFilter("created_at <=", *filters.EndTime)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM event_logs " + where
	if err := s.getDB().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
        SELECT id, created_at, device_id, node_id, type, level,
               code, description, details
        FROM event_logs %s
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d`, where, argn+1, argn+2)
	args = append(args, limit, offset)

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*models.EventLog
	for rows.Next() {
		event := &models.EventLog{}
		err := rows.Scan(
			&event.ID, &event.CreatedAt, &event.DeviceID, &event.NodeID,
			&event.Type, &event.Level, &event.Code, &event.Description,
			&event.Details,
		)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}

	return events, total, rows.Err()
}

// DeleteEventLogsBefore prunes event logs older than the cutoff
func (s *PostgresStore) DeleteEventLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.getDB().ExecContext(ctx,
		`DELETE FROM event_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
