package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/zwavehub/zwave-hub-server/internal/models"
)

// ========== Device Group Methods ==========

// CreateDeviceGroup creates a new device group
func (s *PostgresStore) CreateDeviceGroup(ctx context.Context, group *models.DeviceGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}

	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now

	query := `
        INSERT INTO device_groups (
            id, created_at, updated_at, number, name,
            threshold_days, threshold_hours, threshold_minutes,
            modes, notify, sort_by_name
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )`

	_, err := s.getDB().ExecContext(ctx, query,
		group.ID, group.CreatedAt, group.UpdatedAt, group.Number, group.Name,
		group.ThresholdDays, group.ThresholdHours, group.ThresholdMinutes,
		pq.Array(group.Modes), group.Notify, group.SortByName,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetDeviceGroup gets a device group with its member devices
func (s *PostgresStore) GetDeviceGroup(ctx context.Context, id uuid.UUID) (*models.DeviceGroup, error) {
	query := `
        SELECT id, created_at, updated_at, number, name,
               threshold_days, threshold_hours, threshold_minutes,
               modes, notify, sort_by_name
        FROM device_groups
        WHERE id = $1`

	group := &models.DeviceGroup{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&group.ID, &group.CreatedAt, &group.UpdatedAt, &group.Number, &group.Name,
		&group.ThresholdDays, &group.ThresholdHours, &group.ThresholdMinutes,
		&group.Modes, &group.Notify, &group.SortByName,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadGroupDevices(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateDeviceGroup updates a device group
func (s *PostgresStore) UpdateDeviceGroup(ctx context.Context, group *models.DeviceGroup) error {
	group.UpdatedAt = time.Now()

	query := `
        UPDATE device_groups SET
            updated_at = $2, number = $3, name = $4,
            threshold_days = $5, threshold_hours = $6, threshold_minutes = $7,
            modes = $8, notify = $9, sort_by_name = $10
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		group.ID, group.UpdatedAt, group.Number, group.Name,
		group.ThresholdDays, group.ThresholdHours, group.ThresholdMinutes,
		pq.Array(group.Modes), group.Notify, group.SortByName,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDeviceGroup deletes a device group and its memberships
func (s *PostgresStore) DeleteDeviceGroup(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getDB().ExecContext(ctx,
		`DELETE FROM device_group_members WHERE group_id = $1`, id); err != nil {
		return err
	}

	result, err := s.getDB().ExecContext(ctx, `DELETE FROM device_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDeviceGroups lists all device groups with their member devices
func (s *PostgresStore) ListDeviceGroups(ctx context.Context) ([]*models.DeviceGroup, error) {
	query := `
        SELECT id, created_at, updated_at, number, name,
               threshold_days, threshold_hours, threshold_minutes,
               modes, notify, sort_by_name
        FROM device_groups
        ORDER BY number`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*models.DeviceGroup
	for rows.Next() {
		group := &models.DeviceGroup{}
		err := rows.Scan(
			&group.ID, &group.CreatedAt, &group.UpdatedAt, &group.Number, &group.Name,
			&group.ThresholdDays, &group.ThresholdHours, &group.ThresholdMinutes,
			&group.Modes, &group.Notify, &group.SortByName,
		)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, group := range groups {
		if err := s.loadGroupDevices(ctx, group); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// SetGroupDevices replaces a group's membership
func (s *PostgresStore) SetGroupDevices(ctx context.Context, groupID uuid.UUID, deviceIDs []uuid.UUID) error {
	if _, err := s.getDB().ExecContext(ctx,
		`DELETE FROM device_group_members WHERE group_id = $1`, groupID); err != nil {
		return err
	}

	for _, deviceID := range deviceIDs {
		_, err := s.getDB().ExecContext(ctx,
			`INSERT INTO device_group_members (group_id, device_id) VALUES ($1, $2)`,
			groupID, deviceID,
		)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				continue
			}
			return err
		}
	}

	return nil
}

// loadGroupDevices fills in a group's member devices
func (s *PostgresStore) loadGroupDevices(ctx context.Context, group *models.DeviceGroup) error {
	query := `
        SELECT` + deviceColumns + `
        FROM devices
        JOIN device_group_members m ON m.device_id = devices.id
        WHERE m.group_id = $1
        ORDER BY devices.name`

	rows, err := s.getDB().QueryContext(ctx, query, group.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	group.Devices = nil
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return err
		}
		group.Devices = append(group.Devices, device)
	}

	return rows.Err()
}
