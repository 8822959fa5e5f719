package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zwavehub/zwave-hub-server/internal/models"
)

// ========== Device Methods ==========

// CreateDevice creates a new device
func (s *PostgresStore) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}

	now := time.Now()
	device.CreatedAt = now
	device.UpdatedAt = now

	query := `
        INSERT INTO devices (
            id, created_at, updated_at, node_id, name, description,
            is_disabled, secure_inclusion,
            firmware_version, protocol_version, hardware_version, serial_number
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
        )`

	_, err := s.getDB().ExecContext(ctx, query,
		device.ID, device.CreatedAt, device.UpdatedAt, device.NodeID,
		device.Name, device.Description, device.IsDisabled, device.SecureInclusion,
		device.FirmwareVersion, device.ProtocolVersion, device.HardwareVersion,
		device.SerialNumber,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

const deviceColumns = `
        id, created_at, updated_at, node_id, name, description,
        is_disabled, secure_inclusion, last_seen_at,
        firmware_version, protocol_version, hardware_version, serial_number`

// scanDevice scans one device row
func scanDevice(row interface{ Scan(...interface{}) error }) (*models.Device, error) {
	device := &models.Device{}
	err := row.Scan(
		&device.ID, &device.CreatedAt, &device.UpdatedAt, &device.NodeID,
		&device.Name, &device.Description, &device.IsDisabled,
		&device.SecureInclusion, &device.LastSeenAt,
		&device.FirmwareVersion, &device.ProtocolVersion,
		&device.HardwareVersion, &device.SerialNumber,
	)
	if err != nil {
		return nil, err
	}
	return device, nil
}

// GetDevice gets a device by id
func (s *PostgresStore) GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	query := `SELECT` + deviceColumns + ` FROM devices WHERE id = $1`

	device, err := scanDevice(s.getDB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

// GetDeviceByNodeID gets a device by its mesh node id
func (s *PostgresStore) GetDeviceByNodeID(ctx context.Context, nodeID uint8) (*models.Device, error) {
	query := `SELECT` + deviceColumns + ` FROM devices WHERE node_id = $1`

	device, err := scanDevice(s.getDB().QueryRowContext(ctx, query, nodeID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

// UpdateDevice updates a device
func (s *PostgresStore) UpdateDevice(ctx context.Context, device *models.Device) error {
	device.UpdatedAt = time.Now()

	query := `
        UPDATE devices SET
            updated_at = $2, node_id = $3, name = $4, description = $5,
            is_disabled = $6, secure_inclusion = $7,
            firmware_version = $8, protocol_version = $9,
            hardware_version = $10, serial_number = $11
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		device.ID, device.UpdatedAt, device.NodeID, device.Name,
		device.Description, device.IsDisabled, device.SecureInclusion,
		device.FirmwareVersion, device.ProtocolVersion, device.HardwareVersion,
		device.SerialNumber,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
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

// DeleteDevice deletes a device
func (s *PostgresStore) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
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

// ListDevices lists devices with pagination
func (s *PostgresStore) ListDevices(ctx context.Context, limit, offset int) ([]*models.Device, int64, error) {
	var total int64
	if err := s.getDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + deviceColumns + `
        FROM devices
        ORDER BY name
        LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, 0, err
		}
		devices = append(devices, device)
	}

	return devices, total, rows.Err()
}

// TouchDeviceLastSeen records activity from a node
func (s *PostgresStore) TouchDeviceLastSeen(ctx context.Context, nodeID uint8, seenAt time.Time) error {
	result, err := s.getDB().ExecContext(ctx,
		`UPDATE devices SET last_seen_at = $2, updated_at = $2 WHERE node_id = $1`,
		nodeID, seenAt,
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

// UpdateDeviceVersions records version and serial information reported
// by a node. Empty strings leave the stored value alone.
func (s *PostgresStore) UpdateDeviceVersions(ctx context.Context, nodeID uint8, firmware, protocol, hardware, serial string) error {
	query := `
        UPDATE devices SET
            updated_at = NOW(),
            firmware_version = COALESCE(NULLIF($2, ''), firmware_version),
            protocol_version = COALESCE(NULLIF($3, ''), protocol_version),
            hardware_version = COALESCE(NULLIF($4, ''), hardware_version),
            serial_number    = COALESCE(NULLIF($5, ''), serial_number)
        WHERE node_id = $1`

	result, err := s.getDB().ExecContext(ctx, query, nodeID, firmware, protocol, hardware, serial)
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
