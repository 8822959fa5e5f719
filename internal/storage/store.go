package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zwavehub/zwave-hub-server/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int64, error)

	// Device methods
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error)
	GetDeviceByNodeID(ctx context.Context, nodeID uint8) (*models.Device, error)
	UpdateDevice(ctx context.Context, device *models.Device) error
	DeleteDevice(ctx context.Context, id uuid.UUID) error
	ListDevices(ctx context.Context, limit, offset int) ([]*models.Device, int64, error)
	TouchDeviceLastSeen(ctx context.Context, nodeID uint8, seenAt time.Time) error
	UpdateDeviceVersions(ctx context.Context, nodeID uint8, firmware, protocol, hardware, serial string) error

	// Device group methods
	CreateDeviceGroup(ctx context.Context, group *models.DeviceGroup) error
	GetDeviceGroup(ctx context.Context, id uuid.UUID) (*models.DeviceGroup, error)
	UpdateDeviceGroup(ctx context.Context, group *models.DeviceGroup) error
	DeleteDeviceGroup(ctx context.Context, id uuid.UUID) error
	ListDeviceGroups(ctx context.Context) ([]*models.DeviceGroup, error)
	SetGroupDevices(ctx context.Context, groupID uuid.UUID, deviceIDs []uuid.UUID) error

	// Event log methods
	CreateEventLog(ctx context.Context, event *models.EventLog) error
	ListEventLogs(ctx context.Context, filters EventLogFilters, limit, offset int) ([]*models.EventLog, int64, error)
	DeleteEventLogsBefore(ctx context.Context, before time.Time) (int64, error)

	// Hub settings methods
	GetHubMode(ctx context.Context) (string, error)
	SetHubMode(ctx context.Context, mode string) error

	// Close the store
	Close() error
}

// EventLogFilters represents filters for event logs
type EventLogFilters struct {
	DeviceID  *uuid.UUID
	NodeID    *uint8
	Type      *models.EventType
	Level     *models.EventLevel
	StartTime *time.Time
	EndTime   *time.Time
}
