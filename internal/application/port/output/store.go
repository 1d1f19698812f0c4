package output

import (
	"context"

	"parts-assistant/internal/domain/entity"
)

// SettingsStore wraps the key-value settings table. GetSetting returns
// (nil, nil) when the key does not exist.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (*entity.SystemSetting, error)
	UpsertSetting(ctx context.Context, key, value, updatedBy string) (*entity.SystemSetting, error)
}

// UpdateUser carries optional field updates; nil means leave unchanged.
type UpdateUser struct {
	Email        *string
	Username     *string
	PasswordHash *string
	Role         *entity.UserRole
}

// UserStore wraps the users table. Lookups return (nil, nil) when not found.
type UserStore interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	UpdateUser(ctx context.Context, id string, update UpdateUser) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type UpdateDriver struct {
	Name        *string
	VehicleName *string
	Phone       *string
}

type DriverStore interface {
	CreateDriver(ctx context.Context, driver *entity.Driver) (*entity.Driver, error)
	GetDriverByName(ctx context.Context, name string) (*entity.Driver, error)
	ListDrivers(ctx context.Context) ([]*entity.Driver, error)
	UpdateDriver(ctx context.Context, id string, update UpdateDriver) (*entity.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
}
