package entity

import "time"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is an application account. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Driver links a person to the vehicle name used by the tracking provider.
type Driver struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	VehicleName string    `json:"vehicleName"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SystemSetting is one row of the key-value settings table. The only key the
// chat path reads is SettingSystemPrompt.
type SystemSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const SettingSystemPrompt = "system_prompt"
