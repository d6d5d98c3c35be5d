package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is the read model of a host account owned by the identity collaborator
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true;not null"`
	QRCode    *string   `json:"qr_code,omitempty" gorm:"column:qr_code;type:varchar(128);uniqueIndex"`
	PushToken *string   `json:"-" gorm:"column:push_token;type:varchar(255)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Identity returns the opaque party identity of the user
func (u *User) Identity() string {
	return u.ID.String()
}

// CanReceiveContacts checks if the user may be contacted through the doorbell
func (u *User) CanReceiveContacts() bool {
	return u.IsActive
}
