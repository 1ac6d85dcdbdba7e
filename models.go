package authgate

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/uptrace/bun"
)

// User is the user record created from identity provider events.
// ID is the provider's user ID.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            string     `bun:"id,pk" json:"id"`
	Email         string     `bun:"email,notnull" json:"email"`
	IsSubscribed  bool       `bun:"is_subscribed,notnull,default:false" json:"is_subscribed"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// NewUser returns an unsubscribed user record
func NewUser(id, email string) *User {
	return &User{
		ID:           id,
		Email:        email,
		IsSubscribed: false,
	}
}

// Validate will validate the record before it is stored
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required, validation.Length(1, 255)),
		validation.Field(&u.Email, validation.Required, validation.Length(3, 320), is.Email),
	)
}
