// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth methods a User can sign in with.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)

// User is an account that can create campgrounds and write reviews.
type User struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	UsernameCI   string             `bson:"username_ci"` // unique
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	AuthMethod   string             `bson:"auth_method"`
	GoogleID     *string            `bson:"google_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}
