package models

import "time"

// AuthProvider names the identity provider that first vouched for a user.
type AuthProvider string

const (
	ProviderEmergent AuthProvider = "emergent"
	ProviderFirebase AuthProvider = "firebase"
)

// User is keyed by email; profile fields are fixed by the first login.
type User struct {
	ID           string       `bson:"_id" json:"id"`
	Email        string       `bson:"email" json:"email"`
	Name         string       `bson:"name" json:"name"`
	Picture      string       `bson:"picture,omitempty" json:"picture,omitempty"`
	AuthProvider AuthProvider `bson:"auth_provider" json:"auth_provider"`

	EnrolledPaths []string               `bson:"enrolled_paths" json:"enrolled_paths"`
	Preferences   map[string]interface{} `bson:"preferences" json:"preferences"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
