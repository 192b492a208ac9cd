package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// User is an identity. Credential and token fields never leave the server.
type User struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty"                      json:"_id"`
	Name                     string             `bson:"name"                               json:"name"`
	Email                    string             `bson:"email"                              json:"email"`
	Password                 string             `bson:"password,omitempty"                 json:"-"`
	Role                     string             `bson:"role"                               json:"role"`
	IsVerified               bool               `bson:"isVerified"                         json:"isVerified"`
	VerificationToken        string             `bson:"verificationToken,omitempty"        json:"-"`
	VerificationTokenExpires *time.Time         `bson:"verificationTokenExpires,omitempty" json:"-"`
	ResetPasswordToken       string             `bson:"resetPasswordToken,omitempty"       json:"-"`
	ResetPasswordExpires     *time.Time         `bson:"resetPasswordExpires,omitempty"     json:"-"`
	Profession               string             `bson:"profession,omitempty"               json:"profession,omitempty"`
	Gender                   string             `bson:"gender,omitempty"                   json:"gender,omitempty"`
	Address                  string             `bson:"address,omitempty"                  json:"address,omitempty"`
	Phone                    string             `bson:"phone,omitempty"                    json:"phone,omitempty"`
	Image                    string             `bson:"image,omitempty"                    json:"image,omitempty"`
	Status                   string             `bson:"status"                             json:"status"`
	Bio                      string             `bson:"bio,omitempty"                      json:"bio,omitempty"`
	CreatedAt                time.Time          `bson:"createdAt"                          json:"createdAt"`
	UpdatedAt                time.Time          `bson:"updatedAt"                          json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// ValidRole reports whether role is a known role name.
func ValidRole(role string) bool { return role == RoleUser || role == RoleAdmin }

// ValidGender reports whether g is an accepted gender value. Empty is allowed.
func ValidGender(g string) bool {
	switch g {
	case "", "male", "female", "other":
		return true
	}
	return false
}

// ValidUserStatus reports whether s is Active or Inactive.
func ValidUserStatus(s string) bool { return s == StatusActive || s == StatusInactive }
