// Package models defines the client-side view of teamboard documents.
package models

import (
	"time"

	"github.com/dmitrijs2005/teamboard/internal/common"
)

// Identity is the signed-in account as the identity provider reports it.
type Identity struct {
	UserID string
	Email  string
}

// Profile is the users collection document of one account.
type Profile struct {
	ID          string
	Email       string
	Username    string
	AvatarColor string
	AvatarImage string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultProfile returns the profile shown before anything is stored.
func DefaultProfile(id, email string) Profile {
	return Profile{ID: id, Email: email, AvatarColor: common.DefaultAvatarColor}
}

// ProfilePatch is a merge patch: nil fields are left as they are.
type ProfilePatch struct {
	Email       *string
	Username    *string
	AvatarColor *string
	AvatarImage *string
}

// Apply copies the set fields of p onto profile.
func (p ProfilePatch) Apply(profile *Profile) {
	if p.Email != nil {
		profile.Email = *p.Email
	}
	if p.Username != nil {
		profile.Username = *p.Username
	}
	if p.AvatarColor != nil {
		profile.AvatarColor = *p.AvatarColor
	}
	if p.AvatarImage != nil {
		profile.AvatarImage = *p.AvatarImage
	}
}

// AuthorOnly drops the fields that posts do not carry.
func (p ProfilePatch) AuthorOnly() ProfilePatch {
	p.Email = nil
	return p
}
