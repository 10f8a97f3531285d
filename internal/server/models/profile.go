package models

import "time"

// Profile is the "users" collection: display data keyed by account id.
type Profile struct {
	ID          string
	Email       string
	Username    string
	AvatarColor string
	AvatarImage string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfilePatch changes only its non-nil fields.
type ProfilePatch struct {
	Email       *string
	Username    *string
	AvatarColor *string
	AvatarImage *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Email == nil && p.Username == nil && p.AvatarColor == nil && p.AvatarImage == nil
}

// Apply copies the patch onto profile.
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

// AuthorOnly drops the fields that posts do not snapshot.
func (p ProfilePatch) AuthorOnly() ProfilePatch {
	return ProfilePatch{Username: p.Username, AvatarColor: p.AvatarColor, AvatarImage: p.AvatarImage}
}
