package metadata

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/common"
)

// KeyRefreshToken holds the refresh token of the persisted login.
const KeyRefreshToken = "session.refresh_token"

func usernameKey(userID string) string    { return "username_" + userID }
func avatarColorKey(userID string) string { return "avatarColor_" + userID }
func avatarImageKey(userID string) string { return "avatarImage_" + userID }

// LegacyProfile is a profile kept in local storage before profiles moved to
// the backend.
type LegacyProfile struct {
	Username    string
	AvatarColor string
	AvatarImage string
}

// LoadLegacyProfile returns the stored profile of userID, or nil when no
// username was stored. A missing colour falls back to the default one.
func LoadLegacyProfile(ctx context.Context, r Repository, userID string) (*LegacyProfile, error) {
	name, ok, err := r.Get(ctx, usernameKey(userID))
	if err != nil || !ok || name == "" {
		return nil, err
	}

	p := &LegacyProfile{Username: name, AvatarColor: common.DefaultAvatarColor}

	color, ok, err := r.Get(ctx, avatarColorKey(userID))
	if err != nil {
		return nil, err
	}
	if ok && color != "" {
		p.AvatarColor = color
	}

	image, _, err := r.Get(ctx, avatarImageKey(userID))
	if err != nil {
		return nil, err
	}
	p.AvatarImage = image

	return p, nil
}

// SaveLegacyProfile seeds the legacy keys of userID. Empty fields are not
// written.
func SaveLegacyProfile(ctx context.Context, r Repository, userID string, p LegacyProfile) error {
	for key, value := range map[string]string{
		usernameKey(userID):    p.Username,
		avatarColorKey(userID): p.AvatarColor,
		avatarImageKey(userID): p.AvatarImage,
	} {
		if value == "" {
			continue
		}
		if err := r.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
