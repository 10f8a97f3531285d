package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultAvatarColor is assigned to profiles that never picked a colour.
const DefaultAvatarColor = "#1da1f2"

// MinPasswordLength is the shortest password the identity provider accepts.
const MinPasswordLength = 6
