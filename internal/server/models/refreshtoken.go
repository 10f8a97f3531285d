package models

import "time"

type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	AuthTime  time.Time
	Expires   time.Time
	CreatedAt time.Time
}
