package models

import "time"

// EmailList names one of the two managed address lists.
type EmailList string

const (
	AllowedEmails EmailList = "allowed_emails"
	AdminEmails   EmailList = "admin_emails"
)

type EmailEntry struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
