package services

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/config"
	"github.com/google/uuid"
)

// validateEmail normalizes email and rejects anything that is not a bare
// address.
func validateEmail(email string) (string, error) {
	email = config.NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return "", common.ErrInvalidEmail
	}
	return email, nil
}

// validateID rejects ids that are not UUIDs, so malformed input never
// reaches the database as a driver error.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid id %q", common.ErrValidation, id)
	}
	return nil
}
