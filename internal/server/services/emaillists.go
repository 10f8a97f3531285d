package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/config"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// EmailListService manages the allowed and admin email lists.
type EmailListService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      *Access
	config      *config.Config
}

func NewEmailListService(db *sql.DB, m repomanager.RepositoryManager, access *Access, cfg *config.Config) *EmailListService {
	return &EmailListService{db: db, repomanager: m, access: access, config: cfg}
}

func (s *EmailListService) List(ctx context.Context, caller *models.Caller, list models.EmailList) ([]*models.EmailEntry, error) {
	if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
		return nil, err
	}
	return s.repomanager.EmailList(s.db, list).List(ctx)
}

func (s *EmailListService) Add(ctx context.Context, caller *models.Caller, list models.EmailList, email string) (*models.EmailEntry, error) {
	if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
		return nil, err
	}
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	return s.repomanager.EmailList(s.db, list).Add(ctx, &models.EmailEntry{ID: uuid.NewString(), Email: email})
}

// Remove deletes email from list. The protected administrator can never be
// removed from the admin list, whoever asks.
func (s *EmailListService) Remove(ctx context.Context, caller *models.Caller, list models.EmailList, email string) error {
	if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
		return err
	}
	if list == models.AdminEmails && s.config.IsProtectedAdmin(email) {
		return common.ErrProtected
	}
	return s.repomanager.EmailList(s.db, list).Remove(ctx, config.NormalizeEmail(email))
}

// IsListed reports whether email is on list. For the admin list the answer
// includes the configured administrators. Callers may ask about their own
// address; administrators about any.
func (s *EmailListService) IsListed(ctx context.Context, caller *models.Caller, list models.EmailList, email string) (bool, error) {
	email = config.NormalizeEmail(email)
	if email != config.NormalizeEmail(caller.Email) {
		if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
			return false, err
		}
	}
	if list == models.AdminEmails {
		return s.access.IsAdmin(ctx, s.db, email)
	}
	return s.repomanager.EmailList(s.db, list).Contains(ctx, email)
}
