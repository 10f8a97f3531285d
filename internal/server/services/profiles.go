package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
)

// ProfileService serves the "users" collection.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      *Access
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, access *Access) *ProfileService {
	return &ProfileService{db: db, repomanager: m, access: access}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Profiles(s.db).Get(ctx, id)
}

// Save merges patch into the caller's own profile.
func (s *ProfileService) Save(ctx context.Context, caller *models.Caller, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	if userID != caller.UserID {
		return nil, common.ErrForbidden
	}
	if patch.Email != nil {
		email, err := validateEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	return s.repomanager.Profiles(s.db).Save(ctx, userID, patch)
}

func (s *ProfileService) List(ctx context.Context, caller *models.Caller) ([]*models.Profile, error) {
	if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
		return nil, err
	}
	return s.repomanager.Profiles(s.db).List(ctx)
}

// Delete removes a profile. The caller's posts are not touched here.
func (s *ProfileService) Delete(ctx context.Context, caller *models.Caller, id string) error {
	if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	return s.repomanager.Profiles(s.db).Delete(ctx, id)
}
