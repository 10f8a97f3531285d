package services

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/dbx"
	"github.com/dmitrijs2005/teamboard/internal/server/config"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
)

// Access decides administrator status: the configured administrators plus
// everyone on the admin email list.
type Access struct {
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

func NewAccess(m repomanager.RepositoryManager, cfg *config.Config) *Access {
	return &Access{repomanager: m, config: cfg}
}

func (a *Access) IsAdmin(ctx context.Context, db dbx.DBTX, email string) (bool, error) {
	if a.config.IsBuiltinAdmin(email) {
		return true, nil
	}
	return a.repomanager.EmailList(db, models.AdminEmails).Contains(ctx, config.NormalizeEmail(email))
}

// RequireAdmin returns common.ErrForbidden unless caller is an administrator.
func (a *Access) RequireAdmin(ctx context.Context, db dbx.DBTX, caller *models.Caller) error {
	ok, err := a.IsAdmin(ctx, db, caller.Email)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrForbidden
	}
	return nil
}
