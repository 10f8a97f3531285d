package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/teamboard/internal/dbx"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/completions"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/emaillists"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/posts"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/tasks"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Posts(db dbx.DBTX) posts.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Completions(db dbx.DBTX) completions.Repository
	EmailList(db dbx.DBTX, list models.EmailList) emaillists.Repository
}
