// Package services contains server-side business logic. This file implements
// IdentityService, the identity provider: registration, sign-in, refresh token
// rotation, sign-out and the credential changes that demand a recent sign-in.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/cryptox"
	"github.com/dmitrijs2005/teamboard/internal/dbx"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/server/auth"
	"github.com/dmitrijs2005/teamboard/internal/server/config"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/teamboard/internal/server/revocation"
	"github.com/google/uuid"
)

// Session is the result of every successful authentication: the account and a
// fresh token pair.
type Session struct {
	Account      *models.Account
	AccessToken  string
	RefreshToken string
}

type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	revoked     revocation.Store
	logger      logging.Logger
	now         func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, revoked revocation.Store, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		config:      cfg,
		revoked:     revoked,
		logger:      logger.With("module", "identity"),
		now:         time.Now,
	}
}

// SignUp registers a new account. Only addresses on the allow-list, or
// configured administrators, may register. The matching profile is created in
// the same transaction.
func (s *IdentityService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}

	if !s.config.IsBuiltinAdmin(email) {
		allowed, err := s.repomanager.EmailList(s.db, models.AllowedEmails).Contains(ctx, email)
		if err != nil {
			return nil, s.internal(ctx, "sign up", err)
		}
		if !allowed {
			return nil, common.ErrNotAllowed
		}
	}

	if len(password) < common.MinPasswordLength {
		return nil, common.ErrWeakPassword
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, s.internal(ctx, "sign up", err)
	}

	account := &models.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Accounts(tx).Create(ctx, account)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Profiles(tx).Save(ctx, created.ID, models.ProfilePatch{Email: &email}); err != nil {
			return err
		}
		session, err = s.newSession(ctx, tx, created, s.now())
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailInUse) {
			return nil, err
		}
		return nil, s.internal(ctx, "sign up", err)
	}

	s.logger.Info(ctx, "account registered", "user_id", account.ID)
	return session, nil
}

// SignIn verifies the password and opens a new session.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "sign in", err)
	}

	if err := s.checkPassword(account, password); err != nil {
		return nil, err
	}
	if account.Disabled {
		return nil, common.ErrAccountDisabled
	}

	session, err := s.newSession(ctx, s.db, account, s.now())
	if err != nil {
		return nil, s.internal(ctx, "sign in", err)
	}
	return session, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh session. Expired tokens yield ErrRefreshTokenExpired.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, s.internal(ctx, "refresh token", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := s.repomanager.Accounts(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		if account.Disabled {
			return common.ErrAccountDisabled
		}
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return err
		}
		session, err = s.newSession(ctx, tx, account, token.AuthTime)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAccountDisabled):
			return nil, err
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrInvalidToken
		}
		return nil, s.internal(ctx, "refresh token", err)
	}
	return session, nil
}

// SignOut ends every session of the caller and revokes the access token used
// for the call until it would have expired anyway.
func (s *IdentityService) SignOut(ctx context.Context, caller *models.Caller) error {
	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, caller.UserID); err != nil {
		return s.internal(ctx, "sign out", err)
	}
	if caller.TokenID != "" {
		if err := s.revoked.Revoke(ctx, caller.TokenID, caller.Expires); err != nil {
			return s.internal(ctx, "sign out", err)
		}
	}
	return nil
}

// Reauthenticate proves the caller's current password and returns a session
// whose auth time is now.
func (s *IdentityService) Reauthenticate(ctx context.Context, caller *models.Caller, password string) (*Session, error) {
	account, err := s.account(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.checkPassword(account, password); err != nil {
		return nil, err
	}

	session, err := s.newSession(ctx, s.db, account, s.now())
	if err != nil {
		return nil, s.internal(ctx, "reauthenticate", err)
	}
	return session, nil
}

// UpdateEmail changes the sign-in address and the profile copy of it.
func (s *IdentityService) UpdateEmail(ctx context.Context, caller *models.Caller, email string) (*Session, error) {
	if err := s.requireRecentAuth(caller); err != nil {
		return nil, err
	}
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := s.repomanager.Accounts(tx)
		if err := accounts.UpdateEmail(ctx, caller.UserID, email); err != nil {
			return err
		}
		if _, err := s.repomanager.Profiles(tx).Save(ctx, caller.UserID, models.ProfilePatch{Email: &email}); err != nil {
			return err
		}
		account, err := accounts.GetByID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		session, err = s.newSession(ctx, tx, account, caller.AuthTime)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailInUse) || errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, s.internal(ctx, "update email", err)
	}
	return session, nil
}

// UpdatePassword replaces the password hash. Other sessions of the caller
// lose their refresh tokens.
func (s *IdentityService) UpdatePassword(ctx context.Context, caller *models.Caller, password string) (*Session, error) {
	if err := s.requireRecentAuth(caller); err != nil {
		return nil, err
	}
	if len(password) < common.MinPasswordLength {
		return nil, common.ErrWeakPassword
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, s.internal(ctx, "update password", err)
	}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := s.repomanager.Accounts(tx)
		if err := accounts.UpdatePasswordHash(ctx, caller.UserID, hash); err != nil {
			return err
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, caller.UserID); err != nil {
			return err
		}
		account, err := accounts.GetByID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		session, err = s.newSession(ctx, tx, account, caller.AuthTime)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, s.internal(ctx, "update password", err)
	}
	return session, nil
}

// --- helpers below ---

func (s *IdentityService) account(ctx context.Context, caller *models.Caller) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, s.internal(ctx, "load account", err)
	}
	return account, nil
}

func (s *IdentityService) checkPassword(account *models.Account, password string) error {
	ok, err := cryptox.CheckPassword(account.PasswordHash, []byte(password))
	if err != nil || !ok {
		return common.ErrInvalidCredentials
	}
	return nil
}

func (s *IdentityService) requireRecentAuth(caller *models.Caller) error {
	if s.now().Sub(caller.AuthTime) > s.config.ReauthWindow {
		return common.ErrReauthenticationRequired
	}
	return nil
}

func (s *IdentityService) newSession(ctx context.Context, db dbx.DBTX, account *models.Account, authTime time.Time) (*Session, error) {
	access, err := auth.GenerateToken(account, authTime, []byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := cryptox.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, account.ID, refresh, authTime, s.config.RefreshTokenValidityDuration); err != nil {
		return nil, err
	}
	return &Session{Account: account, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *IdentityService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "identity operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s", common.ErrorInternal, op)
}
