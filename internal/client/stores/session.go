// Package stores holds the client-side state of a teamboard session: who is
// signed in (SessionStore), the live feed (FeedStore) and the shared task
// list (TaskStore).
//
// Stores are built once by the application and passed around by reference.
// The feed and task stores follow the session store: they open their live
// subscriptions when a session starts and drop them, together with every
// collection they hold, when it ends.
package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/client"
	"github.com/dmitrijs2005/teamboard/internal/client/config"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/netx"
)

// CredentialState tracks an email or password change that may need the
// current password first.
type CredentialState int

const (
	CredentialIdle CredentialState = iota
	CredentialNeedsReauth
	CredentialCompleted
)

func (s CredentialState) String() string {
	switch s {
	case CredentialNeedsReauth:
		return "needs-reauth"
	case CredentialCompleted:
		return "completed"
	default:
		return "idle"
	}
}

type credentialKind int

const (
	changeEmail credentialKind = iota
	changePassword
)

type credentialChange struct {
	kind  credentialKind
	value string
}

// Session is a snapshot of the signed-in user.
type Session struct {
	Identity models.Identity
	Profile  models.Profile
	Admin    bool
}

// SessionListener is told about every session start, and about the end of
// the session with s == nil.
type SessionListener func(ctx context.Context, s *Session)

type SessionStore struct {
	backend client.Client
	local   metadata.Repository
	cfg     *config.Config
	logger  logging.Logger

	mu        sync.Mutex
	identity  *models.Identity
	profile   models.Profile
	admin     bool
	loading   bool
	epoch     uint64
	credState CredentialState
	pending   *credentialChange
	listeners []SessionListener

	unsubscribe func()
}

// NewSessionStore wires the store to the backend's auth state notifications.
// local is only read for the one-way migration of legacy profiles.
func NewSessionStore(backend client.Client, local metadata.Repository, cfg *config.Config, logger logging.Logger) *SessionStore {
	s := &SessionStore{
		backend: backend,
		local:   local,
		cfg:     cfg,
		logger:  logger.With("store", "session"),
		loading: true,
	}
	s.unsubscribe = backend.OnAuthStateChanged(s.onAuthStateChanged)
	return s
}

// Close stops listening to the backend.
func (s *SessionStore) Close() {
	s.unsubscribe()
}

// OnSessionChange registers fn. Listeners run synchronously, in registration
// order, outside the store lock.
func (s *SessionStore) OnSessionChange(fn SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *SessionStore) notify(ctx context.Context, sess *Session) {
	s.mu.Lock()
	fns := append([]SessionListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ctx, sess)
	}
}

// Current returns the signed-in session, or nil.
func (s *SessionStore) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() *Session {
	if s.identity == nil {
		return nil
	}
	return &Session{Identity: *s.identity, Profile: s.profile, Admin: s.admin}
}

// Loading reports whether the stored login has not been checked yet.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SessionStore) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.admin
}

func (s *SessionStore) CredentialState() CredentialState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credState
}

func (s *SessionStore) requireIdentity() (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return models.Identity{}, common.ErrNotAuthenticated
	}
	return *s.identity, nil
}

func (s *SessionStore) requireAdmin() (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return models.Identity{}, common.ErrNotAuthenticated
	}
	if !s.admin {
		return models.Identity{}, common.ErrForbidden
	}
	return *s.identity, nil
}

// onAuthStateChanged handles sign-ins and sign-outs the backend reports on
// its own. A backend-ended session is torn down on a separate goroutine,
// since the notification may arrive from inside a store's watch goroutine.
func (s *SessionStore) onAuthStateChanged(id *models.Identity) {
	if id != nil {
		ctx, cancel := s.requestContext(context.Background())
		defer cancel()
		s.begin(ctx, id)
		return
	}

	s.mu.Lock()
	s.loading = false
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	epoch := s.epoch
	s.mu.Unlock()

	go s.end(context.Background(), epoch)
}

// Restore resumes the login kept on disk. It returns nil when there is none.
func (s *SessionStore) Restore(ctx context.Context) (*Session, error) {
	_, err := s.backend.Restore(ctx)

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return s.Current(), nil
}

// begin loads the profile and the administrator flag of id and starts the
// session.
func (s *SessionStore) begin(ctx context.Context, id *models.Identity) *Session {
	profile, err := s.loadProfile(ctx, *id)
	if err != nil {
		s.logger.Warn(ctx, "fetch profile", "user", id.UserID, "error", err)
		profile = models.DefaultProfile(id.UserID, id.Email)
	}
	admin := s.deriveAdmin(ctx, id.Email)

	s.mu.Lock()
	copied := *id
	s.identity = &copied
	s.profile = profile
	s.admin = admin
	s.loading = false
	s.credState = CredentialIdle
	s.pending = nil
	s.epoch++
	sess := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "session started", "user", id.UserID, "admin", admin)
	s.notify(ctx, sess)
	return sess
}

// end clears the session unless another one started after epoch.
func (s *SessionStore) end(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	if s.identity == nil || s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	uid := s.identity.UserID
	s.identity = nil
	s.profile = models.Profile{}
	s.admin = false
	s.credState = CredentialIdle
	s.pending = nil
	s.epoch++
	s.mu.Unlock()

	s.logger.Info(ctx, "session ended", "user", uid)
	s.notify(ctx, nil)
}

func (s *SessionStore) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// deriveAdmin is the union of the configured administrators and the admin
// list. A failed lookup counts as "not listed".
func (s *SessionStore) deriveAdmin(ctx context.Context, email string) bool {
	if s.cfg.IsBuiltinAdmin(email) {
		return true
	}
	listed, err := s.backend.IsEmailListed(ctx, models.ListAdmin, email)
	if err != nil {
		s.logger.Warn(ctx, "admin lookup", "error", err)
		return false
	}
	return listed
}

func (s *SessionStore) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		// An empty password never creates an account, and the backend
		// rejects an unlisted or malformed email before it reads the password.
		_, err := s.backend.SignUp(ctx, email, "")
		if errors.Is(err, common.ErrNotAllowed) || errors.Is(err, common.ErrInvalidEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: display name is required", common.ErrValidation)
	}

	id, err := s.backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	color := common.DefaultAvatarColor
	image := ""
	_, saveErr := s.backend.SaveProfile(ctx, id.UserID, models.ProfilePatch{
		Email:       &id.Email,
		Username:    &displayName,
		AvatarColor: &color,
		AvatarImage: &image,
	})
	if saveErr != nil {
		s.logger.Error(ctx, "save profile after sign-up", "user", id.UserID, "error", saveErr)
	}

	sess := s.begin(ctx, id)
	if saveErr != nil {
		return sess, fmt.Errorf("save profile: %w", saveErr)
	}
	return sess, nil
}

func (s *SessionStore) Login(ctx context.Context, email, password string) (*Session, error) {
	id, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, id), nil
}

// Logout ends the session locally even when the backend cannot be told.
func (s *SessionStore) Logout(ctx context.Context) error {
	err := s.backend.SignOut(ctx)
	if err != nil {
		s.logger.Warn(ctx, "sign out", "error", err)
	}
	s.end(ctx, s.currentEpoch())
	return err
}

// FetchProfile reloads the signed-in user's profile from the backend.
func (s *SessionStore) FetchProfile(ctx context.Context) (*models.Profile, error) {
	id, err := s.requireIdentity()
	if err != nil {
		return nil, err
	}

	p, err := s.loadProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.identity != nil && s.identity.UserID == id.UserID {
		s.profile = p
	}
	s.mu.Unlock()

	return &p, nil
}

// loadProfile reads the profile document. When there is none, a legacy
// profile kept on this machine is migrated to the backend once.
func (s *SessionStore) loadProfile(ctx context.Context, id models.Identity) (models.Profile, error) {
	p, err := s.backend.GetProfile(ctx, id.UserID)
	if err == nil {
		if p.AvatarColor == "" {
			p.AvatarColor = common.DefaultAvatarColor
		}
		return *p, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return models.Profile{}, err
	}

	legacy, err := metadata.LoadLegacyProfile(ctx, s.local, id.UserID)
	if err != nil {
		return models.Profile{}, err
	}
	if legacy == nil {
		return models.DefaultProfile(id.UserID, id.Email), nil
	}

	saved, err := s.backend.SaveProfile(ctx, id.UserID, models.ProfilePatch{
		Email:       &id.Email,
		Username:    &legacy.Username,
		AvatarColor: &legacy.AvatarColor,
		AvatarImage: &legacy.AvatarImage,
	})
	if err != nil {
		return models.Profile{}, fmt.Errorf("migrate legacy profile: %w", err)
	}
	s.logger.Info(ctx, "legacy profile migrated", "user", id.UserID)
	return *saved, nil
}

func (s *SessionStore) UpdateUsername(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		if _, err := s.requireIdentity(); err != nil {
			return err
		}
		return fmt.Errorf("%w: display name is required", common.ErrValidation)
	}
	return s.updateProfile(ctx, models.ProfilePatch{Username: &name})
}

func (s *SessionStore) UpdateAvatarColor(ctx context.Context, color string) error {
	color = strings.TrimSpace(color)
	if color == "" {
		if _, err := s.requireIdentity(); err != nil {
			return err
		}
		return fmt.Errorf("%w: avatar color is required", common.ErrValidation)
	}
	return s.updateProfile(ctx, models.ProfilePatch{AvatarColor: &color})
}

// UpdateAvatarImage points the avatar at an uploaded object key. An empty
// key removes the image.
func (s *SessionStore) UpdateAvatarImage(ctx context.Context, key string) error {
	return s.updateProfile(ctx, models.ProfilePatch{AvatarImage: &key})
}

// UploadAvatarImage stores body as the new avatar image and returns its key.
func (s *SessionStore) UploadAvatarImage(ctx context.Context, contentType string, body []byte) (string, error) {
	if _, err := s.requireIdentity(); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: image is empty", common.ErrValidation)
	}

	key, url, err := s.backend.AvatarUploadURL(ctx)
	if err != nil {
		return "", err
	}
	if err := netx.UploadToPresignedURL(ctx, url, contentType, body); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := s.UpdateAvatarImage(ctx, key); err != nil {
		return "", err
	}
	return key, nil
}

// updateProfile writes patch to the profile and to every post the user
// wrote, in one batch.
func (s *SessionStore) updateProfile(ctx context.Context, patch models.ProfilePatch) error {
	id, err := s.requireIdentity()
	if err != nil {
		return err
	}

	posts, err := s.backend.ListPosts(ctx, models.PostFilter{Kind: models.FilterAuthor, UserID: id.UserID})
	if err != nil {
		return err
	}

	writes := make([]models.Write, 0, len(posts)+1)
	writes = append(writes, models.UpdateWrite(models.CollectionUsers, id.UserID, patch))
	author := patch.AuthorOnly()
	for _, p := range posts {
		writes = append(writes, models.UpdateWrite(models.CollectionPosts, p.ID, author))
	}

	if err := s.backend.Commit(ctx, writes); err != nil {
		return err
	}

	s.mu.Lock()
	if s.identity != nil && s.identity.UserID == id.UserID {
		patch.Apply(&s.profile)
	}
	s.mu.Unlock()

	s.logger.Debug(ctx, "profile updated", "user", id.UserID, "posts", len(posts))
	return nil
}

// UpdateEmail changes the sign-in email. When the backend wants the current
// password first, the change is kept and ErrReauthenticationRequired is
// returned; Reauthenticate then finishes it.
func (s *SessionStore) UpdateEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	return s.changeCredential(ctx, credentialChange{kind: changeEmail, value: email})
}

func (s *SessionStore) UpdatePassword(ctx context.Context, password string) error {
	return s.changeCredential(ctx, credentialChange{kind: changePassword, value: password})
}

func (s *SessionStore) changeCredential(ctx context.Context, change credentialChange) error {
	if _, err := s.requireIdentity(); err != nil {
		return err
	}

	err := s.applyCredential(ctx, change)
	if errors.Is(err, common.ErrReauthenticationRequired) {
		s.mu.Lock()
		s.credState = CredentialNeedsReauth
		s.pending = &change
		s.mu.Unlock()
		return err
	}
	if err != nil {
		return err
	}

	s.completeCredential(ctx, change)
	return nil
}

// Reauthenticate proves the current password and replays a pending change.
func (s *SessionStore) Reauthenticate(ctx context.Context, password string) error {
	if _, err := s.requireIdentity(); err != nil {
		return err
	}
	if err := s.backend.Reauthenticate(ctx, password); err != nil {
		return err
	}

	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()

	if pending == nil {
		return nil
	}
	if err := s.applyCredential(ctx, *pending); err != nil {
		return err
	}
	s.completeCredential(ctx, *pending)
	return nil
}

// CancelCredentialChange drops a change waiting for re-authentication.
func (s *SessionStore) CancelCredentialChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credState = CredentialIdle
	s.pending = nil
}

func (s *SessionStore) applyCredential(ctx context.Context, change credentialChange) error {
	if change.kind == changeEmail {
		return s.backend.UpdateEmail(ctx, change.value)
	}
	return s.backend.UpdatePassword(ctx, change.value)
}

func (s *SessionStore) completeCredential(ctx context.Context, change credentialChange) {
	var admin *bool
	if change.kind == changeEmail {
		a := s.deriveAdmin(ctx, change.value)
		admin = &a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credState = CredentialCompleted
	s.pending = nil
	if change.kind == changeEmail && s.identity != nil {
		s.identity.Email = change.value
		s.profile.Email = change.value
		s.admin = *admin
	}
}

func (s *SessionStore) AddAllowedEmail(ctx context.Context, email string) (*models.EmailEntry, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.AddEmail(ctx, models.ListAllowed, email)
}

func (s *SessionStore) RemoveAllowedEmail(ctx context.Context, email string) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}
	return s.backend.RemoveEmail(ctx, models.ListAllowed, email)
}

func (s *SessionStore) GetAllowedEmails(ctx context.Context) ([]*models.EmailEntry, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.ListEmails(ctx, models.ListAllowed)
}

func (s *SessionStore) GetAllUsers(ctx context.Context) ([]*models.Profile, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.ListProfiles(ctx)
}

// DeleteUser removes the user's posts, with the replies under them, in one
// batch and then the profile. The two steps are not atomic; a failed profile
// delete can be retried.
func (s *SessionStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}

	posts, err := s.backend.ListPosts(ctx, models.PostFilter{Kind: models.FilterAuthor, UserID: userID})
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(posts))
	var writes []models.Write
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			writes = append(writes, models.DeleteWrite(models.CollectionPosts, id))
		}
	}
	for _, p := range posts {
		if !p.IsReply {
			replies, err := s.backend.ListPosts(ctx, models.PostFilter{Kind: models.FilterReplies, ReplyToID: p.ID})
			if err != nil {
				return err
			}
			for _, r := range replies {
				add(r.ID)
			}
		}
		add(p.ID)
	}

	if len(writes) > 0 {
		if err := s.backend.Commit(ctx, writes); err != nil {
			return err
		}
	}

	if err := s.backend.DeleteProfile(ctx, userID); err != nil {
		return fmt.Errorf("posts deleted, profile delete failed: %w", err)
	}
	s.logger.Info(ctx, "user deleted", "user", userID, "posts", len(writes))
	return nil
}

func (s *SessionStore) DeleteAllPosts(ctx context.Context) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}

	posts, err := s.backend.ListPosts(ctx, models.PostFilter{Kind: models.FilterAll})
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	writes := make([]models.Write, 0, len(posts))
	for _, p := range posts {
		writes = append(writes, models.DeleteWrite(models.CollectionPosts, p.ID))
	}
	return s.backend.Commit(ctx, writes)
}

func (s *SessionStore) GetAdminEmails(ctx context.Context) ([]*models.EmailEntry, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.ListEmails(ctx, models.ListAdmin)
}

func (s *SessionStore) AddAdminEmail(ctx context.Context, email string) (*models.EmailEntry, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.AddEmail(ctx, models.ListAdmin, email)
}

// RemoveAdminEmail never removes the protected administrator.
func (s *SessionStore) RemoveAdminEmail(ctx context.Context, email string) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}
	if s.cfg.IsProtectedAdmin(email) {
		return common.ErrProtected
	}
	return s.backend.RemoveEmail(ctx, models.ListAdmin, email)
}

// IsAdminEmail reports whether email holds administrator rights.
func (s *SessionStore) IsAdminEmail(ctx context.Context, email string) (bool, error) {
	if s.cfg.IsBuiltinAdmin(email) {
		return true, nil
	}
	return s.backend.IsEmailListed(ctx, models.ListAdmin, email)
}

// requestContext bounds a background call with the configured timeout.
func (s *SessionStore) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}
