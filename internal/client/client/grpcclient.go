package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
)

// publicMethods are called without an access token.
var publicMethods = map[string]bool{
	api.MethodPing:         true,
	api.MethodSignUp:       true,
	api.MethodSignIn:       true,
	api.MethodRefreshToken: true,
}

type GRPCClient struct {
	endpointURL string
	dialOpts    []grpc.DialOption
	conn        *grpc.ClientConn
	tokens      metadata.Repository
	logger      logging.Logger

	mu           sync.Mutex
	identity     *models.Identity
	accessToken  string
	refreshToken string

	// refreshMu serializes token rotation across concurrent calls.
	refreshMu sync.Mutex

	listenersMu  sync.Mutex
	listeners    map[int]func(*models.Identity)
	nextListener int
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := grpcmd.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = grpcmd.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return grpcmd.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	token := c.currentAccessToken()
	err := invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
	if !isTokenExpired(err) {
		return err
	}

	if err := c.refresh(ctx, token); err != nil {
		return err
	}

	// Tokens refreshed, retrying once with the new access token.
	return invoker(withAccessToken(ctx, c.currentAccessToken()), method, req, reply, cc, opts...)
}

// streamAccessTokenInterceptor only injects the token. Expired tokens on
// streams surface on the first Recv and are handled by watch.
func (c *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withAccessToken(ctx, c.currentAccessToken()), desc, cc, method, opts...)
}

// NewTeamboardClient connects to endpointURL. The refresh token of the
// current login is kept in tokens. Extra dial options go after the defaults.
func NewTeamboardClient(endpointURL string, tokens metadata.Repository, logger logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		dialOpts:    opts,
		tokens:      tokens,
		logger:      logger.With("module", "client"),
		listeners:   make(map[int]func(*models.Identity)),
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(c.endpointURL, opts...)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) currentAccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// refresh rotates the token pair unless another call already replaced
// stale. A refresh token the backend rejects ends the session.
func (c *GRPCClient) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	access, refresh := c.accessToken, c.refreshToken
	c.mu.Unlock()

	if access != stale {
		return nil
	}
	if refresh == "" {
		return common.ErrTokenExpired
	}

	sess, err := invoke[api.Session](ctx, c, api.MethodRefreshToken, &api.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		if endsSession(err) {
			c.clearSession(ctx)
			c.notify(nil)
		}
		return err
	}
	c.setSession(ctx, sess)
	return nil
}

func (c *GRPCClient) setSession(ctx context.Context, s *api.Session) *models.Identity {
	id := &models.Identity{UserID: s.Identity.UserID, Email: s.Identity.Email}

	c.mu.Lock()
	c.identity = id
	c.accessToken = s.AccessToken
	c.refreshToken = s.RefreshToken
	c.mu.Unlock()

	if err := c.tokens.Set(ctx, metadata.KeyRefreshToken, s.RefreshToken); err != nil {
		c.logger.Warn(ctx, "persist login", "error", err)
	}

	copied := *id
	return &copied
}

func (c *GRPCClient) clearSession(ctx context.Context) {
	c.mu.Lock()
	c.identity = nil
	c.accessToken = ""
	c.refreshToken = ""
	c.mu.Unlock()

	if err := c.tokens.Delete(ctx, metadata.KeyRefreshToken); err != nil {
		c.logger.Warn(ctx, "forget login", "error", err)
	}
}

func (c *GRPCClient) CurrentIdentity() *models.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	copied := *c.identity
	return &copied
}

func (c *GRPCClient) OnAuthStateChanged(fn func(*models.Identity)) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *GRPCClient) notify(id *models.Identity) {
	c.listenersMu.Lock()
	fns := make([]func(*models.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// Restore signs back in with the persisted refresh token and reports the
// outcome to the auth state listeners exactly once. A token the backend
// rejects is forgotten and is not an error.
func (c *GRPCClient) Restore(ctx context.Context) (*models.Identity, error) {
	refresh, ok, err := c.tokens.Get(ctx, metadata.KeyRefreshToken)
	if err != nil || !ok {
		c.notify(nil)
		return nil, err
	}

	sess, err := invoke[api.Session](ctx, c, api.MethodRefreshToken, &api.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		if endsSession(err) {
			c.clearSession(ctx)
			err = nil
		}
		c.notify(nil)
		return nil, err
	}

	id := c.setSession(ctx, sess)
	c.notify(id)
	return id, nil
}

func (c *GRPCClient) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	sess, err := invoke[api.Session](ctx, c, api.MethodSignUp, &api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.setSession(ctx, sess), nil
}

func (c *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	sess, err := invoke[api.Session](ctx, c, api.MethodSignIn, &api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.setSession(ctx, sess), nil
}

// SignOut ends the session on the backend. The local login is forgotten
// even when that call fails.
func (c *GRPCClient) SignOut(ctx context.Context) error {
	_, err := invoke[emptypb.Empty](ctx, c, api.MethodSignOut, &emptypb.Empty{})
	c.clearSession(ctx)
	return err
}

func (c *GRPCClient) Reauthenticate(ctx context.Context, password string) error {
	return c.replaceSession(ctx, api.MethodReauthenticate, &api.PasswordRequest{Password: password})
}

func (c *GRPCClient) UpdateEmail(ctx context.Context, email string) error {
	return c.replaceSession(ctx, api.MethodUpdateEmail, &api.EmailRequest{Email: email})
}

func (c *GRPCClient) UpdatePassword(ctx context.Context, password string) error {
	return c.replaceSession(ctx, api.MethodUpdatePassword, &api.PasswordRequest{Password: password})
}

func (c *GRPCClient) replaceSession(ctx context.Context, method string, in any) error {
	sess, err := invoke[api.Session](ctx, c, method, in)
	if err != nil {
		return err
	}
	c.setSession(ctx, sess)
	return nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := invoke[api.PingResponse](ctx, c, api.MethodPing, &emptypb.Empty{})
	if err != nil {
		return err
	}
	if resp.Status != "OK" {
		return common.ErrUnavailable
	}
	return nil
}

func invoke[Resp any](ctx context.Context, c *GRPCClient, method string, in any) (*Resp, error) {
	out, err := api.Invoke[Resp](ctx, c.conn, method, in)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
