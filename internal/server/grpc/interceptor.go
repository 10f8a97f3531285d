package grpc

import (
	"context"
	"path"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// publicMethods need no access token.
var publicMethods = map[string]bool{
	api.MethodPing:         true,
	api.MethodSignUp:       true,
	api.MethodSignIn:       true,
	api.MethodRefreshToken: true,
}

// limitedMethods are rate limited per client address.
var limitedMethods = map[string]bool{
	api.MethodSignUp:         true,
	api.MethodSignIn:         true,
	api.MethodReauthenticate: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (s *GRPCServer) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
}

// authenticate resolves the caller from the access token in the incoming
// metadata and rejects revoked tokens.
func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, common.ErrNotAuthenticated.Error())
	}

	caller, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	revoked, err := s.revoked.IsRevoked(ctx, caller.TokenID)
	if err != nil {
		s.logger.Error(ctx, "revocation lookup", "error", err)
		return nil, status.Error(codes.Unavailable, common.ErrUnavailable.Error())
	}
	if revoked {
		return nil, status.Error(codes.Unauthenticated, common.ErrTokenRevoked.Error())
	}

	return auth.WithCaller(ctx, caller), nil
}

// authedStream overrides the context of a stream with the authenticated one.
type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authedStream) Context() context.Context {
	return a.ctx
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !limitedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	key := info.FullMethod
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		key = clientHost(p.Addr.String()) + key
	}
	if !s.limiter.Allow(key) {
		s.metrics.RateLimited(path.Base(info.FullMethod))
		return nil, status.Error(codes.ResourceExhausted, common.ErrUnavailable.Error()+": too many requests")
	}
	return handler(ctx, req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.metrics.ObserveRPC(path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
	return resp, err
}

func (s *GRPCServer) streamMetricsInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	name := path.Base(info.FullMethod)
	done := s.metrics.WatchStarted(name)
	defer done()

	start := time.Now()
	err := handler(srv, ss)
	s.metrics.ObserveRPC(name, status.Code(err).String(), time.Since(start))
	return err
}
