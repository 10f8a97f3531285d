package grpc

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/auth"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// caller returns the principal stored by the access token interceptor.
func (s *GRPCServer) caller(ctx context.Context) (*models.Caller, error) {
	c, ok := auth.CallerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrNotAuthenticated.Error())
	}
	return c, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *api.Credentials) (*api.Session, error) {

	s.logger.Info(ctx, "Registration request")

	session, err := s.svc.Identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "sign up", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", session.Account.ID)
	return toAPISession(session), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.Credentials) (*api.Session, error) {
	session, err := s.svc.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "sign in", err)
	}
	return toAPISession(session), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshRequest) (*api.Session, error) {
	session, err := s.svc.Identity.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "refresh token", err)
	}
	return toAPISession(session), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Identity.SignOut(ctx, caller); err != nil {
		return nil, s.toStatus(ctx, "sign out", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Reauthenticate(ctx context.Context, req *api.PasswordRequest) (*api.Session, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.svc.Identity.Reauthenticate(ctx, caller, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "reauthenticate", err)
	}
	return toAPISession(session), nil
}

func (s *GRPCServer) UpdateEmail(ctx context.Context, req *api.EmailRequest) (*api.Session, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.svc.Identity.UpdateEmail(ctx, caller, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, "update email", err)
	}
	return toAPISession(session), nil
}

func (s *GRPCServer) UpdatePassword(ctx context.Context, req *api.PasswordRequest) (*api.Session, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.svc.Identity.UpdatePassword(ctx, caller, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "update password", err)
	}
	return toAPISession(session), nil
}
