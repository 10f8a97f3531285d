package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusCodes maps sentinels to gRPC codes. Order matters: the first match
// wins, so errors come before the ones they wrap.
var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrValidation, codes.InvalidArgument},
	{common.ErrInvalidEmail, codes.InvalidArgument},
	{common.ErrWeakPassword, codes.InvalidArgument},
	{common.ErrAlreadyLiked, codes.AlreadyExists},
	{common.ErrEmailInUse, codes.AlreadyExists},
	{common.ErrAlreadyExists, codes.AlreadyExists},
	{common.ErrNotAllowed, codes.PermissionDenied},
	{common.ErrAccountDisabled, codes.PermissionDenied},
	{common.ErrProtected, codes.PermissionDenied},
	{common.ErrForbidden, codes.PermissionDenied},
	{common.ErrReauthenticationRequired, codes.FailedPrecondition},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrNotAuthenticated, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrTokenRevoked, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrUnavailable, codes.Unavailable},
	{common.ErrorInternal, codes.Internal},
}

// toStatus converts a service error into a gRPC status. Known errors keep
// their text so the client can rebuild the sentinel; anything else is logged
// and reported as a bare internal error.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	for _, m := range statusCodes {
		if errors.Is(err, m.err) {
			return status.Error(m.code, err.Error())
		}
	}
	s.logger.Error(ctx, "unexpected error", "op", op, "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
