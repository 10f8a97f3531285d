package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError turns a gRPC status into the sentinel the server started from.
// Transport failures become common.ErrUnavailable.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", common.ErrUnavailable, context.DeadlineExceeded)
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, st.Message())
	}

	if e := common.FromMessage(st.Message()); e != nil {
		return e
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return common.ErrNotAuthenticated
	case codes.PermissionDenied:
		return common.ErrForbidden
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	}
	return fmt.Errorf("rpc error: %w", err)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// endsSession reports whether err means the stored login is no good.
func endsSession(err error) bool {
	for _, e := range []error{
		common.ErrRefreshTokenExpired,
		common.ErrInvalidToken,
		common.ErrTokenRevoked,
		common.ErrNotAuthenticated,
		common.ErrAccountDisabled,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
