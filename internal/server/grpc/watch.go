package grpc

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

func (s *GRPCServer) WatchPosts(_ *emptypb.Empty, stream grpc.ServerStreamingServer[api.PostList]) error {
	return watchTopic(s, stream, changefeed.TopicPosts, func(ctx context.Context) (*api.PostList, error) {
		posts, err := s.svc.Posts.List(ctx, models.PostFilter{TopLevel: true})
		if err != nil {
			return nil, err
		}
		return toAPIPosts(posts), nil
	})
}

func (s *GRPCServer) WatchTasks(_ *emptypb.Empty, stream grpc.ServerStreamingServer[api.TaskList]) error {
	return watchTopic(s, stream, changefeed.TopicTasks, func(ctx context.Context) (*api.TaskList, error) {
		tasks, err := s.svc.Tasks.List(ctx)
		if err != nil {
			return nil, err
		}
		return toAPITasks(tasks), nil
	})
}

func (s *GRPCServer) WatchCompletions(_ *emptypb.Empty, stream grpc.ServerStreamingServer[api.CompletionList]) error {
	caller, err := s.caller(stream.Context())
	if err != nil {
		return err
	}
	return watchTopic(s, stream, changefeed.CompletionsTopic(caller.UserID), func(ctx context.Context) (*api.CompletionList, error) {
		cs, err := s.svc.Tasks.ListCompletions(ctx, caller, "", "")
		if err != nil {
			return nil, err
		}
		return toAPICompletions(cs), nil
	})
}

// watchTopic sends a snapshot from query, then a fresh one after every
// change signalled on topic. It subscribes before the first query so no
// change between the two is lost.
func watchTopic[T any](s *GRPCServer, stream grpc.ServerStreamingServer[T], topic string, query func(context.Context) (*T, error)) error {
	ctx := stream.Context()

	events, cancel, err := s.feed.Subscribe(topic)
	if err != nil {
		s.logger.Error(ctx, "subscribe", "topic", topic, "error", err)
		return status.Error(codes.Unavailable, common.ErrUnavailable.Error())
	}
	defer cancel()

	send := func() error {
		snapshot, err := query(ctx)
		if err != nil {
			return s.toStatus(ctx, "watch "+topic, err)
		}
		return stream.Send(snapshot)
	}

	if err := send(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopping:
			return status.Error(codes.Unavailable, common.ErrUnavailable.Error())
		case _, ok := <-events:
			if !ok {
				return status.Error(codes.Unavailable, common.ErrUnavailable.Error())
			}
			if err := send(); err != nil {
				return err
			}
		}
	}
}
