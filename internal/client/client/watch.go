package client

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

func (c *GRPCClient) WatchPosts(ctx context.Context) (<-chan models.Update[*models.Post], error) {
	return watch(ctx, c, "WatchPosts", func(m *api.PostList) []*models.Post {
		return convertAll(m.Posts, postFromAPI)
	})
}

func (c *GRPCClient) WatchTasks(ctx context.Context) (<-chan models.Update[*models.Task], error) {
	return watch(ctx, c, "WatchTasks", func(m *api.TaskList) []*models.Task {
		return convertAll(m.Tasks, taskFromAPI)
	})
}

func (c *GRPCClient) WatchCompletions(ctx context.Context) (<-chan models.Update[*models.Completion], error) {
	return watch(ctx, c, "WatchCompletions", func(m *api.CompletionList) []*models.Completion {
		return convertAll(m.Completions, completionFromAPI)
	})
}

// watch opens the stream and waits for the first snapshot, so a rejected
// subscription is reported to the caller directly. An expired access
// token is refreshed and the stream reopened once.
func watch[Msg, T any](ctx context.Context, c *GRPCClient, name string, items func(*Msg) []T) (<-chan models.Update[T], error) {
	token := c.currentAccessToken()
	stream, first, err := openAndRecv[Msg](ctx, c, name)
	if isTokenExpired(err) {
		if err := c.refresh(ctx, token); err != nil {
			return nil, err
		}
		stream, first, err = openAndRecv[Msg](ctx, c, name)
	}
	if err != nil {
		return nil, mapError(err)
	}

	out := make(chan models.Update[T], 1)
	go func() {
		defer close(out)

		msg := first
		for {
			select {
			case out <- models.Update[T]{Items: items(msg)}:
			case <-ctx.Done():
				return
			}

			msg, err = stream.Recv()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) {
					err = common.ErrUnavailable
				}
				select {
				case out <- models.Update[T]{Err: mapError(err)}:
				case <-ctx.Done():
				}
				return
			}
		}
	}()

	return out, nil
}

func openAndRecv[Msg any](ctx context.Context, c *GRPCClient, name string) (grpc.ServerStreamingClient[Msg], *Msg, error) {
	stream, err := api.OpenWatch[Msg](ctx, c.conn, name, &emptypb.Empty{})
	if err != nil {
		return nil, nil, err
	}
	first, err := stream.Recv()
	if err != nil {
		return nil, nil, err
	}
	return stream, first, nil
}
