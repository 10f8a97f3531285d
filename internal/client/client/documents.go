package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"google.golang.org/protobuf/types/known/emptypb"
)

func (c *GRPCClient) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := invoke[api.Profile](ctx, c, api.MethodGetProfile, &api.IDRequest{ID: userID})
	if err != nil {
		return nil, err
	}
	return profileFromAPI(p), nil
}

func (c *GRPCClient) SaveProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	p, err := invoke[api.Profile](ctx, c, api.MethodSaveProfile, &api.SaveProfileRequest{
		UserID: userID,
		Fields: fieldsFromPatch(patch),
	})
	if err != nil {
		return nil, err
	}
	return profileFromAPI(p), nil
}

func (c *GRPCClient) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	resp, err := invoke[api.ProfileList](ctx, c, api.MethodListProfiles, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return convertAll(resp.Profiles, profileFromAPI), nil
}

func (c *GRPCClient) DeleteProfile(ctx context.Context, userID string) error {
	_, err := invoke[emptypb.Empty](ctx, c, api.MethodDeleteProfile, &api.IDRequest{ID: userID})
	return err
}

func (c *GRPCClient) AddPost(ctx context.Context, p *models.NewPost) (*models.Post, error) {
	resp, err := invoke[api.Post](ctx, c, api.MethodAddPost, &api.AddPostRequest{
		Content:     p.Content,
		ReplyToID:   p.ReplyToID,
		Username:    p.Username,
		AvatarColor: p.AvatarColor,
		AvatarImage: p.AvatarImage,
	})
	if err != nil {
		return nil, err
	}
	return postFromAPI(resp), nil
}

func (c *GRPCClient) GetPost(ctx context.Context, id string) (*models.Post, error) {
	resp, err := invoke[api.Post](ctx, c, api.MethodGetPost, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return postFromAPI(resp), nil
}

func (c *GRPCClient) ListPosts(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	resp, err := invoke[api.PostList](ctx, c, api.MethodListPosts, &api.ListPostsRequest{
		Filter:    filter.Kind,
		ReplyToID: filter.ReplyToID,
		UserID:    filter.UserID,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(resp.Posts, postFromAPI), nil
}

func (c *GRPCClient) LikePost(ctx context.Context, id string) (*models.Post, error) {
	resp, err := invoke[api.Post](ctx, c, api.MethodLikePost, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return postFromAPI(resp), nil
}

func (c *GRPCClient) AddTask(ctx context.Context, title string, dueDate time.Time) (*models.Task, error) {
	resp, err := invoke[api.Task](ctx, c, api.MethodAddTask, &api.AddTaskRequest{Title: title, DueDate: dueDate})
	if err != nil {
		return nil, err
	}
	return taskFromAPI(resp), nil
}

func (c *GRPCClient) GetTask(ctx context.Context, id string) (*models.Task, error) {
	resp, err := invoke[api.Task](ctx, c, api.MethodGetTask, &api.IDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return taskFromAPI(resp), nil
}

func (c *GRPCClient) ListTasks(ctx context.Context) ([]*models.Task, error) {
	resp, err := invoke[api.TaskList](ctx, c, api.MethodListTasks, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return convertAll(resp.Tasks, taskFromAPI), nil
}

func (c *GRPCClient) SetCompletion(ctx context.Context, taskID string, completed bool) (*models.Completion, error) {
	resp, err := invoke[api.Completion](ctx, c, api.MethodSetCompletion, &api.SetCompletionRequest{TaskID: taskID, Completed: completed})
	if err != nil {
		return nil, err
	}
	return completionFromAPI(resp), nil
}

func (c *GRPCClient) ListCompletions(ctx context.Context, userID, taskID string) ([]*models.Completion, error) {
	resp, err := invoke[api.CompletionList](ctx, c, api.MethodListCompletions, &api.ListCompletionsRequest{UserID: userID, TaskID: taskID})
	if err != nil {
		return nil, err
	}
	return convertAll(resp.Completions, completionFromAPI), nil
}

func (c *GRPCClient) DeleteCompletion(ctx context.Context, id string) error {
	_, err := invoke[emptypb.Empty](ctx, c, api.MethodDeleteCompletion, &api.IDRequest{ID: id})
	return err
}

func (c *GRPCClient) ListEmails(ctx context.Context, list string) ([]*models.EmailEntry, error) {
	resp, err := invoke[api.EmailEntries](ctx, c, api.MethodListEmails, &api.EmailListRequest{List: list})
	if err != nil {
		return nil, err
	}
	return convertAll(resp.Entries, emailEntryFromAPI), nil
}

func (c *GRPCClient) AddEmail(ctx context.Context, list, email string) (*models.EmailEntry, error) {
	resp, err := invoke[api.EmailEntry](ctx, c, api.MethodAddEmail, &api.EmailListEntryRequest{List: list, Email: email})
	if err != nil {
		return nil, err
	}
	return emailEntryFromAPI(resp), nil
}

func (c *GRPCClient) RemoveEmail(ctx context.Context, list, email string) error {
	_, err := invoke[emptypb.Empty](ctx, c, api.MethodRemoveEmail, &api.EmailListEntryRequest{List: list, Email: email})
	return err
}

func (c *GRPCClient) IsEmailListed(ctx context.Context, list, email string) (bool, error) {
	resp, err := invoke[api.BoolResponse](ctx, c, api.MethodIsEmailListed, &api.EmailListEntryRequest{List: list, Email: email})
	if err != nil {
		return false, err
	}
	return resp.Value, nil
}

func (c *GRPCClient) Commit(ctx context.Context, writes []models.Write) error {
	batch := &api.Batch{Writes: make([]api.Write, 0, len(writes))}
	for _, w := range writes {
		batch.Writes = append(batch.Writes, writeToAPI(w))
	}
	_, err := invoke[emptypb.Empty](ctx, c, api.MethodCommit, batch)
	return err
}

func (c *GRPCClient) AvatarUploadURL(ctx context.Context) (string, string, error) {
	resp, err := invoke[api.UploadURL](ctx, c, api.MethodAvatarUploadURL, &emptypb.Empty{})
	if err != nil {
		return "", "", err
	}
	return resp.Key, resp.URL, nil
}

func (c *GRPCClient) AvatarURL(ctx context.Context, key string) (string, error) {
	resp, err := invoke[api.URLResponse](ctx, c, api.MethodAvatarURL, &api.IDRequest{ID: key})
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
