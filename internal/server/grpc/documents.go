package grpc

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"google.golang.org/protobuf/types/known/emptypb"
)

// --- profiles ---

func (s *GRPCServer) GetProfile(ctx context.Context, req *api.IDRequest) (*api.Profile, error) {
	p, err := s.svc.Profiles.Get(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "get profile", err)
	}
	out := toAPIProfile(p)
	return &out, nil
}

func (s *GRPCServer) SaveProfile(ctx context.Context, req *api.SaveProfileRequest) (*api.Profile, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.Profiles.Save(ctx, caller, req.UserID, toPatch(&req.Fields))
	if err != nil {
		return nil, s.toStatus(ctx, "save profile", err)
	}
	out := toAPIProfile(p)
	return &out, nil
}

func (s *GRPCServer) ListProfiles(ctx context.Context, _ *emptypb.Empty) (*api.ProfileList, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.svc.Profiles.List(ctx, caller)
	if err != nil {
		return nil, s.toStatus(ctx, "list profiles", err)
	}
	out := &api.ProfileList{Profiles: make([]api.Profile, 0, len(profiles))}
	for _, p := range profiles {
		out.Profiles = append(out.Profiles, toAPIProfile(p))
	}
	return out, nil
}

func (s *GRPCServer) DeleteProfile(ctx context.Context, req *api.IDRequest) (*emptypb.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Profiles.Delete(ctx, caller, req.ID); err != nil {
		return nil, s.toStatus(ctx, "delete profile", err)
	}
	return &emptypb.Empty{}, nil
}

// --- posts ---

func (s *GRPCServer) AddPost(ctx context.Context, req *api.AddPostRequest) (*api.Post, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.Posts.Add(ctx, caller, &models.Post{
		Content:     req.Content,
		ReplyToID:   req.ReplyToID,
		Username:    req.Username,
		AvatarColor: req.AvatarColor,
		AvatarImage: req.AvatarImage,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "add post", err)
	}
	out := toAPIPost(p)
	return &out, nil
}

func (s *GRPCServer) GetPost(ctx context.Context, req *api.IDRequest) (*api.Post, error) {
	p, err := s.svc.Posts.Get(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "get post", err)
	}
	out := toAPIPost(p)
	return &out, nil
}

func (s *GRPCServer) ListPosts(ctx context.Context, req *api.ListPostsRequest) (*api.PostList, error) {
	filter, err := toPostFilter(req)
	if err != nil {
		return nil, s.toStatus(ctx, "list posts", err)
	}
	posts, err := s.svc.Posts.List(ctx, filter)
	if err != nil {
		return nil, s.toStatus(ctx, "list posts", err)
	}
	return toAPIPosts(posts), nil
}

func (s *GRPCServer) LikePost(ctx context.Context, req *api.IDRequest) (*api.Post, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.Posts.Like(ctx, caller, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "like post", err)
	}
	out := toAPIPost(p)
	return &out, nil
}

// --- tasks ---

func (s *GRPCServer) AddTask(ctx context.Context, req *api.AddTaskRequest) (*api.Task, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.svc.Tasks.Add(ctx, caller, req.Title, req.DueDate)
	if err != nil {
		return nil, s.toStatus(ctx, "add task", err)
	}
	out := toAPITask(t)
	return &out, nil
}

func (s *GRPCServer) GetTask(ctx context.Context, req *api.IDRequest) (*api.Task, error) {
	t, err := s.svc.Tasks.Get(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "get task", err)
	}
	out := toAPITask(t)
	return &out, nil
}

func (s *GRPCServer) ListTasks(ctx context.Context, _ *emptypb.Empty) (*api.TaskList, error) {
	tasks, err := s.svc.Tasks.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "list tasks", err)
	}
	return toAPITasks(tasks), nil
}

func (s *GRPCServer) SetCompletion(ctx context.Context, req *api.SetCompletionRequest) (*api.Completion, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.Tasks.SetCompletion(ctx, caller, req.TaskID, req.Completed)
	if err != nil {
		return nil, s.toStatus(ctx, "set completion", err)
	}
	out := toAPICompletion(c)
	return &out, nil
}

func (s *GRPCServer) ListCompletions(ctx context.Context, req *api.ListCompletionsRequest) (*api.CompletionList, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	cs, err := s.svc.Tasks.ListCompletions(ctx, caller, req.UserID, req.TaskID)
	if err != nil {
		return nil, s.toStatus(ctx, "list completions", err)
	}
	return toAPICompletions(cs), nil
}

func (s *GRPCServer) DeleteCompletion(ctx context.Context, req *api.IDRequest) (*emptypb.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Tasks.DeleteCompletion(ctx, caller, req.ID); err != nil {
		return nil, s.toStatus(ctx, "delete completion", err)
	}
	return &emptypb.Empty{}, nil
}

// --- email lists ---

func (s *GRPCServer) ListEmails(ctx context.Context, req *api.EmailListRequest) (*api.EmailEntries, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := toEmailList(req.List)
	if err != nil {
		return nil, s.toStatus(ctx, "list emails", err)
	}
	entries, err := s.svc.EmailLists.List(ctx, caller, list)
	if err != nil {
		return nil, s.toStatus(ctx, "list emails", err)
	}
	out := &api.EmailEntries{Entries: make([]api.EmailEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, toAPIEntry(e))
	}
	return out, nil
}

func (s *GRPCServer) AddEmail(ctx context.Context, req *api.EmailListEntryRequest) (*api.EmailEntry, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := toEmailList(req.List)
	if err != nil {
		return nil, s.toStatus(ctx, "add email", err)
	}
	e, err := s.svc.EmailLists.Add(ctx, caller, list, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, "add email", err)
	}
	out := toAPIEntry(e)
	return &out, nil
}

func (s *GRPCServer) RemoveEmail(ctx context.Context, req *api.EmailListEntryRequest) (*emptypb.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := toEmailList(req.List)
	if err != nil {
		return nil, s.toStatus(ctx, "remove email", err)
	}
	if err := s.svc.EmailLists.Remove(ctx, caller, list, req.Email); err != nil {
		return nil, s.toStatus(ctx, "remove email", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) IsEmailListed(ctx context.Context, req *api.EmailListEntryRequest) (*api.BoolResponse, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := toEmailList(req.List)
	if err != nil {
		return nil, s.toStatus(ctx, "is email listed", err)
	}
	ok, err := s.svc.EmailLists.IsListed(ctx, caller, list, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, "is email listed", err)
	}
	return &api.BoolResponse{Value: ok}, nil
}

// --- batch and avatars ---

func (s *GRPCServer) Commit(ctx context.Context, req *api.Batch) (*emptypb.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Batch.Commit(ctx, caller, toWrites(req)); err != nil {
		return nil, s.toStatus(ctx, "commit", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) AvatarUploadURL(ctx context.Context, _ *emptypb.Empty) (*api.UploadURL, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	key, url, err := s.svc.Avatars.UploadURL(ctx, caller)
	if err != nil {
		return nil, s.toStatus(ctx, "avatar upload url", err)
	}
	return &api.UploadURL{Key: key, URL: url}, nil
}

func (s *GRPCServer) AvatarURL(ctx context.Context, req *api.IDRequest) (*api.URLResponse, error) {
	url, err := s.svc.Avatars.URL(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "avatar url", err)
	}
	return &api.URLResponse{URL: url}, nil
}
