package grpc

import (
	"fmt"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/services"
)

func toAPISession(s *services.Session) *api.Session {
	return &api.Session{
		Identity:     api.Identity{UserID: s.Account.ID, Email: s.Account.Email},
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

func toAPIProfile(p *models.Profile) api.Profile {
	return api.Profile{
		ID:          p.ID,
		Email:       p.Email,
		Username:    p.Username,
		AvatarColor: p.AvatarColor,
		AvatarImage: p.AvatarImage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toAPIPost(p *models.Post) api.Post {
	likedBy := p.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return api.Post{
		ID:          p.ID,
		UserID:      p.UserID,
		Username:    p.Username,
		AvatarColor: p.AvatarColor,
		AvatarImage: p.AvatarImage,
		Content:     p.Content,
		CreatedAt:   p.CreatedAt,
		Likes:       p.Likes,
		LikedBy:     likedBy,
		IsReply:     p.IsReply,
		ReplyToID:   p.ReplyToID,
	}
}

func toAPIPosts(posts []*models.Post) *api.PostList {
	out := &api.PostList{Posts: make([]api.Post, 0, len(posts))}
	for _, p := range posts {
		out.Posts = append(out.Posts, toAPIPost(p))
	}
	return out
}

func toAPITask(t *models.Task) api.Task {
	return api.Task{ID: t.ID, Title: t.Title, DueDate: t.DueDate, CreatedBy: t.CreatedBy, CreatedAt: t.CreatedAt}
}

func toAPITasks(tasks []*models.Task) *api.TaskList {
	out := &api.TaskList{Tasks: make([]api.Task, 0, len(tasks))}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, toAPITask(t))
	}
	return out
}

func toAPICompletion(c *models.Completion) api.Completion {
	return api.Completion{ID: c.ID, UserID: c.UserID, TaskID: c.TaskID, Completed: c.Completed, UpdatedAt: c.UpdatedAt}
}

func toAPICompletions(cs []*models.Completion) *api.CompletionList {
	out := &api.CompletionList{Completions: make([]api.Completion, 0, len(cs))}
	for _, c := range cs {
		out.Completions = append(out.Completions, toAPICompletion(c))
	}
	return out
}

func toAPIEntry(e *models.EmailEntry) api.EmailEntry {
	return api.EmailEntry{ID: e.ID, Email: e.Email, CreatedAt: e.CreatedAt}
}

func toPatch(f *api.ProfileFields) models.ProfilePatch {
	if f == nil {
		return models.ProfilePatch{}
	}
	return models.ProfilePatch{
		Email:       f.Email,
		Username:    f.Username,
		AvatarColor: f.AvatarColor,
		AvatarImage: f.AvatarImage,
	}
}

func toEmailList(name string) (models.EmailList, error) {
	switch name {
	case api.ListAllowed:
		return models.AllowedEmails, nil
	case api.ListAdmin:
		return models.AdminEmails, nil
	}
	return "", fmt.Errorf("%w: unknown email list %q", common.ErrValidation, name)
}

func toPostFilter(req *api.ListPostsRequest) (models.PostFilter, error) {
	switch req.Filter {
	case api.FilterTopLevel:
		return models.PostFilter{TopLevel: true}, nil
	case api.FilterReplies:
		if req.ReplyToID == "" {
			return models.PostFilter{}, fmt.Errorf("%w: replyToId is required", common.ErrValidation)
		}
		return models.PostFilter{ReplyToID: req.ReplyToID}, nil
	case api.FilterAuthor:
		if req.UserID == "" {
			return models.PostFilter{}, fmt.Errorf("%w: userId is required", common.ErrValidation)
		}
		return models.PostFilter{UserID: req.UserID}, nil
	case api.FilterAll, "":
		return models.PostFilter{}, nil
	}
	return models.PostFilter{}, fmt.Errorf("%w: unknown filter %q", common.ErrValidation, req.Filter)
}

func toWrites(batch *api.Batch) []models.Write {
	writes := make([]models.Write, 0, len(batch.Writes))
	for _, w := range batch.Writes {
		writes = append(writes, models.Write{
			Op:         models.WriteOp(w.Op),
			Collection: models.Collection(w.Collection),
			ID:         w.ID,
			Patch:      toPatch(w.Fields),
		})
	}
	return writes
}
