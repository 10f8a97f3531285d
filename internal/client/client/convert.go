package client

import (
	"time"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/timex"
)

// dueDateLocation is where due dates are shown. Tests may swap it.
var dueDateLocation = time.Local

func profileFromAPI(p *api.Profile) *models.Profile {
	return &models.Profile{
		ID:          p.ID,
		Email:       p.Email,
		Username:    p.Username,
		AvatarColor: p.AvatarColor,
		AvatarImage: p.AvatarImage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fieldsFromPatch(p models.ProfilePatch) api.ProfileFields {
	return api.ProfileFields{
		Email:       p.Email,
		Username:    p.Username,
		AvatarColor: p.AvatarColor,
		AvatarImage: p.AvatarImage,
	}
}

func postFromAPI(p *api.Post) *models.Post {
	return &models.Post{
		ID:          p.ID,
		UserID:      p.UserID,
		Username:    p.Username,
		AvatarColor: p.AvatarColor,
		AvatarImage: p.AvatarImage,
		Content:     p.Content,
		CreatedAt:   p.CreatedAt,
		Likes:       p.Likes,
		LikedBy:     p.LikedBy,
		IsReply:     p.IsReply,
		ReplyToID:   p.ReplyToID,
	}
}

func taskFromAPI(t *api.Task) *models.Task {
	return &models.Task{
		ID:        t.ID,
		Title:     t.Title,
		DueDate:   timex.CalendarDate(t.DueDate, dueDateLocation),
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

func completionFromAPI(c *api.Completion) *models.Completion {
	return &models.Completion{
		ID:        c.ID,
		UserID:    c.UserID,
		TaskID:    c.TaskID,
		Completed: c.Completed,
		UpdatedAt: c.UpdatedAt,
	}
}

func emailEntryFromAPI(e *api.EmailEntry) *models.EmailEntry {
	return &models.EmailEntry{ID: e.ID, Email: e.Email, CreatedAt: e.CreatedAt}
}

func writeToAPI(w models.Write) api.Write {
	out := api.Write{Op: api.WriteOp(w.Op), Collection: w.Collection, ID: w.ID}
	if w.Op == models.OpUpdate {
		f := fieldsFromPatch(w.Patch)
		out.Fields = &f
	}
	return out
}

// convertAll maps a wire list onto client models.
func convertAll[In, Out any](in []In, fn func(*In) Out) []Out {
	out := make([]Out, 0, len(in))
	for i := range in {
		out = append(out, fn(&in[i]))
	}
	return out
}
