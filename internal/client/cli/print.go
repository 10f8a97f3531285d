package cli

import (
	"cmp"
	"strings"

	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/client/stores"
)

const dateLayout = "2006-01-02"

func displayName(s *stores.Session) string {
	return cmp.Or(s.Profile.Username, s.Identity.Email)
}

func (a *App) printProfile(s *stores.Session) {
	a.printf("Name:   %s\n", displayName(s))
	a.printf("Email:  %s\n", s.Identity.Email)
	a.printf("Colour: %s\n", s.Profile.AvatarColor)
	if s.Profile.AvatarImage != "" {
		a.printf("Image:  %s\n", s.Profile.AvatarImage)
	}
	if s.Admin {
		a.printf("Role:   administrator\n")
	}
}

func (a *App) printThread(th models.Thread) {
	p := th.Post
	a.printf("[%s] %s, %s\n", p.ID, cmp.Or(p.Username, "unknown"), a.feed.TimeAgo(p.CreatedAt))
	a.printf("    %s\n", indent(p.Content, "    "))
	a.printf("    likes: %d, replies: %d\n", p.Likes, len(th.Replies))
	for _, r := range th.Replies {
		a.printf("    > [%s] %s, %s: %s\n", r.ID, cmp.Or(r.Username, "unknown"), a.feed.TimeAgo(r.CreatedAt), indent(r.Content, "      "))
	}
}

func (a *App) printTask(t *models.Task) {
	mark := " "
	if a.tasks.IsCompleted(t.ID) {
		mark = "x"
	}
	a.printf("[%s] %s  %s (due %s, %s)\n", mark, t.ID, t.Title, t.DueDate.Format(dateLayout), a.tasks.FormatDueDate(t.DueDate))
}

func (a *App) printEmails(entries []*models.EmailEntry) {
	if len(entries) == 0 {
		a.printf("(none)\n")
		return
	}
	for _, e := range entries {
		a.printf("%s  added %s\n", e.Email, e.CreatedAt.Format(dateLayout))
	}
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
