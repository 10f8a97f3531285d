package api

import "time"

// Collection names used in batch writes.
const (
	CollectionUsers     = "users"
	CollectionPosts     = "posts"
	CollectionTasks     = "tasks"
	CollectionUserTasks = "userTasks"
)

// Email list names.
const (
	ListAllowed = "allowed"
	ListAdmin   = "admin"
)

// Post list filters.
const (
	FilterTopLevel = "top"
	FilterReplies  = "replies"
	FilterAuthor   = "author"
	FilterAll      = "all"
)

type WriteOp string

const (
	OpUpdate WriteOp = "update"
	OpDelete WriteOp = "delete"
)

type PingResponse struct {
	Status string `json:"status"`
}

type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type Session struct {
	Identity     Identity `json:"identity"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type PasswordRequest struct {
	Password string `json:"password"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	AvatarColor string    `json:"avatarColor"`
	AvatarImage string    `json:"avatarImage,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileFields is a merge patch: nil fields are left as they are.
type ProfileFields struct {
	Email       *string `json:"email,omitempty"`
	Username    *string `json:"username,omitempty"`
	AvatarColor *string `json:"avatarColor,omitempty"`
	AvatarImage *string `json:"avatarImage,omitempty"`
}

type SaveProfileRequest struct {
	UserID string        `json:"userId"`
	Fields ProfileFields `json:"fields"`
}

type ProfileList struct {
	Profiles []Profile `json:"profiles"`
}

type Post struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	AvatarColor string    `json:"avatarColor"`
	AvatarImage string    `json:"avatarImage,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	Likes       int       `json:"likes"`
	LikedBy     []string  `json:"likedBy"`
	IsReply     bool      `json:"isReply"`
	ReplyToID   string    `json:"replyToId,omitempty"`
}

// AddPostRequest carries the author snapshot taken when the post is written.
type AddPostRequest struct {
	Content     string `json:"content"`
	ReplyToID   string `json:"replyToId,omitempty"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
	AvatarImage string `json:"avatarImage,omitempty"`
}

type ListPostsRequest struct {
	Filter    string `json:"filter"`
	ReplyToID string `json:"replyToId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

type PostList struct {
	Posts []Post `json:"posts"`
}

type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"dueDate"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type AddTaskRequest struct {
	Title   string    `json:"title"`
	DueDate time.Time `json:"dueDate"`
}

type TaskList struct {
	Tasks []Task `json:"tasks"`
}

type Completion struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SetCompletionRequest struct {
	TaskID    string `json:"taskId"`
	Completed bool   `json:"completed"`
}

// ListCompletionsRequest selects by TaskID when set, otherwise by UserID
// (empty means the caller).
type ListCompletionsRequest struct {
	UserID string `json:"userId,omitempty"`
	TaskID string `json:"taskId,omitempty"`
}

type CompletionList struct {
	Completions []Completion `json:"completions"`
}

type EmailEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmailListRequest struct {
	List string `json:"list"`
}

type EmailListEntryRequest struct {
	List  string `json:"list"`
	Email string `json:"email"`
}

type EmailEntries struct {
	Entries []EmailEntry `json:"entries"`
}

type BoolResponse struct {
	Value bool `json:"value"`
}

type Write struct {
	Op         WriteOp        `json:"op"`
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Fields     *ProfileFields `json:"fields,omitempty"`
}

type Batch struct {
	Writes []Write `json:"writes"`
}

type UploadURL struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type URLResponse struct {
	URL string `json:"url"`
}
