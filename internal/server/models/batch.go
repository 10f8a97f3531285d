package models

// WriteOp is the kind of change a batch write makes.
type WriteOp string

const (
	OpUpdate WriteOp = "update"
	OpDelete WriteOp = "delete"
)

// Collection identifies the table a batch write targets.
type Collection string

const (
	CollectionUsers     Collection = "users"
	CollectionPosts     Collection = "posts"
	CollectionTasks     Collection = "tasks"
	CollectionUserTasks Collection = "userTasks"
)

// Write is one entry of an atomic batch. Patch is used by updates only.
type Write struct {
	Op         WriteOp
	Collection Collection
	ID         string
	Patch      ProfilePatch
}
