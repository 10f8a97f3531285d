package models

import "time"

// Email list names.
const (
	ListAllowed = "allowed"
	ListAdmin   = "admin"
)

// EmailEntry is one address of the allow-list or the admin list.
type EmailEntry struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

type WriteOp string

const (
	OpUpdate WriteOp = "update"
	OpDelete WriteOp = "delete"
)

// Collections a batch can write to.
const (
	CollectionUsers     = "users"
	CollectionPosts     = "posts"
	CollectionTasks     = "tasks"
	CollectionUserTasks = "userTasks"
)

// Write is one entry of an atomic batch. Patch is only read by updates.
type Write struct {
	Op         WriteOp
	Collection string
	ID         string
	Patch      ProfilePatch
}

// DeleteWrite builds a delete of collection/id.
func DeleteWrite(collection, id string) Write {
	return Write{Op: OpDelete, Collection: collection, ID: id}
}

// UpdateWrite builds a merge update of collection/id.
func UpdateWrite(collection, id string, patch ProfilePatch) Write {
	return Write{Op: OpUpdate, Collection: collection, ID: id, Patch: patch}
}

// Update is one message of a live subscription: a full snapshot of the
// query, or the error that ended it. The channel closes after an error.
type Update[T any] struct {
	Items []T
	Err   error
}
