// Package changefeed signals document changes to live watchers. Events carry
// only the topic; watchers re-query the store when they are signalled.
package changefeed

import "context"

const (
	TopicPosts = "posts"
	TopicTasks = "tasks"
)

// CompletionsTopic is the topic of one user's completion records.
func CompletionsTopic(userID string) string {
	return "completions." + userID
}

// Publisher announces that documents under a topic changed.
type Publisher interface {
	Publish(ctx context.Context, topic string) error
}

// Feed is a Publisher that can also be subscribed to.
type Feed interface {
	Publisher
	// Subscribe returns a channel that receives a signal after changes on
	// topic. Signals are coalesced: at most one is pending per subscriber.
	// The returned func cancels the subscription.
	Subscribe(topic string) (<-chan struct{}, func(), error)
	Close() error
}

// signal makes a non-blocking send, dropping the event when one is already
// pending.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
