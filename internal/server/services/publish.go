package services

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
)

// publish announces committed changes. A failed publish only delays live
// watchers until the next event, so it is logged and not returned.
func publish(ctx context.Context, feed changefeed.Publisher, logger logging.Logger, topics ...string) {
	for _, topic := range topics {
		if err := feed.Publish(ctx, topic); err != nil {
			logger.Warn(ctx, "publish change", "topic", topic, "error", err)
		}
	}
}
