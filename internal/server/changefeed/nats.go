package changefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to topics to form NATS subjects.
const SubjectPrefix = "teamboard.changes."

// natsConn is the part of *nats.Conn the feed uses.
type natsConn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
}

// NATS fans change events out across server instances through core NATS
// subjects.
type NATS struct {
	conn   natsConn
	logger logging.Logger
}

// connect is a seam for tests.
var connect = func(url string, opts ...nats.Option) (natsConn, error) {
	return nats.Connect(url, opts...)
}

// NewNATS connects to the broker at url.
func NewNATS(url string, logger logging.Logger) (*NATS, error) {
	logger = logger.With("module", "changefeed")

	conn, err := connect(url,
		nats.Name("teamboard-server"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn(context.Background(), "nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info(context.Background(), "nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &NATS{conn: conn, logger: logger}, nil
}

func (n *NATS) Publish(ctx context.Context, topic string) error {
	if err := n.conn.Publish(SubjectPrefix+topic, []byte(topic)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (n *NATS) Subscribe(topic string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	sub, err := n.conn.Subscribe(SubjectPrefix+topic, func(*nats.Msg) {
		signal(ch)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	cancel := func() {
		if err := sub.Unsubscribe(); err != nil {
			n.logger.Debug(context.Background(), "unsubscribe", "topic", topic, "error", err)
		}
	}
	return ch, cancel, nil
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	return n.conn.Drain()
}
