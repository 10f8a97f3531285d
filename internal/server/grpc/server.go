// Package grpc exposes the teamboard services over gRPC: unary handlers for
// every document operation, the watch streams and the interceptors that
// authenticate, rate limit and measure calls.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/api"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
	"github.com/dmitrijs2005/teamboard/internal/server/metrics"
	"github.com/dmitrijs2005/teamboard/internal/server/revocation"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

// gracePeriod bounds GracefulStop before open calls are cut.
const gracePeriod = 5 * time.Second

type GRPCServer struct {
	api.UnimplementedTeamboardServer
	address   string
	svc       Services
	feed      changefeed.Feed
	revoked   revocation.Store
	metrics   *metrics.Metrics
	limiter   *keyedLimiter
	logger    logging.Logger
	jwtSecret []byte
	stopping  chan struct{}
}

// Options carries the collaborators of GRPCServer that are not services.
type Options struct {
	Feed          changefeed.Feed
	Revoked       revocation.Store
	Metrics       *metrics.Metrics
	SecretKey     string
	AuthRateLimit float64
	AuthRateBurst int
}

func NewGRPCServer(address string, l logging.Logger, svc Services, opts Options) *GRPCServer {
	return &GRPCServer{
		address:   address,
		svc:       svc,
		feed:      opts.Feed,
		revoked:   opts.Revoked,
		metrics:   opts.Metrics,
		limiter:   newKeyedLimiter(rate.Limit(opts.AuthRateLimit), opts.AuthRateBurst),
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(opts.SecretKey),
		stopping:  make(chan struct{}),
	}
}

// newServer builds the grpc.Server with the interceptor chains and the
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.rateLimitInterceptor, s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamMetricsInterceptor, s.streamAccessTokenInterceptor),
	)
	api.RegisterTeamboardServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")

		// watch streams only end when told to
		close(s.stopping)

		done := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(gracePeriod):
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
