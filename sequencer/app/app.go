package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	reuse "github.com/libp2p/go-reuseport"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pg-sharding/spqr-sequencer/pkg/config"
	"github.com/pg-sharding/spqr-sequencer/pkg/models/sequences"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
	"github.com/pg-sharding/spqr-sequencer/sequencer/seqproto"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg *config.Sequencer
	mgr sequences.SequenceMgr

	health *health.Server
}

func NewApp(cfg *config.Sequencer, mgr sequences.SequenceMgr) *App {
	return &App{
		cfg:    cfg,
		mgr:    mgr,
		health: health.NewServer(),
	}
}

// Handler serves the sequence API together with /metrics and /health.
func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()
	seqproto.NewServer(app.mgr).Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

func (app *App) listen(address string) (net.Listener, error) {
	if app.cfg.ReusePort {
		return reuse.Listen("tcp", address)
	}
	return net.Listen("tcp", address)
}

// Run serves the HTTP API and the gRPC health service until ctx is done
// or one of the servers fails.
func (app *App) Run(ctx context.Context) error {
	spqrlog.Zero.Info().Msg("running sequencer app")

	httpAddr := net.JoinHostPort(app.cfg.Host, app.cfg.HttpApiPort)
	httpLis, err := app.listen(httpAddr)
	if err != nil {
		spqrlog.Zero.Error().Err(err).Str("address", httpAddr).Msg("error serve sequencer http api")
		return err
	}

	grpcAddr := net.JoinHostPort(app.cfg.Host, app.cfg.GrpcApiPort)
	grpcLis, err := app.listen(grpcAddr)
	if err != nil {
		_ = httpLis.Close()
		spqrlog.Zero.Error().Err(err).Str("address", grpcAddr).Msg("error serve sequencer grpc service")
		return err
	}

	httpServ := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServ := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServ, app.health)
	reflection.Register(grpcServ)
	app.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		spqrlog.Zero.Info().Str("address", httpLis.Addr().String()).Msg("serve sequencer http api")
		if err := httpServ.Serve(httpLis); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		spqrlog.Zero.Info().Str("address", grpcLis.Addr().String()).Msg("serve sequencer grpc service")
		if err := grpcServ.Serve(grpcLis); !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		spqrlog.Zero.Info().Msg("shutting down sequencer app")
		app.health.Shutdown()

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServ.Shutdown(sctx)
		grpcServ.GracefulStop()
		return err
	})

	err = g.Wait()
	spqrlog.Zero.Debug().Err(err).Msg("exit sequencer app")
	return err
}
