package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/scribe/api"
	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/jobs"
	"github.com/kbukum/scribe/kafka"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/redis"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/util"

	// storage backends
	_ "github.com/kbukum/scribe/storage/local"
	_ "github.com/kbukum/scribe/storage/s3"
)

// Role selects what a scribe process runs.
type Role string

const (
	// RoleServe runs the HTTP API and an in-process worker pool.
	RoleServe Role = "serve"
	// RoleWorker runs only the worker pool against the shared Redis queue.
	RoleWorker Role = "worker"
)

// ErrWorkerNeedsRedis is returned when a standalone worker has no shared queue.
var ErrWorkerNeedsRedis = errors.New("app: the worker role needs redis.addr")

// New assembles the app for role. Call Run on the result.
func New(cfg *Config, role Role, opts ...bootstrap.Option) (*bootstrap.App[*Config], error) {
	a, err := assemble(cfg, opts, func(ctx context.Context, a *bootstrap.App[*Config], svc *Services) error {
		pool := jobs.NewPool(svc.Queue, svc.Reporter, svc.Pipeline.Handle, cfg.Jobs.Workers, a.Logger)
		if err := a.Components.Launch(ctx, pool); err != nil {
			return err
		}
		if role == RoleWorker {
			return nil
		}

		srv := server.New(cfg.Server, a.Logger)
		srv.ApplyDefaults(a.Name, a.Components.HealthAll)
		api.NewHandler(api.Deps{
			Store:        svc.Store,
			Queue:        svc.Queue,
			Reporter:     svc.Reporter,
			Captions:     svc.Pipeline,
			Notifier:     svc.Notifier,
			UploadDir:    cfg.Media.UploadDir,
			ChunkSeconds: cfg.Jobs.ChunkSeconds,
		}, a.Logger).Register(srv.GinEngine(), cfg.API.Key)
		return a.Components.Launch(ctx, server.NewComponent(srv))
	})
	if err != nil {
		return nil, err
	}
	if role == RoleWorker && !cfg.Redis.Enabled {
		return nil, ErrWorkerNeedsRedis
	}
	return a, nil
}

// RunTask starts the infrastructure, runs task with the wired services and
// shuts down when it returns.
func RunTask(ctx context.Context, cfg *Config, task func(ctx context.Context, svc *Services) error, opts ...bootstrap.Option) error {
	var services *Services
	a, err := assemble(cfg, opts, func(_ context.Context, _ *bootstrap.App[*Config], svc *Services) error {
		services = svc
		return nil
	})
	if err != nil {
		return err
	}
	return a.RunTask(ctx, func(ctx context.Context) error {
		return task(ctx, services)
	})
}

type configureFunc func(ctx context.Context, a *bootstrap.App[*Config], svc *Services) error

// assemble registers the infrastructure components and builds Services once
// they are up.
func assemble(cfg *Config, opts []bootstrap.Option, configure configureFunc) (*bootstrap.App[*Config], error) {
	a, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}

	var redisComp *redis.Component
	if cfg.Redis.Enabled {
		redisComp = redis.NewComponent(cfg.Redis, a.Logger)
		if err := a.RegisterComponent(redisComp); err != nil {
			return nil, err
		}
	}
	storageComp := storage.NewComponent(cfg.Storage, a.Logger)
	if err := a.RegisterComponent(storageComp); err != nil {
		return nil, err
	}
	var kafkaComp *kafka.Component
	if cfg.Kafka.Enabled {
		kafkaComp = kafka.NewComponent(cfg.Kafka, a.Logger)
		if err := a.RegisterComponent(kafkaComp); err != nil {
			return nil, err
		}
	}

	a.OnStart(func(ctx context.Context) error {
		shutdown, err := observability.Setup(ctx, cfg.Observability, a.Name, a.Version, cfg.Environment)
		if err != nil {
			return fmt.Errorf("observability: %w", err)
		}
		a.OnStop(shutdown)
		return nil
	})

	a.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		infra := Infra{Storage: storageComp.Storage()}
		if redisComp != nil {
			infra.Redis = redisComp.Client()
		}
		if kafkaComp != nil {
			infra.Producer = kafkaComp.Producer()
		}
		svc, err := NewServices(cfg, infra, a.Logger)
		if err != nil {
			return err
		}
		trackClients(a.Summary, cfg)
		return configure(ctx, a, svc)
	})
	return a, nil
}

func trackClients(s *bootstrap.Summary, cfg *Config) {
	s.TrackClient("runpod", cfg.RunPod.Endpoint)
	s.TrackClient("youtube data api", cfg.YouTube.DataAPIURL)
	s.TrackClient("audio link api", util.Coalesce(cfg.Zyla.URL, "not configured"))
	s.TrackClient("webhook", util.Coalesce(cfg.Webhook.URL, "disabled"))
	s.TrackClient("slack", util.Coalesce(cfg.Slack.ErrorChannelID, "disabled"))
	s.TrackClient("public url", util.Coalesce(cfg.Storage.PublicURL, "file://"+cfg.Storage.BasePath))
	if cfg.API.Key != "" {
		s.TrackClient("api key", util.MaskSecret(cfg.API.Key, 4))
	}
}
