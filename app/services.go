package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/scribe/jobs"
	"github.com/kbukum/scribe/kafka"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/notify"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/process"
	"github.com/kbukum/scribe/redis"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/runpod"
	"github.com/kbukum/scribe/youtube"
)

const (
	queueKey  = "queue"
	statusKey = "status:"
	meterName = "github.com/kbukum/scribe"
	toolGrace = 5 * time.Second
)

// Infra holds the started infrastructure clients the services are built on.
type Infra struct {
	// Redis backs the status store and queue. Nil keeps both in process.
	Redis   *redis.Client
	Storage storage.Storage
	// Producer mirrors job events to Kafka. Nil disables the mirror.
	Producer *kafka.Producer
}

// Services is the object graph shared by the HTTP and worker roles.
type Services struct {
	Store    jobs.Store
	Queue    jobs.Queue
	Reporter *jobs.Reporter
	Pipeline *Pipeline
	Notifier notify.Notifier
	Alerter  *notify.Alerter
	Metrics  *observability.Metrics
}

// NewServices wires the transcription pipeline, notifications and job
// bookkeeping on top of infra.
func NewServices(cfg *Config, infra Infra, log *logger.Logger) (*Services, error) {
	if infra.Storage == nil {
		return nil, errors.New("app: storage is not started")
	}
	metrics, err := observability.NewMetrics(observability.Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	notifier, err := newNotifier(cfg, infra.Producer, log)
	if err != nil {
		return nil, err
	}
	sinks, err := notify.Sinks(cfg.Slack, log)
	if err != nil {
		return nil, fmt.Errorf("app: slack: %w", err)
	}
	alerter := notify.NewAlerter(sinks, metrics, log)

	pipeline, err := newPipeline(cfg, infra.Storage, notifier, alerter, metrics, log)
	if err != nil {
		return nil, err
	}

	var (
		store jobs.Store
		queue jobs.Queue
	)
	if infra.Redis != nil {
		store = jobs.NewRedisStore(infra.Redis, cfg.Jobs.KeyPrefix+statusKey, cfg.Jobs.StatusTTL)
		queue = jobs.NewRedisQueue(infra.Redis, cfg.Jobs.KeyPrefix+queueKey, 0)
	} else {
		store = jobs.NewMemoryStore()
		queue = jobs.NewMemoryQueue(cfg.Jobs.QueueSize)
		log.Info("redis disabled, job queue kept in process")
	}

	return &Services{
		Store:    store,
		Queue:    queue,
		Reporter: jobs.NewReporter(store, notifier, alerter, metrics, log),
		Pipeline: pipeline,
		Notifier: notifier,
		Alerter:  alerter,
		Metrics:  metrics,
	}, nil
}

func newNotifier(cfg *Config, producer *kafka.Producer, log *logger.Logger) (notify.Notifier, error) {
	webhook, err := notify.NewWebhookNotifier(cfg.Webhook, log)
	if err != nil {
		return nil, fmt.Errorf("app: webhook: %w", err)
	}
	if producer == nil {
		return webhook, nil
	}
	return notify.Multi{webhook, notify.NewKafkaSink(producer, producer.Topic(), log)}, nil
}

func newPipeline(cfg *Config, store storage.Storage, notifier notify.Notifier, alerter *notify.Alerter, metrics *observability.Metrics, log *logger.Logger) (*Pipeline, error) {
	runner := process.ExecRunner{GracePeriod: toolGrace, Timeout: cfg.Media.ToolTimeout}
	normalizer := media.NewNormalizer(cfg.Media, runner, log)
	segmenter := media.NewSegmenter(cfg.Media, runner, log)

	provider, err := runpod.New(cfg.RunPod, log)
	if err != nil {
		return nil, err
	}
	merger := transcription.NewMerger(segmenter, provider, store, cfg.Merger, log, transcription.WithMetrics(metrics))

	captions, err := youtube.NewCaptionClient(cfg.YouTube, cfg.Proxy.URL())
	if err != nil {
		return nil, err
	}
	metadata, err := youtube.NewMetadataClient(cfg.YouTube)
	if err != nil {
		return nil, err
	}
	audio, err := youtube.NewAudioDownloader(cfg.Zyla, cfg.Media.UploadDir, log)
	if err != nil {
		return nil, err
	}
	resolver := youtube.NewResolver(youtube.ResolverDeps{
		Captions:    captions,
		Metadata:    metadata,
		Audio:       audio,
		Normalizer:  normalizer,
		Transcriber: merger,
		Notifier:    notifier,
		Reporter:    alerter,
	}, cfg.YouTube.MaxDurationSeconds, log)

	return NewPipeline(normalizer, merger, resolver, log), nil
}
