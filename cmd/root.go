// SPDX-License-Identifier: AGPL-3.0-or-later
// voiced - a group-voice control-plane server
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"

	"github.com/soliloque-go/voiced/internal/broadcast"
	"github.com/soliloque-go/voiced/internal/config"
	"github.com/soliloque-go/voiced/internal/db"
	"github.com/soliloque-go/voiced/internal/kv"
	"github.com/soliloque-go/voiced/internal/metrics"
	"github.com/soliloque-go/voiced/internal/privilege"
	"github.com/soliloque-go/voiced/internal/pubsub"
	"github.com/soliloque-go/voiced/internal/reliability"
	"github.com/soliloque-go/voiced/internal/store"
	"github.com/soliloque-go/voiced/internal/store/models"
	"github.com/soliloque-go/voiced/internal/voiceserver"
	"github.com/soliloque-go/voiced/internal/world"
)

// serverID is the models.Server row this process runs. voiced is
// single-server-per-process (see internal/broadcast's Topic doc), so the
// row id is fixed rather than looked up from a deployment-wide registry.
const serverID uint32 = 1

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "voiced",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	instanceID := uuid.NewString()
	fmt.Printf("voiced - %s (%s) [%s]\n", cmd.Annotations["version"], cmd.Annotations["commit"], instanceID)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupTracing(cfg, instanceID)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			slog.Error("failed to shut down tracer", "error", err)
		}
	}()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.CreateMetricsServer(cfg); err != nil {
				slog.Error("failed to start metrics server", "error", err)
			}
		}()
	}
	m := metrics.NewMetrics()

	database, err := db.MakeDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	kvStore, err := kv.MakeKV(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to key-value store: %w", err)
	}

	pubsubClient, err := pubsub.MakePubSub(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to pubsub: %w", err)
	}

	regStore := store.New(database)

	w, err := buildWorld(ctx, cfg, database, regStore)
	if err != nil {
		return fmt.Errorf("failed to build domain model: %w", err)
	}
	w.AttachPendingStore(kvStore)

	conn, err := voiceserver.Listen(cfg.Voice.Bind, cfg.Voice.Port)
	if err != nil {
		return fmt.Errorf("failed to open UDP socket: %w", err)
	}

	rel := reliability.NewManager(conn, reliability.SystemClock, m)
	bcast := broadcast.NewEngine(pubsubClient, w, rel, m, slog.Default())
	priv := privilege.New()

	vs := voiceserver.New(cfg.Voice, serverID, cfg.PasswordSalt, w, priv, regStore, rel, bcast, m, slog.Default(), reliability.SystemClock)

	scheduler, err := setupScheduler()
	if err != nil {
		return err
	}
	setupResyncJob(scheduler, ctx, w, regStore)
	scheduler.Start()

	bcastCtx, cancelBcast := context.WithCancel(ctx)
	go bcast.Run(bcastCtx)

	vsCtx, cancelVS := context.WithCancel(ctx)
	go vs.Run(vsCtx, conn)
	slog.Info("voiceserver listening", "bind", cfg.Voice.Bind, "port", cfg.Voice.Port, "instance", instanceID)

	setupShutdownHandlers(shutdownDeps{
		scheduler:  scheduler,
		stopVoice:  func() { cancelVS(); _ = vs.Stop() },
		stopBcast:  cancelBcast,
		kv:         kvStore,
		pubsub:     pubsubClient,
		cleanup:    cleanup,
		cleanupCtx: ctx,
	})

	return nil
}

// loadConfig loads the configuration from context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}
	cfg, err := c.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// setupLogger configures the structured logger.
func setupLogger(cfg *config.Config) {
	var level slog.Level
	out := os.Stdout
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level, out = slog.LevelWarn, os.Stderr
	case config.LogLevelError:
		level, out = slog.LevelError, os.Stderr
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(out, &tint.Options{Level: level})))
}

// setupScheduler creates and configures the job scheduler.
func setupScheduler() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return scheduler, nil
}

// setupResyncJob schedules a periodic reload of the persisted snapshot
// and merges its registration rows into the live world, so out-of-band
// registration edits in the database eventually take effect without a
// restart. The snapshot's channel and privilege rows are not applied,
// and registrations deleted from the database stay cached. Mirrors the teacher's daily repeater/user
// database refresh job, but hourly: this data changes far more often
// than a vendor radio-id dump.
func setupResyncJob(scheduler gocron.Scheduler, ctx context.Context, w *world.Server, regStore store.RegistrationStore) {
	_, err := scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			snap, err := regStore.LoadAll(ctx, serverID)
			if err != nil {
				slog.Error("resync: failed to reload registration store", "error", err)
				return
			}
			w.Lock()
			defer w.Unlock()
			for _, reg := range snap.Regs {
				w.AddRegistration(&world.Registration{ID: reg.ID, ServerID: reg.ServerID, Name: reg.Name, PasswordHash: reg.PasswordHash})
			}
		}),
	)
	if err != nil {
		slog.Error("failed to schedule registration resync job", "error", err)
	}
}

// buildWorld opens (or creates) this process's models.Server row,
// constructs the live world.Server, creates its DEFAULT channel, and
// rehydrates every persisted channel/registration/privilege before the
// socket opens.
func buildWorld(ctx context.Context, cfg *config.Config, database *gorm.DB, regStore store.RegistrationStore) (*world.Server, error) {
	row := models.Server{ID: serverID}
	if err := database.WithContext(ctx).FirstOrCreate(&row, models.Server{ID: serverID}, models.Server{
		ID: serverID, UDPPort: cfg.Voice.Port, Name: "voiced",
		WelcomeMessage: cfg.Voice.WelcomeMessage, Password: cfg.Voice.Password, MaxUsers: cfg.Voice.MaxUsers,
	}).Error; err != nil {
		return nil, fmt.Errorf("loading server row: %w", err)
	}

	w := world.NewServer(world.Config{
		WelcomeMessage: cfg.Voice.WelcomeMessage,
		MaxUsers:       cfg.Voice.MaxUsers,
		Password:       cfg.Voice.Password,
	})

	w.Lock()
	defer w.Unlock()
	if _, err := w.CreateDefaultChannel(cfg.Voice.DefaultChannelName); err != nil {
		return nil, fmt.Errorf("creating default channel: %w", err)
	}

	snap, err := regStore.LoadAll(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("loading persisted snapshot: %w", err)
	}
	if err := w.LoadSnapshot(snap); err != nil {
		return nil, fmt.Errorf("applying persisted snapshot: %w", err)
	}
	return w, nil
}

// setupTracing initializes OpenTelemetry tracing if configured. When
// tracing is not configured it returns a no-op cleanup function.
func setupTracing(cfg *config.Config, instanceID string) (func(context.Context) error, error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return initTracer(cfg, instanceID)
}

func initTracer(cfg *config.Config, instanceID string) (func(context.Context) error, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "voiced"),
			attribute.String("service.instance.id", instanceID),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resources: %w", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown, nil
}

// shutdownDeps bundles what setupShutdownHandlers needs to tear down in
// parallel on receipt of a termination signal.
type shutdownDeps struct {
	scheduler  gocron.Scheduler
	stopVoice  func()
	stopBcast  context.CancelFunc
	kv         kv.KV
	pubsub     pubsub.PubSub
	cleanup    func(context.Context) error
	cleanupCtx context.Context
}

// setupShutdownHandlers blocks until SIGINT/SIGTERM/SIGQUIT/SIGHUP is
// received, then performs an orderly shutdown: stop accepting new
// packets, cancel the broadcast engine's subscription, tear down
// storage connections, flush the tracer.
func setupShutdownHandlers(deps shutdownDeps) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	sig := <-sigCh
	slog.Error("shutting down due to signal", "signal", sig)

	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := deps.scheduler.StopJobs(); err != nil {
			slog.Error("failed to stop scheduler jobs", "error", err)
		}
		if err := deps.scheduler.Shutdown(); err != nil {
			slog.Error("failed to stop scheduler", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		deps.stopVoice()
		deps.stopBcast()
		if deps.pubsub != nil {
			if err := deps.pubsub.Close(); err != nil {
				slog.Error("failed to close pubsub", "error", err)
			}
		}
		if deps.kv != nil {
			if err := deps.kv.Close(); err != nil {
				slog.Error("failed to close kv", "error", err)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if deps.cleanup != nil {
			const timeout = 5 * time.Second
			shutdownCtx, cancel := context.WithTimeout(deps.cleanupCtx, timeout)
			defer cancel()
			if err := deps.cleanup(shutdownCtx); err != nil {
				slog.Error("failed to shut down tracer", "error", err)
			}
		}
	}()

	const timeout = 10 * time.Second
	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()
	select {
	case <-c:
		slog.Info("all services stopped, shutting down gracefully")
		os.Exit(0)
	case <-time.After(timeout):
		slog.Error("shutdown timed out, forcing exit")
		os.Exit(1)
	}
}
