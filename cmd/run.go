package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdrp-sim/go-engine/internal/config"
	"github.com/mdrp-sim/go-engine/internal/logger"
	"github.com/mdrp-sim/go-engine/internal/observability"
	"github.com/mdrp-sim/go-engine/internal/sim/alert"
	"github.com/mdrp-sim/go-engine/internal/sim/dispatcher"
	"github.com/mdrp-sim/go-engine/internal/sim/metrics"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
	"github.com/mdrp-sim/go-engine/internal/sim/trace"
	"github.com/mdrp-sim/go-engine/internal/sim/world"
	"github.com/mdrp-sim/go-engine/internal/sim/world/fixturesource"
	"github.com/mdrp-sim/go-engine/internal/sim/world/pgdatasource"
)

// runCmd executes one simulated instance end to end: build the wired
// components from the current configuration, run the world through
// its simulated window, then write the courier/order CSV reports.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run one simulated instance",
	Long:  "run one simulated instance of the delivery platform and write the courier/order reports",
	RunE:  runInstance,
}

func init() {
	RootCmd.AddCommand(runCmd)
}

// multiTracer fans one dispatcher event out to every wired sink, so a
// run can feed both the JSON-lines trace file and the Prometheus
// collector without the dispatcher knowing either exists.
type multiTracer struct {
	runID   string
	tracers []dispatcher.Tracer
}

func (m multiTracer) Trace(event string, fields map[string]any) {
	stamped := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		stamped[k] = v
	}
	stamped["run_id"] = m.runID
	for _, t := range m.tracers {
		t.Trace(event, stamped)
	}
}

func runInstance(cmd *cobra.Command, args []string) (runErr error) {
	cfg := currentConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := logger.New("stdout")
	if err != nil {
		return fmt.Errorf("run: logger: %w", err)
	}
	defer log.Sync()

	// The dispatcher panics on a fatal registry invariant violation
	// (spec.md §7, internal/sim/dispatcher/invariants.go) instead of
	// returning an error, since a broken invariant is a programming bug
	// the simulation cannot run through. This recover is the "run
	// command recovers at the top level" half of that mechanism: it
	// logs where the registry dump landed, fires the Telegram alert if
	// one is configured, and turns the panic into a normal non-zero
	// exit instead of a raw stack trace.
	var alertSink *alert.Sink
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		iv, ok := r.(*dispatcher.InvariantViolation)
		if !ok {
			panic(r)
		}
		log.Error("dispatcher aborted on a fatal registry invariant violation",
			zap.String("reason", iv.Reason),
			zap.String("trace_path", cfg.Trace.Path),
		)
		if alertSink != nil {
			alertSink.Alert(ctx, fmt.Sprintf("mdrp-sim instance %d aborted: %s", cfg.Simulation.Instance, iv.Reason))
		}
		runErr = fmt.Errorf("run: %w", iv)
	}()

	// runID ties every log line and trace record of this process to
	// one invocation, so two overlapping `run` processes against the
	// same trace/metrics directory can be told apart after the fact.
	runID := uuid.NewString()
	log = log.WithInstance(cfg.Simulation.Instance)
	log = &logger.Logger{Logger: log.With(zap.String("run_id", runID))}

	source, closeSource, err := buildDataSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	client := buildRoutingClient(cfg, log)

	sink, err := trace.Open(cfg.Trace.Path)
	if err != nil {
		return fmt.Errorf("run: trace: %w", err)
	}
	defer sink.Close()

	tracer := multiTracer{runID: runID, tracers: []dispatcher.Tracer{sink, observability.Collector{}}}

	metricsSrv := observability.Serve(cfg.Server.MetricsPort)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutdownCtx)
	}()

	if cfg.Telegram.Enabled {
		alertSink, err = alert.New(log, cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("run: alert: %w", err)
		}
	}

	w, err := world.New(cfg, source, client, log, tracer)
	if err != nil {
		return fmt.Errorf("run: world: %w", err)
	}

	result, err := w.Run()
	if err != nil {
		if alertSink != nil {
			alertSink.Alert(ctx, fmt.Sprintf("mdrp-sim instance %d aborted: %v", cfg.Simulation.Instance, err))
		}
		return fmt.Errorf("run: %w", err)
	}

	courierRows := metrics.BuildCourierRows(result)
	if err := metrics.WriteCourierCSV(cfg.Trace.MetricsCSV+"_couriers.csv", courierRows); err != nil {
		return fmt.Errorf("run: write courier report: %w", err)
	}

	orderRows := metrics.BuildOrderRows(result)
	if err := metrics.WriteOrderCSV(cfg.Trace.MetricsCSV+"_orders.csv", orderRows); err != nil {
		return fmt.Errorf("run: write order report: %w", err)
	}

	log.Info("instance complete",
		zap.Int("couriers", len(result.Couriers)),
		zap.Int("fulfilled", len(result.Fulfilled)),
		zap.Int("canceled", len(result.Canceled)),
		zap.Int("lost", len(result.Lost)),
	)
	return nil
}

func buildDataSource(ctx context.Context, cfg *config.Config) (world.DataSource, func(), error) {
	switch cfg.DataSource.Kind {
	case "postgres":
		src, err := pgdatasource.New(ctx, cfg.DataSource.DSN)
		if err != nil {
			return nil, func() {}, fmt.Errorf("run: data source: %w", err)
		}
		return src, func() { src.Close() }, nil
	default:
		return fixturesource.New(), func() {}, nil
	}
}

func buildRoutingClient(cfg *config.Config, log *logger.Logger) routing.Client {
	if cfg.Routing.Kind == "osrm" {
		return routing.NewOSRMClient(
			cfg.Routing.BaseURL,
			cfg.Routing.RequestTimeout,
			cfg.Routing.RateLimitRPS,
			cfg.Routing.RateLimitBurst,
			cfg.Routing.MaxRetries,
			log,
		)
	}
	return routing.StraightLineClient{}
}
