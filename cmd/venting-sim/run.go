// v0
// cmd/venting-sim/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/config"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/exchange"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/httpapi"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/logging"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/metrics"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/plugin"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/telemetry"
	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/zone"
)

func newRunCmd() *cobra.Command {
	var propsPath, logLevel string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the zone simulation with the venting controller attached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), propsPath, logLevel)
		},
	}
	cmd.Flags().StringVar(&propsPath, "properties", "", "properties file (default $SIM_PROPERTIES)")
	cmd.Flags().StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "debug, info, warn or error")
	return cmd
}

func run(parent context.Context, propsPath, logLevel string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load(propsPath, slog.Default())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	lg, lf := logging.Init(cfg.LogPath, logLevel)
	defer func() {
		if err := lf.Close(); err != nil {
			lg.Error("log file close", "err", err)
		}
	}()
	lg.Info("venting simulator starting", "zoneId", cfg.ZoneID, "step", cfg.Step.String(), "warmup", cfg.WarmupSteps)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(promReg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	sinks := telemetry.Fanout{m}
	if len(cfg.KafkaBrokers) > 0 {
		topic := cfg.TopicVentingPrefix + "." + cfg.ZoneID
		if err := telemetry.EnsureTopic(parent, lg, cfg.KafkaBrokers, topic, cfg.TopicPartitions, cfg.TopicReplication); err != nil {
			lg.Warn("topic ensure failed, relying on broker auto-create", "topic", topic, "err", err)
		}
		ks, err := telemetry.NewKafkaSink(cfg.KafkaBrokers, cfg.TopicVentingPrefix, cfg.ZoneID, lg)
		if err != nil {
			return err
		}
		defer func() {
			if err := ks.Close(); err != nil {
				lg.Warn("kafka writer close", "err", err)
			}
		}()
		sinks = append(sinks, m.Counted("kafka", ks))
	}

	reg := exchange.NewRegistry(lg)
	model := zone.NewModel(zone.Params{
		Step:             cfg.Step,
		InitialRH:        cfg.InitialRH,
		OutdoorMean:      cfg.OutdoorRHMean,
		OutdoorAmplitude: cfg.OutdoorRHAmp,
		GainPctPerHour:   cfg.MoistureGainPctH,
		Alpha:            cfg.Alpha,
		Beta:             cfg.Beta,
	})
	runner, err := zone.NewRunner(zone.RunConfig{
		ZoneID:      cfg.ZoneID,
		Steps:       cfg.Steps,
		WarmupSteps: cfg.WarmupSteps,
		Pace:        cfg.Pace,
	}, model, reg, nil, lg)
	if err != nil {
		return err
	}

	if cfg.MQTTBroker != "" {
		ms, err := telemetry.NewMQTTSink(cfg.MQTTBroker, "venting-sim-"+runner.RunID(), cfg.MQTTTopic, 5*time.Second)
		if err != nil {
			lg.Warn("mqtt disabled", "broker", cfg.MQTTBroker, "err", err)
		} else {
			defer ms.Close()
			sinks = append(sinks, m.Counted("mqtt", ms))
			lg.Info("mqtt publisher ready", "broker", cfg.MQTTBroker, "topic", cfg.MQTTTopic)
		}
	}
	runner.SetSink(sinks)

	ctrl := plugin.NewController(reg, lg)
	var ctrlState atomic.Int32
	runner.OnBeginTimestepBeforePredictor(func() (int, error) {
		status, err := ctrl.OnBeginTimestepBeforePredictor()
		ctrlState.Store(int32(ctrl.State()))
		return status, err
	})

	srv := httpapi.NewServer(cfg.ListenAddr, httpapi.Deps{
		Snapshot:        runner,
		ControllerState: func() string { return plugin.State(ctrlState.Load()).String() },
		ExchangeStats:   reg.Stats,
		Gatherer:        promReg,
		AccessLog:       os.Stdout,
	}, lg)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http server error", "err", err)
			stop()
		}
	}()

	runErr := runner.Run(ctx)

	sh, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Stop(sh)
	if runErr != nil {
		return fmt.Errorf("simulation: %w", runErr)
	}
	lg.Info("shutdown complete", "runId", runner.RunID())
	return nil
}
