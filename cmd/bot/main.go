package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/sirupsen/logrus"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/bot"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/persistence/indexdb"
	tlog "github.com/Kuenec/GigaLearn-RLBot-Example/internal/persistence/log"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/transport/ws"
)

func main() {
	var (
		configPath = flag.String("config", "./configs/bot.yaml", "bot config path")
		url        = flag.String("url", "", "host ws url (default: config host_url)")
		checkpoint = flag.String("checkpoint", "", "checkpoint directory (default: latest under checkpoints_dir)")
		recordDir  = flag.String("record", "", "directory for tick recordings (default: config record_dir)")
		indexPath  = flag.String("index_db", "", "sqlite index path (default: config index_db)")
		statsAddr  = flag.String("statsview", "", "runtime stats viewer listen address (empty to disable)")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if *url != "" {
		cfg.HostURL = *url
	}
	if *checkpoint != "" {
		cfg.Checkpoint = *checkpoint
	}
	if *recordDir != "" {
		cfg.RecordDir = *recordDir
	}
	if *indexPath != "" {
		cfg.IndexDB = *indexPath
	}
	lvl, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(lvl)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.WithError(err).Warn("sentry disabled")
		} else {
			defer sentry.Flush(5 * time.Second)
			defer sentry.Recover()
		}
	}

	if *statsAddr != "" {
		viewer.SetConfiguration(viewer.WithAddr(*statsAddr))
		mgr := statsview.New()
		go mgr.Start()
		logger.WithField("addr", *statsAddr).Info("statsview enabled")
	}

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("host_url", cfg.HostURL)
		})
		hub.CaptureException(err)
		hub.Flush(5 * time.Second)
		logger.WithError(err).Error("bot stopped")
		os.Exit(1)
	}
}

func run(cfg config.Bot, logger *logrus.Logger) error {
	if cfg.UseGPU {
		logger.Warn("use_gpu requested; inference runs on the CPU")
	}

	mgr, dir, err := bot.Build(cfg, logger)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"checkpoint": dir, "bots": mgr.Len()}).Info("policy loaded")

	opts := ws.Options{URL: cfg.HostURL, Log: logger}
	if cfg.ValidatePackets {
		v, err := protocol.NewValidator()
		if err != nil {
			return fmt.Errorf("schemas: %w", err)
		}
		opts.Validator = v
	}

	if cfg.RecordDir != "" {
		rec := tlog.NewTickRecorder(cfg.RecordDir)
		defer func() {
			if err := rec.Close(); err != nil {
				logger.WithError(err).Warn("close recorder")
			}
		}()
		opts.Sinks = append(opts.Sinks, ws.RecorderSink{Rec: rec})
	}

	if cfg.IndexDB != "" {
		idx, err := indexdb.OpenSQLite(cfg.IndexDB)
		if err != nil {
			return fmt.Errorf("index db: %w", err)
		}
		defer func() {
			st := idx.Stats()
			if st.DropTickTotal > 0 || st.DropDecisionTotal > 0 {
				logger.WithFields(logrus.Fields{"ticks": st.DropTickTotal, "decisions": st.DropDecisionTotal}).Warn("index rows dropped")
			}
			_ = idx.Close()
		}()
		if err := idx.UpsertConfig(cfg, dir); err != nil {
			return fmt.Errorf("index db: %w", err)
		}
		opts.Sinks = append(opts.Sinks, ws.IndexSink{Index: idx})
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := ws.NewClient(mgr, opts)
	logger.WithField("url", cfg.HostURL).Info("connecting")
	err = client.Run(ctx)
	logger.WithField("ticks", client.Ticks()).Info("disconnected")
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
