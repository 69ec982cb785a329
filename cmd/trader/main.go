package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"futures-arb-go/config"
	"futures-arb-go/engine"
	"futures-arb-go/gateway"
	"futures-arb-go/hedge"
	"futures-arb-go/infrastructure/logger"
	"futures-arb-go/monitor"
	"futures-arb-go/risk"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	metricsAddr := flag.String("metricsAddr", "", "覆盖配置中的 metrics 监听地址")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	lg, err := logger.New(logger.Config{
		Level:      orDefault(cfg.Logging.Level, "info"),
		Outputs:    orDefaultSlice(cfg.Logging.Outputs, []string{"stdout"}),
		OutputFile: cfg.Logging.OutputFile,
		Format:     orDefault(cfg.Logging.Format, "console"),
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer lg.Close()

	mon := monitor.New("arb")
	addr := cfg.Metrics.Addr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	mon.Serve(addr)
	defer mon.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var limiter gateway.RateLimiter = gateway.NopLimiter{}
	if cfg.Venue.OrderRate > 0 {
		limiter = gateway.NewTokenBucketLimiter(cfg.Venue.OrderRate, cfg.Venue.OrderBurst)
	}
	client, err := gateway.Dial(cfg.Venue.Endpoint, cfg.Venue.APIKey, limiter)
	if err != nil {
		lg.Fatal("连接场所失败", zap.Error(err))
	}
	defer client.Close()

	pairs, err := buildPairs(client, cfg)
	if err != nil {
		lg.Fatal("构建组合失败", zap.Error(err))
	}

	runner, err := engine.NewRunner(client, engine.Config{
		Threshold: cfg.Trading.SpreadThreshold,
		Limits: risk.Limits{
			Default:       cfg.Limits.Default,
			PerInstrument: cfg.Limits.PerInstrument,
		},
		PollInterval:       cfg.Session.PollInterval(),
		ReportInterval:     cfg.Session.ReportInterval(),
		SessionDuration:    cfg.Session.Duration(),
		HedgeTolerance:     cfg.Trading.HedgeTolerance,
		MaxHedgeIterations: cfg.Trading.MaxHedgeIterations,
	}, pairs, engine.WallClock, lg, mon)
	if err != nil {
		lg.Fatal("初始化引擎失败", zap.Error(err))
	}

	// 配置热加载：只动交易参数，组合与限额重启才生效。
	watcher := &config.Watcher{Path: *cfgPath}
	go func() {
		_ = watcher.Start(ctx, func(latest config.AppConfig) {
			runner.UpdateTrading(
				latest.Trading.SpreadThreshold,
				latest.Trading.HedgeTolerance,
				latest.Trading.MaxHedgeIterations,
			)
			lg.Info("trading params reloaded",
				zap.Float64("threshold", latest.Trading.SpreadThreshold))
		})
	}()

	notifySystemd(ctx)

	summary, err := runner.Run(ctx)
	if err != nil && ctx.Err() == nil {
		lg.Error("会话异常结束", zap.Error(err))
	}
	lg.Info("session summary",
		zap.Float64("total_pnl", summary.TotalPnL),
		zap.Float64("sharpe", summary.Sharpe),
		zap.Int("traded_volume", summary.TradedVolume))

	if cfg.Session.FlattenOnExit {
		flattener := hedge.NewFlattener(client)
		n, err := flattener.Flatten()
		if err != nil {
			lg.Error("平仓失败", zap.Error(err))
		} else {
			lg.Info("positions flattened", zap.Int("orders", n))
		}
	}
}

// buildPairs 按配置或命名约定得到要轮询的组合。
func buildPairs(v *gateway.Client, cfg config.AppConfig) ([]engine.Pair, error) {
	if cfg.Autodiscover {
		instruments, err := v.GetInstruments()
		if err != nil {
			return nil, err
		}
		return engine.AutoPairs(instruments), nil
	}
	pairs := make([]engine.Pair, 0, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		kind := engine.PairStockFuture
		if p.Future2 != "" {
			kind = engine.PairFutureFuture
		}
		pairs = append(pairs, engine.Pair{
			Kind:            kind,
			Stock:           p.Stock,
			Future:          p.Future,
			Future2:         p.Future2,
			GroupNeutralize: p.GroupNeutralize,
			RequireProfit:   p.RequireProfit,
		})
	}
	return pairs, nil
}

// notifySystemd 上报就绪并按需喂 watchdog；非 systemd 环境为空操作。
func notifySystemd(ctx context.Context) {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}
	}()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultSlice(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
