package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"futures-arb-go/hedge"
	"futures-arb-go/infrastructure/logger"
	"futures-arb-go/monitor"
	"futures-arb-go/pricing"
	"futures-arb-go/risk"
	"futures-arb-go/strategy"
	"futures-arb-go/venue"
)

// PairKind 标的组合形态。
type PairKind string

const (
	PairStockFuture  PairKind = "stock-future"
	PairFutureFuture PairKind = "future-future"
)

// Pair 一条被轮询的套利组合。
// 股票-期货形态使用 Stock+Future；期货-期货形态使用 Future+Future2，
// Stock 仅在 GroupNeutralize 打开时参与三腿中和。
type Pair struct {
	Kind            PairKind
	Stock           string
	Future          string
	Future2         string
	GroupNeutralize bool
	RequireProfit   bool
}

// Name 日志/指标里的组合标识。
func (p Pair) Name() string {
	if p.Kind == PairFutureFuture {
		return p.Future + "/" + p.Future2
	}
	return p.Stock + "/" + p.Future
}

// Config Runner 配置；零值字段落到默认。
type Config struct {
	Threshold          float64
	Limits             risk.Limits
	PollInterval       time.Duration
	ReportInterval     time.Duration
	SessionDuration    time.Duration
	HedgeTolerance     int
	MaxHedgeIterations int
}

func (c *Config) applyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = strategy.DefaultSpreadThreshold
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 200 * time.Millisecond
	}
	if c.ReportInterval <= 0 {
		c.ReportInterval = time.Minute
	}
	if c.SessionDuration <= 0 {
		c.SessionDuration = 30 * time.Minute
	}
	if c.HedgeTolerance <= 0 {
		c.HedgeTolerance = 1
	}
	if c.MaxHedgeIterations <= 0 {
		c.MaxHedgeIterations = hedge.DefaultMaxIterations
	}
}

// Runner 单线程轮询驱动：读行情/仓位、逐组合评估、发 IOC、
// 固定间隔休眠，直到会话截止。所有共享状态都归 Venue 所有，
// 每次决策重新读取。
type Runner struct {
	cfg   Config
	venue venue.Venue
	pairs []Pair
	clock Clock
	log   *logger.Logger
	mon   *monitor.Monitor

	instruments map[string]venue.Instrument
	guard       risk.Guard
	hedger      *hedge.PairHedger
	neutralizer *hedge.Neutralizer
	stats       SessionStats

	paramMu      sync.RWMutex
	threshold    float64
	hedgeTol     int
	hedgeMaxIter int
}

// NewRunner 组装 Runner；合约元数据在此一次性读取（会话内不变）。
func NewRunner(v venue.Venue, cfg Config, pairs []Pair, clock Clock, log *logger.Logger, mon *monitor.Monitor) (*Runner, error) {
	if v == nil {
		return nil, errors.New("venue is required")
	}
	if len(pairs) == 0 {
		return nil, errors.New("no pairs configured")
	}
	cfg.applyDefaults()
	if clock == nil {
		clock = WallClock
	}
	if log == nil {
		log = logger.Nop()
	}

	instruments, err := v.GetInstruments()
	if err != nil {
		return nil, fmt.Errorf("get instruments: %w", err)
	}
	for _, p := range pairs {
		for _, id := range []string{p.Stock, p.Future, p.Future2} {
			if id == "" {
				continue
			}
			if _, ok := instruments[id]; !ok {
				return nil, fmt.Errorf("pair %s: unknown instrument %s", p.Name(), id)
			}
		}
	}

	nz := hedge.NewNeutralizer(v, cfg.Limits)
	nz.Tolerance = cfg.HedgeTolerance
	nz.MaxIterations = cfg.MaxHedgeIterations

	return &Runner{
		cfg:          cfg,
		venue:        v,
		pairs:        pairs,
		clock:        clock,
		log:          log,
		mon:          mon,
		instruments:  instruments,
		guard:        risk.LimitGuard{Limits: cfg.Limits},
		hedger:       hedge.NewPairHedger(v, cfg.Limits),
		neutralizer:  nz,
		threshold:    cfg.Threshold,
		hedgeTol:     cfg.HedgeTolerance,
		hedgeMaxIter: cfg.MaxHedgeIterations,
	}, nil
}

// UpdateTrading 热更新价差阈值与中和参数（配置热加载回调用，
// 可能与主循环并发）。
func (r *Runner) UpdateTrading(threshold float64, tolerance, maxIterations int) {
	r.paramMu.Lock()
	defer r.paramMu.Unlock()
	if threshold > 0 {
		r.threshold = threshold
	}
	if tolerance > 0 {
		r.hedgeTol = tolerance
	}
	if maxIterations > 0 {
		r.hedgeMaxIter = maxIterations
	}
}

func (r *Runner) spreadThreshold() float64 {
	r.paramMu.RLock()
	defer r.paramMu.RUnlock()
	return r.threshold
}

func (r *Runner) hedgeParams() (tolerance, maxIterations int) {
	r.paramMu.RLock()
	defer r.paramMu.RUnlock()
	return r.hedgeTol, r.hedgeMaxIter
}

// Run 跑完整个会话并返回统计汇总。单个组合的可恢复异常
// （行情缺失、限额拦截）不会中断会话，只跳过该轮。
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := r.clock.Now()
	deadline := start.Add(r.cfg.SessionDuration)
	nextReport := start.Add(r.cfg.ReportInterval)

	pnlPrev, err := r.venue.GetPnL()
	if err != nil {
		return Summary{}, fmt.Errorf("get pnl: %w", err)
	}

	for {
		now := r.clock.Now()
		if !now.Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return r.stats.Summarize(), ctx.Err()
		default:
		}

		if !now.Before(nextReport) {
			pnlPrev = r.report(pnlPrev)
			nextReport = nextReport.Add(r.cfg.ReportInterval)
		}

		for _, p := range r.pairs {
			if err := r.step(p); err != nil {
				r.log.Warn("pair step failed", zap.String("pair", p.Name()), zap.Error(err))
			}
		}
		r.clock.Sleep(r.cfg.PollInterval)
	}

	pnlNow, err := r.venue.GetPnL()
	if err == nil {
		r.stats.RecordInterval(pnlNow - pnlPrev)
	}
	summary := r.stats.Summarize()
	r.log.Info("session finished",
		zap.Float64("total_pnl", summary.TotalPnL),
		zap.Float64("mean_pnl", summary.MeanPnL),
		zap.Float64("stdev_pnl", summary.StdevPnL),
		zap.Float64("sharpe", summary.Sharpe),
		zap.Int("traded_volume", summary.TradedVolume),
		zap.Int("trade_count", summary.TradeCount))
	return summary, nil
}

// report 记录周期 PnL 变化并刷新仓位观测。
func (r *Runner) report(pnlPrev float64) float64 {
	pnlNow, err := r.venue.GetPnL()
	if err != nil {
		r.log.Warn("get pnl failed", zap.Error(err))
		return pnlPrev
	}
	delta := pnlNow - pnlPrev
	r.stats.RecordInterval(delta)
	if r.mon != nil {
		r.mon.SetPnL(pnlNow)
	}

	positions, err := r.venue.GetPositions()
	if err == nil {
		fields := []zap.Field{zap.Float64("pnl", pnlNow), zap.Float64("pnl_delta", delta)}
		for id, pos := range positions {
			if r.mon != nil {
				r.mon.SetPosition(id, pos)
			}
			if pos != 0 {
				fields = append(fields, zap.Int(id, pos))
			}
		}
		r.log.Info("interval report", fields...)
	}
	return pnlNow
}

func (r *Runner) step(p Pair) error {
	switch p.Kind {
	case PairFutureFuture:
		return r.stepFutureFuture(p)
	default:
		return r.stepStockFuture(p)
	}
}

// discountOf 每轮重算贴现因子：到期距离随时间连续变化。
func (r *Runner) discountOf(futureID string) float64 {
	ins := r.instruments[futureID]
	d := pricing.DiscountFactor(ins.InterestRate, ins.Expiry, r.clock.Now())
	if r.mon != nil {
		r.mon.SetDiscountFactor(futureID, d)
	}
	return d
}

func (r *Runner) stepStockFuture(p Pair) error {
	stockBook, err := r.venue.GetLastPriceBook(p.Stock)
	if err != nil {
		return fmt.Errorf("get book %s: %w", p.Stock, err)
	}
	futureBook, err := r.venue.GetLastPriceBook(p.Future)
	if err != nil {
		return fmt.Errorf("get book %s: %w", p.Future, err)
	}

	d := r.discountOf(p.Future)
	opp := strategy.DetectStockFuture(stockBook, futureBook, d, r.spreadThreshold())
	if !opp.Found() {
		return nil
	}
	r.log.LogOpportunity(p.Name(), string(opp.Side), opp.Price, opp.SecondaryVolume)
	if r.mon != nil {
		r.mon.OpportunityDetected(p.Name(), string(opp.Side))
	}

	positions, err := r.venue.GetPositions()
	if err != nil {
		return fmt.Errorf("get positions: %w", err)
	}
	futureVol, _ := strategy.MaxHedgedVolume(
		opp.Side,
		positions[p.Stock], positions[p.Future],
		opp.SecondaryVolume, opp.PrimaryVolume,
		d,
		r.cfg.Limits.For(p.Stock), r.cfg.Limits.For(p.Future),
	)
	if futureVol <= 0 {
		if r.mon != nil {
			r.mon.OrderBlocked(p.Future)
		}
		return nil
	}

	if err := r.insert(positions, p.Future, opp.Price, futureVol, opp.Side); err != nil {
		return err
	}
	return r.hedgePair(p.Stock, p.Future, d, opp.Side)
}

func (r *Runner) stepFutureFuture(p Pair) error {
	book1, err := r.venue.GetLastPriceBook(p.Future)
	if err != nil {
		return fmt.Errorf("get book %s: %w", p.Future, err)
	}
	book2, err := r.venue.GetLastPriceBook(p.Future2)
	if err != nil {
		return fmt.Errorf("get book %s: %w", p.Future2, err)
	}

	d1 := r.discountOf(p.Future)
	d2 := r.discountOf(p.Future2)
	conv := pricing.ConversionFactor(d1, d2)

	opp := strategy.DetectFutureFuture(book1, book2, conv, r.spreadThreshold())
	if !opp.Found() {
		return nil
	}
	r.log.LogOpportunity(p.Name(), string(opp.Side), opp.Price, opp.SecondaryVolume)
	if r.mon != nil {
		r.mon.OpportunityDetected(p.Name(), string(opp.Side))
	}

	positions, err := r.venue.GetPositions()
	if err != nil {
		return fmt.Errorf("get positions: %w", err)
	}
	vol2, vol1 := strategy.MaxCoverVolume(
		opp.Side,
		positions[p.Future], positions[p.Future2],
		opp.PrimaryVolume, opp.SecondaryVolume,
		conv,
		r.cfg.Limits.For(p.Future), r.cfg.Limits.For(p.Future2),
	)
	if vol2 <= 0 {
		if r.mon != nil {
			r.mon.OrderBlocked(p.Future2)
		}
		return nil
	}

	if p.RequireProfit && p.Stock != "" {
		v1, v2 := float64(vol1), -float64(vol2)
		price1 := book1.Asks[0].Price
		if opp.Side == venue.SideAsk {
			v1, v2 = -v1, -v2
			price1 = book1.Bids[0].Price
		}
		if hedge.PreHedgeProfit(r.venue, p.Stock, v1, v2, d1, d2, price1, opp.Price) <= 0 {
			return nil
		}
	}

	// 探测极性是 1 号腿方向，实际报单在 2 号腿、方向取反。
	if err := r.insert(positions, p.Future2, opp.Price, vol2, opp.Side.Opposite()); err != nil {
		return err
	}

	if p.GroupNeutralize && p.Stock != "" {
		legs := []hedge.Leg{
			{InstrumentID: p.Stock, Factor: 1.0},
			{InstrumentID: p.Future, Factor: d1},
			{InstrumentID: p.Future2, Factor: d2},
		}
		r.neutralizer.Tolerance, r.neutralizer.MaxIterations = r.hedgeParams()
		res, err := r.neutralizer.Neutralize(legs)
		if r.mon != nil {
			r.mon.NeutralizeResult(res.Iterations, res.Residual)
		}
		if err != nil {
			return err
		}
		if res.TradedVolume > 0 {
			r.stats.AddTrade(res.TradedVolume)
			if r.mon != nil {
				r.mon.HedgeOrder(res.TradedVolume)
			}
		}
		if !res.Eliminated {
			r.log.Warn("residual exposure not eliminated",
				zap.String("pair", p.Name()), zap.Int("residual", res.Residual))
		}
		return nil
	}
	return r.hedgePair(p.Future, p.Future2, conv, opp.Side)
}

// insert 先过限额校验再发 IOC，并登记统计。封顶已保证不越限，
// 这里是提交前的最后一道闸。
func (r *Runner) insert(positions map[string]int, instrumentID string, price float64, volume int, side venue.Side) error {
	o := venue.Order{
		InstrumentID: instrumentID,
		Price:        price,
		Volume:       volume,
		Side:         side,
		Type:         venue.OrderTypeIOC,
	}
	if err := r.guard.PreOrder(positions, o); err != nil {
		if errors.Is(err, risk.ErrLimitBreach) {
			r.log.LogRisk(instrumentID, string(side), volume, err)
			if r.mon != nil {
				r.mon.OrderBlocked(instrumentID)
			}
			return nil
		}
		return err
	}
	if err := r.venue.InsertOrder(o); err != nil {
		return fmt.Errorf("insert order %s: %w", instrumentID, err)
	}
	r.log.LogOrder(instrumentID, string(side), price, volume)
	r.stats.AddTrade(volume)
	if r.mon != nil {
		r.mon.OrderInserted(instrumentID, volume)
	}
	return nil
}

func (r *Runner) hedgePair(primaryID, secondaryID string, factor float64, justSent venue.Side) error {
	vol, side, err := r.hedger.Hedge(primaryID, secondaryID, factor, justSent)
	if err != nil {
		return fmt.Errorf("hedge %s: %w", primaryID, err)
	}
	if vol > 0 {
		r.log.LogHedge(primaryID, string(side), vol, 0)
		r.stats.AddTrade(vol)
		if r.mon != nil {
			r.mon.HedgeOrder(vol)
		}
	}
	return nil
}
