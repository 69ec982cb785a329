package monitor

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor Prometheus 指标收集器。
type Monitor struct {
	registry *prometheus.Registry

	// 套利指标
	opportunities  *prometheus.CounterVec
	ordersInserted *prometheus.CounterVec
	ordersBlocked  *prometheus.CounterVec
	tradedVolume   prometheus.Counter

	// 中和指标
	hedgeOrders     prometheus.Counter
	hedgeIterations prometheus.Histogram
	hedgeResidual   prometheus.Gauge

	// 仓位/盈亏指标
	position *prometheus.GaugeVec
	pnl      prometheus.Gauge

	// 定价指标
	discountFactor *prometheus.GaugeVec

	server *http.Server
	mu     sync.Mutex
}

// New 创建独立 registry 的 Monitor。
func New(namespace string) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Monitor{
		registry: reg,
		opportunities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_total",
			Help:      "Detected arbitrage opportunities by pair and side.",
		}, []string{"pair", "side"}),
		ordersInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_inserted_total",
			Help:      "IOC orders sent to the venue by instrument.",
		}, []string{"instrument"}),
		ordersBlocked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_blocked_total",
			Help:      "Orders suppressed by the position limit guard.",
		}, []string{"instrument"}),
		tradedVolume: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_volume_lots_total",
			Help:      "Cumulative traded volume in lots.",
		}),
		hedgeOrders: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hedge_orders_total",
			Help:      "Hedge/neutralize IOC orders sent.",
		}),
		hedgeIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "neutralize_iterations",
			Help:      "Iterations taken per multi-leg neutralization.",
			Buckets:   prometheus.LinearBuckets(0, 2, 9),
		}),
		hedgeResidual: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "neutralize_residual_lots",
			Help:      "Residual delta after the last neutralization, in lots.",
		}),
		position: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_lots",
			Help:      "Signed net position per instrument.",
		}, []string{"instrument"}),
		pnl: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pnl",
			Help:      "Current total PnL as reported by the venue.",
		}),
		discountFactor: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discount_factor",
			Help:      "Latest discount factor per future.",
		}, []string{"instrument"}),
	}
}

func (m *Monitor) OpportunityDetected(pair, side string) {
	m.opportunities.WithLabelValues(pair, side).Inc()
}

func (m *Monitor) OrderInserted(instrument string, volume int) {
	m.ordersInserted.WithLabelValues(instrument).Inc()
	m.tradedVolume.Add(float64(volume))
}

func (m *Monitor) OrderBlocked(instrument string) {
	m.ordersBlocked.WithLabelValues(instrument).Inc()
}

func (m *Monitor) HedgeOrder(volume int) {
	m.hedgeOrders.Inc()
	m.tradedVolume.Add(float64(volume))
}

func (m *Monitor) NeutralizeResult(iterations, residual int) {
	m.hedgeIterations.Observe(float64(iterations))
	m.hedgeResidual.Set(float64(residual))
}

func (m *Monitor) SetPosition(instrument string, lots int) {
	m.position.WithLabelValues(instrument).Set(float64(lots))
}

func (m *Monitor) SetPnL(pnl float64) {
	m.pnl.Set(pnl)
}

func (m *Monitor) SetDiscountFactor(instrument string, factor float64) {
	m.discountFactor.WithLabelValues(instrument).Set(factor)
}

// Serve 在 addr 上暴露 /metrics；addr 为空则不启动。
func (m *Monitor) Serve(addr string) {
	if addr == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = m.server.ListenAndServe()
	}()
}

// Close 停止指标服务。
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server == nil {
		return nil
	}
	return m.server.Close()
}
