package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"futures-arb-go/engine"
	"futures-arb-go/infrastructure/logger"
	"futures-arb-go/risk"
	"futures-arb-go/sim"
	"futures-arb-go/venue"
)

// stepClock 每次 Sleep 把虚拟时间推进对应时长，不真正等待。
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time        { return c.now }
func (c *stepClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func main() {
	minutes := flag.Int("minutes", 5, "模拟会话时长（分钟）")
	pollMs := flag.Int("pollMs", 200, "轮询间隔（毫秒）")
	threshold := flag.Float64("threshold", 0.05, "价差阈值")
	verbose := flag.Bool("v", false, "输出完整日志")
	flag.Parse()

	start := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	v := seedVenue(start)

	lg := logger.Nop()
	if *verbose {
		var err error
		lg, err = logger.New(logger.DefaultConfig())
		if err != nil {
			log.Fatalf("初始化日志失败: %v", err)
		}
		defer lg.Close()
	}

	instruments, _ := v.GetInstruments()
	pairs := engine.AutoPairs(instruments)

	clock := &stepClock{now: start}
	runner, err := engine.NewRunner(v, engine.Config{
		Threshold:       *threshold,
		Limits:          risk.Limits{Default: risk.DefaultPositionLimit},
		PollInterval:    time.Duration(*pollMs) * time.Millisecond,
		ReportInterval:  time.Minute,
		SessionDuration: time.Duration(*minutes) * time.Minute,
	}, pairs, clock, lg, nil)
	if err != nil {
		log.Fatalf("初始化引擎失败: %v", err)
	}

	summary, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("模拟运行失败: %v", err)
	}

	positions, _ := v.GetPositions()
	pnl, _ := v.GetPnL()
	fmt.Printf("intervals=%d trades=%d volume=%d\n",
		summary.Intervals, summary.TradeCount, summary.TradedVolume)
	fmt.Printf("pnl=%.2f mean=%.4f stdev=%.4f sharpe=%.4f\n",
		pnl, summary.MeanPnL, summary.StdevPnL, summary.Sharpe)
	for id, pos := range positions {
		if pos != 0 {
			fmt.Printf("position %s=%d\n", id, pos)
		}
	}
	for _, o := range v.Inserted() {
		fmt.Printf("order %s %s %d@%.2f\n", o.InstrumentID, o.Side, o.Volume, o.Price)
	}
}

// seedVenue 造一个带错价的盘面：期货相对贴现后的现货便宜，
// 引擎应当买期货、卖现货把价差吃掉。
func seedVenue(now time.Time) *sim.Venue {
	v := sim.NewVenue()
	expiry1 := now.AddDate(1, 0, 0)
	expiry2 := now.AddDate(2, 0, 0)

	v.AddInstrument(venue.Instrument{ID: "NVDA", Kind: venue.KindSpot})
	v.AddInstrument(venue.Instrument{
		ID: "NVDA_202503_F", Kind: venue.KindFuture, InterestRate: 0.03, Expiry: expiry1,
	})
	v.AddInstrument(venue.Instrument{
		ID: "NVDA_202603_F", Kind: venue.KindFuture, InterestRate: 0.03, Expiry: expiry2,
	})

	v.SetBook("NVDA", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 99.8, Volume: 200}},
		Asks: []venue.PriceLevel{{Price: 100.2, Volume: 200}},
	})
	// 近月期货 ask 明显低于贴现后的现货 bid
	v.SetBook("NVDA_202503_F", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 101.0, Volume: 80}},
		Asks: []venue.PriceLevel{{Price: 101.5, Volume: 80}},
	})
	v.SetBook("NVDA_202603_F", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 105.5, Volume: 60}},
		Asks: []venue.PriceLevel{{Price: 106.0, Volume: 60}},
	})
	return v
}
