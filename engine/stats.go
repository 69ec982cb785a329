package engine

import "math"

// SessionStats 累计会话统计：每个报告周期记录一次 PnL 变化，
// 会话结束时汇总为均值/标准差/Sharpe。
type SessionStats struct {
	pnlDeltas    []float64
	TradedVolume int
	TradeCount   int
}

// RecordInterval 记录一个报告周期的 PnL 变化。
func (s *SessionStats) RecordInterval(delta float64) {
	s.pnlDeltas = append(s.pnlDeltas, delta)
}

// AddTrade 累计成交量与笔数。
func (s *SessionStats) AddTrade(volume int) {
	if volume <= 0 {
		return
	}
	s.TradedVolume += volume
	s.TradeCount++
}

// Summary 会话汇总。样本不足时 Stdev/Sharpe 为 0。
type Summary struct {
	Intervals    int
	TotalPnL     float64
	MeanPnL      float64
	StdevPnL     float64
	Sharpe       float64
	TradedVolume int
	TradeCount   int
}

// Summarize 计算汇总指标；标准差为样本标准差（n-1）。
func (s *SessionStats) Summarize() Summary {
	sum := Summary{
		Intervals:    len(s.pnlDeltas),
		TradedVolume: s.TradedVolume,
		TradeCount:   s.TradeCount,
	}
	if len(s.pnlDeltas) == 0 {
		return sum
	}
	for _, d := range s.pnlDeltas {
		sum.TotalPnL += d
	}
	sum.MeanPnL = sum.TotalPnL / float64(len(s.pnlDeltas))
	if len(s.pnlDeltas) >= 2 {
		var sq float64
		for _, d := range s.pnlDeltas {
			diff := d - sum.MeanPnL
			sq += diff * diff
		}
		sum.StdevPnL = math.Sqrt(sq / float64(len(s.pnlDeltas)-1))
		if sum.StdevPnL > 0 {
			sum.Sharpe = sum.MeanPnL / sum.StdevPnL
		}
	}
	return sum
}
