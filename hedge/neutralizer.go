package hedge

import (
	"fmt"
	"math"

	"futures-arb-go/risk"
	"futures-arb-go/venue"
)

// Leg 合约组中的一条腿及其单位折算因子（现货 1.0，期货为贴现因子）。
type Leg struct {
	InstrumentID string
	Factor       float64
}

// Result 一次中和的结果。Eliminated=false 表示在迭代上限内
// 没能把残余敞口压进容差（盘口枯竭或限额卡死）。
type Result struct {
	TradedVolume int
	Residual     int
	Iterations   int
	Eliminated   bool
}

// DefaultMaxIterations 中和循环的迭代上限，防止在不可成交的
// 残余敞口上空转。
const DefaultMaxIterations = 16

// Neutralizer 多腿中和器：反复选出公共单位下最优的腿发 IOC，
// 直到 |delta| 进入容差或无合法报单可发。
type Neutralizer struct {
	venue         venue.Venue
	limits        risk.Limits
	Tolerance     int
	MaxIterations int
}

func NewNeutralizer(v venue.Venue, limits risk.Limits) *Neutralizer {
	return &Neutralizer{
		venue:         v,
		limits:        limits,
		Tolerance:     1,
		MaxIterations: DefaultMaxIterations,
	}
}

type candidate struct {
	leg         Leg
	side        venue.Side
	nativePrice float64
	commonPrice float64
}

// Neutralize 对组内全部腿做有界的 delta 中和。每轮迭代重新读取
// 仓位与盘口（不跨决策缓存），delta<0 时买公共单位下最便宜的腿，
// delta>0 时卖最贵的腿，单笔量 = floor(min(|delta|/factor, 限额余量))。
func (n *Neutralizer) Neutralize(legs []Leg) (Result, error) {
	var res Result
	maxIter := n.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tolerance := n.Tolerance
	if tolerance < 0 {
		tolerance = 0
	}

	for res.Iterations < maxIter {
		positions, err := n.venue.GetPositions()
		if err != nil {
			return res, fmt.Errorf("get positions: %w", err)
		}

		var exposure float64
		for _, leg := range legs {
			exposure += float64(positions[leg.InstrumentID]) * leg.Factor
		}
		delta := roundLots(exposure)
		res.Residual = delta
		if abs(delta) <= tolerance {
			res.Eliminated = true
			return res, nil
		}

		best, ok, err := n.pickLeg(legs, delta)
		if err != nil {
			return res, err
		}
		if !ok {
			return res, nil
		}

		pos := positions[best.leg.InstrumentID]
		limit := n.limits.For(best.leg.InstrumentID)
		headroom := limit - pos
		if best.side == venue.SideAsk {
			headroom = limit + pos
		}
		volume := floorToLot(math.Min(float64(abs(delta))/best.leg.Factor, float64(headroom)))
		if volume <= 0 {
			return res, nil
		}

		if err := n.venue.InsertOrder(venue.Order{
			InstrumentID: best.leg.InstrumentID,
			Price:        best.nativePrice,
			Volume:       volume,
			Side:         best.side,
			Type:         venue.OrderTypeIOC,
		}); err != nil {
			return res, fmt.Errorf("insert neutralize order: %w", err)
		}
		res.TradedVolume += volume
		res.Iterations++
	}
	return res, nil
}

// pickLeg 在有可用盘口的腿里选公共单位下的最优价：
// 买时最便宜（delta<0），卖时最贵（delta>0）。
func (n *Neutralizer) pickLeg(legs []Leg, delta int) (candidate, bool, error) {
	side := venue.SideBid
	if delta > 0 {
		side = venue.SideAsk
	}

	var best candidate
	found := false
	for _, leg := range legs {
		book, err := n.venue.GetLastPriceBook(leg.InstrumentID)
		if err != nil {
			return candidate{}, false, fmt.Errorf("get book %s: %w", leg.InstrumentID, err)
		}
		var level venue.PriceLevel
		var ok bool
		if side == venue.SideBid {
			level, ok = book.BestAsk()
		} else {
			level, ok = book.BestBid()
		}
		if !ok {
			continue
		}
		c := candidate{
			leg:         leg,
			side:        side,
			nativePrice: level.Price,
			commonPrice: level.Price * leg.Factor,
		}
		if !found {
			best, found = c, true
			continue
		}
		if side == venue.SideBid && c.commonPrice < best.commonPrice {
			best = c
		}
		if side == venue.SideAsk && c.commonPrice > best.commonPrice {
			best = c
		}
	}
	return best, found, nil
}

func roundLots(v float64) int {
	return int(math.Round(v))
}

func floorToLot(v float64) int {
	n := int(math.Floor(v))
	if n < 0 {
		return 0
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
