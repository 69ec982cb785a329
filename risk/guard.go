package risk

import (
	"fmt"

	"futures-arb-go/venue"
)

// Guard 下单前校验接口；snapshot 为本次决策所用的仓位快照。
type Guard interface {
	PreOrder(snapshot map[string]int, o venue.Order) error
}

// LimitGuard 按 Limits 做持仓限额校验。UnitFactor 可选，
// 返回某合约的单位折算因子（如期货的贴现因子），nil 表示全部按 1 处理。
type LimitGuard struct {
	Limits     Limits
	UnitFactor func(instrumentID string) float64
}

func (g LimitGuard) PreOrder(snapshot map[string]int, o venue.Order) error {
	limit := g.Limits.For(o.InstrumentID)
	pos := snapshot[o.InstrumentID]

	var breach bool
	var err error
	if g.UnitFactor != nil {
		if f := g.UnitFactor(o.InstrumentID); f != 1.0 && f > 0 {
			breach, err = WouldBreachScaled(pos, f, o.Volume, o.Side, limit)
		} else {
			breach, err = WouldBreach(pos, o.Volume, o.Side, limit)
		}
	} else {
		breach, err = WouldBreach(pos, o.Volume, o.Side, limit)
	}
	if err != nil {
		return err
	}
	if breach {
		return fmt.Errorf("%w: %s %s %d lots at pos %d, limit %d",
			ErrLimitBreach, o.InstrumentID, o.Side, o.Volume, pos, limit)
	}
	return nil
}

// MultiGuard 顺序执行多个 Guard，任一返回错误即中止。
type MultiGuard struct {
	Guards []Guard
}

func (m MultiGuard) PreOrder(snapshot map[string]int, o venue.Order) error {
	for _, g := range m.Guards {
		if g == nil {
			continue
		}
		if err := g.PreOrder(snapshot, o); err != nil {
			return err
		}
	}
	return nil
}
