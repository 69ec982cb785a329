package risk

import (
	"fmt"

	"futures-arb-go/venue"
)

// DefaultPositionLimit 单合约默认对称持仓上限（±L）。
const DefaultPositionLimit = 100

// Limits 持仓限额配置；未单独配置的合约使用 Default。
type Limits struct {
	Default       int
	PerInstrument map[string]int
}

// For 返回某合约生效的限额。
func (l Limits) For(instrumentID string) int {
	if v, ok := l.PerInstrument[instrumentID]; ok {
		return v
	}
	if l.Default > 0 {
		return l.Default
	}
	return DefaultPositionLimit
}

// WouldBreach 判定按 side 成交 volume 手后是否越过 ±limit。
// 只读调用方传入的仓位快照，读一致性由调用方控制。
func WouldBreach(position, volume int, side venue.Side, limit int) (bool, error) {
	switch side {
	case venue.SideBid:
		return position+volume > limit, nil
	case venue.SideAsk:
		return position-volume < -limit, nil
	default:
		return false, fmt.Errorf("%w: %q, expecting %q or %q", ErrInvalidSide, side, venue.SideBid, venue.SideAsk)
	}
}

// WouldBreachScaled 先把持仓按 factor 折算成公共单位再做同样比较，
// 用于把期货敞口换算为现货等价（或 1 号期货等价）手数。
func WouldBreachScaled(position int, factor float64, volume int, side venue.Side, limit int) (bool, error) {
	scaled := float64(position) * factor
	switch side {
	case venue.SideBid:
		return scaled+float64(volume) > float64(limit), nil
	case venue.SideAsk:
		return scaled-float64(volume) < -float64(limit), nil
	default:
		return false, fmt.Errorf("%w: %q, expecting %q or %q", ErrInvalidSide, side, venue.SideBid, venue.SideAsk)
	}
}
