package hedge

import (
	"fmt"
	"sort"
	"time"

	"futures-arb-go/venue"
)

// 极端限价：确保 IOC 吃掉对手盘而不是留在簿里。
const (
	FlattenMinSellPrice = 0.10
	FlattenMaxBuyPrice  = 100000.00
)

// Flattener 会话收尾：把所有非零仓位用极端限价 IOC 打平。
// 合约之间留出 Pause 让成交落账后再读下一个。
type Flattener struct {
	venue venue.Venue
	Pause time.Duration
	Sleep func(time.Duration) // 可注入以便测试；nil 时用 time.Sleep
}

func NewFlattener(v venue.Venue) *Flattener {
	return &Flattener{venue: v, Pause: 200 * time.Millisecond}
}

// Flatten 逐合约顺序平仓，返回发单的合约数。
func (f *Flattener) Flatten() (int, error) {
	positions, err := f.venue.GetPositions()
	if err != nil {
		return 0, fmt.Errorf("get positions: %w", err)
	}

	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sleep := f.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	flattened := 0
	for _, id := range ids {
		pos := positions[id]
		if pos == 0 {
			continue
		}
		o := venue.Order{InstrumentID: id, Type: venue.OrderTypeIOC}
		if pos > 0 {
			o.Side, o.Price, o.Volume = venue.SideAsk, FlattenMinSellPrice, pos
		} else {
			o.Side, o.Price, o.Volume = venue.SideBid, FlattenMaxBuyPrice, -pos
		}
		if err := f.venue.InsertOrder(o); err != nil {
			return flattened, fmt.Errorf("flatten %s: %w", id, err)
		}
		flattened++
		sleep(f.Pause)
	}
	return flattened, nil
}
