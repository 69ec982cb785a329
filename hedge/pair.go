package hedge

import (
	"fmt"

	"futures-arb-go/risk"
	"futures-arb-go/venue"
)

// PairHedger 在两合约组内把净敞口拉回零：主腿按盘口最优价
// 发 IOC，对冲从腿刚刚产生的敞口。
type PairHedger struct {
	venue  venue.Venue
	limits risk.Limits
}

func NewPairHedger(v venue.Venue, limits risk.Limits) *PairHedger {
	return &PairHedger{venue: v, limits: limits}
}

// pendingAdjustment 把刚刚发出、尚未反映进仓位快照的 IOC 折进 delta。
func pendingAdjustment(justSent venue.Side) int {
	switch justSent {
	case venue.SideBid:
		return 1
	case venue.SideAsk:
		return -1
	default:
		return 0
	}
}

// Hedge 计算 delta = round(主腿仓位 + 从腿仓位*factor + 调整项)，
// 并在主腿上反向 IOC 对冲。所需盘口一侧缺失时跳过本轮（返回 0，
// 无错误），等下一轮重试；限额不允许时同样不发单。
// 返回实际发出的对冲手数与方向。
func (h *PairHedger) Hedge(primaryID, secondaryID string, factor float64, justSent venue.Side) (int, venue.Side, error) {
	positions, err := h.venue.GetPositions()
	if err != nil {
		return 0, venue.SideNone, fmt.Errorf("get positions: %w", err)
	}

	delta := roundLots(float64(positions[primaryID]) + float64(positions[secondaryID])*factor + float64(pendingAdjustment(justSent)))
	if delta == 0 {
		return 0, venue.SideNone, nil
	}

	book, err := h.venue.GetLastPriceBook(primaryID)
	if err != nil {
		return 0, venue.SideNone, fmt.Errorf("get book %s: %w", primaryID, err)
	}

	var side venue.Side
	var price float64
	var volume int
	if delta > 0 {
		bid, ok := book.BestBid()
		if !ok {
			return 0, venue.SideNone, nil
		}
		side, price, volume = venue.SideAsk, bid.Price, delta
	} else {
		ask, ok := book.BestAsk()
		if !ok {
			return 0, venue.SideNone, nil
		}
		side, price, volume = venue.SideBid, ask.Price, -delta
	}

	breach, err := risk.WouldBreach(positions[primaryID], volume, side, h.limits.For(primaryID))
	if err != nil {
		return 0, venue.SideNone, err
	}
	if breach {
		return 0, venue.SideNone, nil
	}

	if err := h.venue.InsertOrder(venue.Order{
		InstrumentID: primaryID,
		Price:        price,
		Volume:       volume,
		Side:         side,
		Type:         venue.OrderTypeIOC,
	}); err != nil {
		return 0, venue.SideNone, fmt.Errorf("insert hedge order: %w", err)
	}
	return volume, side, nil
}
