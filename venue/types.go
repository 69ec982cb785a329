package venue

import "time"

// Side 表示报单方向；None 用于"本轮不交易"的判定结果。
type Side string

const (
	SideBid  Side = "bid"
	SideAsk  Side = "ask"
	SideNone Side = "none"
)

// Opposite 返回对手方向；None 返回 None。
func (s Side) Opposite() Side {
	switch s {
	case SideBid:
		return SideAsk
	case SideAsk:
		return SideBid
	default:
		return SideNone
	}
}

// Valid 报单方向只允许 bid/ask。
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk
}

// InstrumentKind 区分现货与期货。
type InstrumentKind string

const (
	KindSpot   InstrumentKind = "spot"
	KindFuture InstrumentKind = "future"
)

// Instrument 会话内不可变；期货额外携带利率与到期日，
// 二者只用于每轮重算贴现因子。
type Instrument struct {
	ID           string
	Kind         InstrumentKind
	InterestRate float64   // 年化利率，仅期货有效
	Expiry       time.Time // 到期日，仅期货有效
}

// IsFuture 是否为期货。
func (i Instrument) IsFuture() bool { return i.Kind == KindFuture }

// PriceLevel 单档行情：价格 + 整数手数。
type PriceLevel struct {
	Price  float64
	Volume int
}

// PriceBook 买档按价格降序、卖档按升序排列；任一侧可为空。
type PriceBook struct {
	InstrumentID string
	Bids         []PriceLevel
	Asks         []PriceLevel
}

// BestBid 返回最优买档；不存在时 ok=false。
func (b *PriceBook) BestBid() (PriceLevel, bool) {
	if b == nil || len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk 返回最优卖档；不存在时 ok=false。
func (b *PriceBook) BestAsk() (PriceLevel, bool) {
	if b == nil || len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}

// TwoSided 双边行情齐全才可做公允价比较。
func (b *PriceBook) TwoSided() bool {
	return b != nil && len(b.Bids) > 0 && len(b.Asks) > 0
}

// OrderType 目前只用 IOC：立即成交否则撤销，不留挂单风险。
type OrderType string

const OrderTypeIOC OrderType = "ioc"

// Order 是发往场所的报单请求。
type Order struct {
	InstrumentID string
	Price        float64
	Volume       int
	Side         Side
	Type         OrderType
}
