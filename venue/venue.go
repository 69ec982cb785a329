package venue

// Venue 抽象交易场所：行情、仓位、盈亏与 IOC 报单。
// 核心逻辑只依赖该接口，按决策逐次读取快照，绝不跨决策缓存。
type Venue interface {
	// GetInstruments 返回全部可交易合约（会话内不变）。
	GetInstruments() (map[string]Instrument, error)
	// GetPositions 返回各合约带符号净持仓快照。
	GetPositions() (map[string]int, error)
	// GetPnL 返回当前总盈亏。
	GetPnL() (float64, error)
	// GetLastPriceBook 返回最近行情；无行情时 book 为 nil（非错误）。
	GetLastPriceBook(instrumentID string) (*PriceBook, error)
	// InsertOrder 发送 IOC 报单；调用返回即视为处理完毕，
	// 成交与否通过下一轮仓位快照体现。
	InsertOrder(o Order) error
}
