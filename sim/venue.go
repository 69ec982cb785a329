package sim

import (
	"errors"
	"sync"

	"futures-arb-go/venue"
)

// Venue 内存撮合的场所模拟（用于离线运行和测试）。
// IOC 报单直接与设置好的盘口撮合，剩余量作废。
type Venue struct {
	mu          sync.RWMutex
	instruments map[string]venue.Instrument
	books       map[string]*venue.PriceBook
	positions   map[string]int
	cash        float64

	inserted []venue.Order

	// 可注入的故障，用于覆盖报单失败分支。
	FailInsert error
}

func NewVenue() *Venue {
	return &Venue{
		instruments: make(map[string]venue.Instrument),
		books:       make(map[string]*venue.PriceBook),
		positions:   make(map[string]int),
	}
}

// AddInstrument 登记合约并初始化零仓位。
func (v *Venue) AddInstrument(ins venue.Instrument) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.instruments[ins.ID] = ins
	if _, ok := v.positions[ins.ID]; !ok {
		v.positions[ins.ID] = 0
	}
}

// SetBook 覆盖某合约的盘口快照。
func (v *Venue) SetBook(id string, book *venue.PriceBook) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.books[id] = book
}

// SetPosition 直接设置仓位（测试用）。
func (v *Venue) SetPosition(id string, pos int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.positions[id] = pos
}

// Inserted 返回已接收的报单记录（拷贝）。
func (v *Venue) Inserted() []venue.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	res := make([]venue.Order, len(v.inserted))
	copy(res, v.inserted)
	return res
}

func (v *Venue) GetInstruments() (map[string]venue.Instrument, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	res := make(map[string]venue.Instrument, len(v.instruments))
	for id, ins := range v.instruments {
		res[id] = ins
	}
	return res, nil
}

func (v *Venue) GetPositions() (map[string]int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	res := make(map[string]int, len(v.positions))
	for id, p := range v.positions {
		res[id] = p
	}
	return res, nil
}

// GetPnL 现金 + 按中间价估值的持仓市值。
func (v *Venue) GetPnL() (float64, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	pnl := v.cash
	for id, pos := range v.positions {
		if pos == 0 {
			continue
		}
		book := v.books[id]
		if !book.TwoSided() {
			continue
		}
		mid := (book.Bids[0].Price + book.Asks[0].Price) / 2
		pnl += float64(pos) * mid
	}
	return pnl, nil
}

func (v *Venue) GetLastPriceBook(id string) (*venue.PriceBook, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.books[id], nil
}

var errUnknownInstrument = errors.New("unknown instrument")

// InsertOrder 按 IOC 语义撮合：价格可达的档位依序吃掉，
// 剩余量撤销；成交直接落到仓位与现金。
func (v *Venue) InsertOrder(o venue.Order) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.FailInsert != nil {
		return v.FailInsert
	}
	if _, ok := v.instruments[o.InstrumentID]; !ok {
		return errUnknownInstrument
	}
	if !o.Side.Valid() || o.Volume <= 0 {
		return errors.New("invalid order")
	}
	v.inserted = append(v.inserted, o)

	book := v.books[o.InstrumentID]
	if book == nil {
		return nil
	}

	remaining := o.Volume
	if o.Side == venue.SideBid {
		var rest []venue.PriceLevel
		for _, lvl := range book.Asks {
			if remaining > 0 && lvl.Price <= o.Price {
				fill := min(remaining, lvl.Volume)
				remaining -= fill
				v.positions[o.InstrumentID] += fill
				v.cash -= float64(fill) * lvl.Price
				if lvl.Volume > fill {
					rest = append(rest, venue.PriceLevel{Price: lvl.Price, Volume: lvl.Volume - fill})
				}
				continue
			}
			rest = append(rest, lvl)
		}
		book.Asks = rest
	} else {
		var rest []venue.PriceLevel
		for _, lvl := range book.Bids {
			if remaining > 0 && lvl.Price >= o.Price {
				fill := min(remaining, lvl.Volume)
				remaining -= fill
				v.positions[o.InstrumentID] -= fill
				v.cash += float64(fill) * lvl.Price
				if lvl.Volume > fill {
					rest = append(rest, venue.PriceLevel{Price: lvl.Price, Volume: lvl.Volume - fill})
				}
				continue
			}
			rest = append(rest, lvl)
		}
		book.Bids = rest
	}
	return nil
}
