package gateway

import (
	"encoding/json"
	"time"

	"futures-arb-go/venue"
)

// request/response 是与场所间的 JSON 帧：同步问答，按 id 配对。
type request struct {
	ID     int             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type response struct {
	ID     int             `json:"id"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

type wireInstrument struct {
	InstrumentID string  `json:"instrument_id"`
	Kind         string  `json:"kind"`
	InterestRate float64 `json:"interest_rate,omitempty"`
	Expiry       string  `json:"expiry,omitempty"` // RFC3339
}

func (w wireInstrument) toDomain() (venue.Instrument, error) {
	ins := venue.Instrument{
		ID:           w.InstrumentID,
		Kind:         venue.InstrumentKind(w.Kind),
		InterestRate: w.InterestRate,
	}
	if w.Expiry != "" {
		t, err := time.Parse(time.RFC3339, w.Expiry)
		if err != nil {
			return venue.Instrument{}, err
		}
		ins.Expiry = t
	}
	return ins, nil
}

type wireLevel struct {
	Price  float64 `json:"price"`
	Volume int     `json:"volume"`
}

type wireBook struct {
	InstrumentID string      `json:"instrument_id"`
	Bids         []wireLevel `json:"bids"`
	Asks         []wireLevel `json:"asks"`
}

func (w *wireBook) toDomain() *venue.PriceBook {
	if w == nil {
		return nil
	}
	book := &venue.PriceBook{InstrumentID: w.InstrumentID}
	for _, l := range w.Bids {
		book.Bids = append(book.Bids, venue.PriceLevel{Price: l.Price, Volume: l.Volume})
	}
	for _, l := range w.Asks {
		book.Asks = append(book.Asks, venue.PriceLevel{Price: l.Price, Volume: l.Volume})
	}
	return book
}

type wireOrder struct {
	InstrumentID string  `json:"instrument_id"`
	Price        float64 `json:"price"`
	Volume       int     `json:"volume"`
	Side         string  `json:"side"`
	OrderType    string  `json:"order_type"`
}
