package sim

import (
	"errors"
	"math"
	"testing"

	"futures-arb-go/venue"
)

func newTestVenue() *Venue {
	v := NewVenue()
	v.AddInstrument(venue.Instrument{ID: "NVDA", Kind: venue.KindSpot})
	v.SetBook("NVDA", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 99.0, Volume: 10}, {Price: 98.0, Volume: 10}},
		Asks: []venue.PriceLevel{{Price: 101.0, Volume: 10}, {Price: 102.0, Volume: 10}},
	})
	return v
}

func TestInsertOrderFillsAcrossLevels(t *testing.T) {
	v := newTestVenue()
	err := v.InsertOrder(venue.Order{
		InstrumentID: "NVDA", Side: venue.SideBid, Price: 102.0, Volume: 15, Type: venue.OrderTypeIOC,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	positions, _ := v.GetPositions()
	if positions["NVDA"] != 15 {
		t.Fatalf("expected fill 15, got %d", positions["NVDA"])
	}
	book, _ := v.GetLastPriceBook("NVDA")
	ask, ok := book.BestAsk()
	if !ok || ask.Price != 102.0 || ask.Volume != 5 {
		t.Fatalf("expected 5 lots left at 102, got %+v ok=%v", ask, ok)
	}
}

func TestInsertOrderIOCRemainderCancelled(t *testing.T) {
	v := newTestVenue()
	// 只打得到 101 档的 10 手，其余作废
	err := v.InsertOrder(venue.Order{
		InstrumentID: "NVDA", Side: venue.SideBid, Price: 101.0, Volume: 25, Type: venue.OrderTypeIOC,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	positions, _ := v.GetPositions()
	if positions["NVDA"] != 10 {
		t.Fatalf("expected partial fill 10, got %d", positions["NVDA"])
	}
}

func TestInsertOrderSellUpdatesCash(t *testing.T) {
	v := newTestVenue()
	v.SetPosition("NVDA", 5)
	err := v.InsertOrder(venue.Order{
		InstrumentID: "NVDA", Side: venue.SideAsk, Price: 99.0, Volume: 5, Type: venue.OrderTypeIOC,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	positions, _ := v.GetPositions()
	if positions["NVDA"] != 0 {
		t.Fatalf("expected flat, got %d", positions["NVDA"])
	}
	// 仓位平了：PnL 即卖出现金 5*99
	pnl, _ := v.GetPnL()
	if math.Abs(pnl-495.0) > 1e-9 {
		t.Fatalf("expected pnl 495, got %f", pnl)
	}
}

func TestInsertOrderValidation(t *testing.T) {
	v := newTestVenue()
	if err := v.InsertOrder(venue.Order{InstrumentID: "TSLA", Side: venue.SideBid, Price: 1, Volume: 1}); err == nil {
		t.Fatalf("unknown instrument must fail")
	}
	if err := v.InsertOrder(venue.Order{InstrumentID: "NVDA", Side: venue.SideNone, Price: 1, Volume: 1}); err == nil {
		t.Fatalf("invalid side must fail")
	}
	if err := v.InsertOrder(venue.Order{InstrumentID: "NVDA", Side: venue.SideBid, Price: 1, Volume: 0}); err == nil {
		t.Fatalf("zero volume must fail")
	}
}

func TestFailInsertInjection(t *testing.T) {
	v := newTestVenue()
	boom := errors.New("venue down")
	v.FailInsert = boom
	err := v.InsertOrder(venue.Order{InstrumentID: "NVDA", Side: venue.SideBid, Price: 101, Volume: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestGetLastPriceBookMissing(t *testing.T) {
	v := newTestVenue()
	book, err := v.GetLastPriceBook("TSLA")
	if err != nil {
		t.Fatalf("missing book is not an error: %v", err)
	}
	if book != nil {
		t.Fatalf("expected nil book, got %+v", book)
	}
}
