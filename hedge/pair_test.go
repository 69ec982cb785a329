package hedge

import (
	"testing"

	"futures-arb-go/risk"
	"futures-arb-go/sim"
	"futures-arb-go/venue"
)

func newPairVenue() *sim.Venue {
	v := sim.NewVenue()
	v.AddInstrument(venue.Instrument{ID: "SAN", Kind: venue.KindSpot})
	v.AddInstrument(venue.Instrument{ID: "SAN_202503_F", Kind: venue.KindFuture})
	v.SetBook("SAN", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 99.8, Volume: 50}},
		Asks: []venue.PriceLevel{{Price: 100.2, Volume: 50}},
	})
	return v
}

func TestHedgeSellsPositiveDelta(t *testing.T) {
	v := newPairVenue()
	v.SetPosition("SAN", 3)

	h := NewPairHedger(v, risk.Limits{Default: 100})
	vol, side, err := h.Hedge("SAN", "SAN_202503_F", 1.0, venue.SideNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vol != 3 || side != venue.SideAsk {
		t.Fatalf("expected sell 3, got vol=%d side=%s", vol, side)
	}

	orders := v.Inserted()
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	o := orders[0]
	if o.InstrumentID != "SAN" || o.Price != 99.8 || o.Type != venue.OrderTypeIOC {
		t.Fatalf("unexpected order: %+v", o)
	}
	positions, _ := v.GetPositions()
	if positions["SAN"] != 0 {
		t.Fatalf("position should be flat, got %d", positions["SAN"])
	}
}

func TestHedgeBuysNegativeDelta(t *testing.T) {
	v := newPairVenue()
	v.SetPosition("SAN", -2)
	v.SetPosition("SAN_202503_F", -2)

	h := NewPairHedger(v, risk.Limits{Default: 100})
	vol, side, err := h.Hedge("SAN", "SAN_202503_F", 1.0, venue.SideNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vol != 4 || side != venue.SideBid {
		t.Fatalf("expected buy 4, got vol=%d side=%s", vol, side)
	}
	if o := v.Inserted()[0]; o.Price != 100.2 {
		t.Fatalf("buy should lift the ask, got %+v", o)
	}
}

func TestHedgeCountsJustSentOrder(t *testing.T) {
	v := newPairVenue()
	// 仓位快照尚未包含刚发出的买单：delta 需 +1
	h := NewPairHedger(v, risk.Limits{Default: 100})
	vol, side, err := h.Hedge("SAN", "SAN_202503_F", 1.0, venue.SideBid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vol != 1 || side != venue.SideAsk {
		t.Fatalf("expected sell 1 for pending buy, got vol=%d side=%s", vol, side)
	}
}

func TestHedgeFlatDoesNothing(t *testing.T) {
	v := newPairVenue()
	h := NewPairHedger(v, risk.Limits{Default: 100})
	vol, side, err := h.Hedge("SAN", "SAN_202503_F", 1.0, venue.SideNone)
	if err != nil || vol != 0 || side != venue.SideNone {
		t.Fatalf("flat book should be a no-op, got vol=%d side=%s err=%v", vol, side, err)
	}
	if len(v.Inserted()) != 0 {
		t.Fatalf("no order expected")
	}
}

func TestHedgeSkipsOnMissingBookSide(t *testing.T) {
	v := newPairVenue()
	v.SetPosition("SAN", 3)
	v.SetBook("SAN", &venue.PriceBook{Asks: []venue.PriceLevel{{Price: 100.2, Volume: 50}}})

	h := NewPairHedger(v, risk.Limits{Default: 100})
	vol, side, err := h.Hedge("SAN", "SAN_202503_F", 1.0, venue.SideNone)
	if err != nil || vol != 0 || side != venue.SideNone {
		t.Fatalf("missing bid side should skip quietly, got vol=%d side=%s err=%v", vol, side, err)
	}
	if len(v.Inserted()) != 0 {
		t.Fatalf("no order expected when book side missing")
	}
}

func TestHedgeRespectsLimit(t *testing.T) {
	v := newPairVenue()
	// 主腿已接近上限，需买 5 手但仓位 98 只能再买 2
	v.SetPosition("SAN", 98)
	v.SetPosition("SAN_202503_F", -103)

	h := NewPairHedger(v, risk.Limits{Default: 100})
	vol, side, err := h.Hedge("SAN", "SAN_202503_F", 1.0, venue.SideNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vol != 0 || side != venue.SideNone {
		t.Fatalf("breaching hedge must be withheld, got vol=%d side=%s", vol, side)
	}
	if len(v.Inserted()) != 0 {
		t.Fatalf("no order expected on limit breach")
	}
}

func TestPendingAdjustment(t *testing.T) {
	if pendingAdjustment(venue.SideBid) != 1 {
		t.Fatalf("pending buy adds one lot")
	}
	if pendingAdjustment(venue.SideAsk) != -1 {
		t.Fatalf("pending sell removes one lot")
	}
	if pendingAdjustment(venue.SideNone) != 0 {
		t.Fatalf("no pending order means no adjustment")
	}
}
