package hedge

import (
	"testing"

	"futures-arb-go/risk"
	"futures-arb-go/sim"
	"futures-arb-go/venue"
)

func newGroupVenue() *sim.Venue {
	v := sim.NewVenue()
	for _, id := range []string{"NVDA", "NVDA_202503_F", "NVDA_202603_F"} {
		kind := venue.KindFuture
		if id == "NVDA" {
			kind = venue.KindSpot
		}
		v.AddInstrument(venue.Instrument{ID: id, Kind: kind})
	}
	v.SetBook("NVDA", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 99.8, Volume: 100}},
		Asks: []venue.PriceLevel{{Price: 100.2, Volume: 100}},
	})
	v.SetBook("NVDA_202503_F", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 101.0, Volume: 100}},
		Asks: []venue.PriceLevel{{Price: 101.5, Volume: 100}},
	})
	v.SetBook("NVDA_202603_F", &venue.PriceBook{
		Bids: []venue.PriceLevel{{Price: 105.5, Volume: 100}},
		Asks: []venue.PriceLevel{{Price: 106.0, Volume: 100}},
	})
	return v
}

func groupLegs() []Leg {
	return []Leg{
		{InstrumentID: "NVDA", Factor: 1.0},
		{InstrumentID: "NVDA_202503_F", Factor: 1.0},
		{InstrumentID: "NVDA_202603_F", Factor: 1.0},
	}
}

func TestNeutralizeEliminatesExposure(t *testing.T) {
	v := newGroupVenue()
	v.SetPosition("NVDA", 4)

	n := NewNeutralizer(v, risk.Limits{Default: 100})
	res, err := n.Neutralize(groupLegs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Eliminated {
		t.Fatalf("expected exposure eliminated, residual %d", res.Residual)
	}
	if res.TradedVolume != 4 || res.Iterations != 1 {
		t.Fatalf("expected one 4-lot order, got %+v", res)
	}

	// delta>0 卖公共单位下最贵的腿：远月期货
	orders := v.Inserted()
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].InstrumentID != "NVDA_202603_F" || orders[0].Side != venue.SideAsk || orders[0].Price != 105.5 {
		t.Fatalf("should sell the dearest leg at its bid, got %+v", orders[0])
	}
}

func TestNeutralizeBuysCheapestLeg(t *testing.T) {
	v := newGroupVenue()
	v.SetPosition("NVDA_202503_F", -3)

	n := NewNeutralizer(v, risk.Limits{Default: 100})
	res, err := n.Neutralize(groupLegs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Eliminated {
		t.Fatalf("expected elimination, got %+v", res)
	}
	o := v.Inserted()[0]
	if o.InstrumentID != "NVDA" || o.Side != venue.SideBid || o.Price != 100.2 {
		t.Fatalf("should buy the cheapest leg at its ask, got %+v", o)
	}
}

func TestNeutralizeWithinToleranceIsNoop(t *testing.T) {
	v := newGroupVenue()
	v.SetPosition("NVDA", 1)

	n := NewNeutralizer(v, risk.Limits{Default: 100})
	res, err := n.Neutralize(groupLegs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Eliminated || res.Iterations != 0 || res.Residual != 1 {
		t.Fatalf("one lot inside tolerance should be left alone, got %+v", res)
	}
	if len(v.Inserted()) != 0 {
		t.Fatalf("no order expected inside tolerance")
	}
}

func TestNeutralizeFractionalExposureRoundsAway(t *testing.T) {
	v := newGroupVenue()
	v.SetPosition("NVDA_202503_F", 1)

	n := NewNeutralizer(v, risk.Limits{Default: 100})
	n.Tolerance = 0
	// 0.4 手敞口取整为 0
	legs := []Leg{{InstrumentID: "NVDA_202503_F", Factor: 0.4}}
	res, err := n.Neutralize(legs)
	if err != nil || !res.Eliminated || res.Residual != 0 {
		t.Fatalf("sub-lot exposure rounds to zero, got %+v err=%v", res, err)
	}
}

func TestNeutralizeStopsWhenBooksDry(t *testing.T) {
	v := newGroupVenue()
	v.SetPosition("NVDA", 5)
	// 所有买档都被抽空，卖无从谈起
	for _, id := range []string{"NVDA", "NVDA_202503_F", "NVDA_202603_F"} {
		v.SetBook(id, &venue.PriceBook{Asks: []venue.PriceLevel{{Price: 200, Volume: 10}}})
	}

	n := NewNeutralizer(v, risk.Limits{Default: 100})
	res, err := n.Neutralize(groupLegs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Eliminated || res.Residual != 5 || res.Iterations != 0 {
		t.Fatalf("dry books should stop with residual, got %+v", res)
	}
}

// stuckVenue 报单永远成功但仓位不变，用来逼出迭代上限。
type stuckVenue struct {
	*sim.Venue
	orders int
}

func (s *stuckVenue) InsertOrder(o venue.Order) error {
	s.orders++
	return nil
}

func TestNeutralizeBoundedIterations(t *testing.T) {
	base := newGroupVenue()
	base.SetPosition("NVDA", 10)
	v := &stuckVenue{Venue: base}

	n := NewNeutralizer(v, risk.Limits{Default: 100})
	n.MaxIterations = 3
	res, err := n.Neutralize(groupLegs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Eliminated {
		t.Fatalf("stuck exposure cannot be eliminated")
	}
	if res.Iterations != 3 || v.orders != 3 {
		t.Fatalf("loop must stop at MaxIterations, got %+v orders=%d", res, v.orders)
	}
	if res.Residual != 10 {
		t.Fatalf("residual should report remaining delta, got %d", res.Residual)
	}
}

func TestNeutralizeFactorScalesVolume(t *testing.T) {
	v := newGroupVenue()
	v.SetPosition("NVDA", -6)

	n := NewNeutralizer(v, risk.Limits{Default: 100})
	n.Tolerance = 0
	// 唯一可用腿 factor=0.5：一次买 floor(6/0.5)=12 手
	legs := []Leg{
		{InstrumentID: "NVDA", Factor: 1.0},
		{InstrumentID: "NVDA_202503_F", Factor: 0.5},
	}
	v.SetBook("NVDA", &venue.PriceBook{}) // 现货无盘口
	res, err := n.Neutralize(legs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := v.Inserted()[0]
	if o.InstrumentID != "NVDA_202503_F" || o.Volume != 12 || o.Side != venue.SideBid {
		t.Fatalf("expected 12-lot buy on the future, got %+v", o)
	}
	if !res.Eliminated {
		t.Fatalf("exposure should be eliminated, got %+v", res)
	}
}
