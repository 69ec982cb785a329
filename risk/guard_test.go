package risk

import (
	"errors"
	"testing"

	"futures-arb-go/venue"
)

type stubGuard struct {
	err error
}

func (s stubGuard) PreOrder(snapshot map[string]int, o venue.Order) error {
	return s.err
}

func TestLimitGuard(t *testing.T) {
	g := LimitGuard{Limits: Limits{Default: 100}}
	snapshot := map[string]int{"NVDA": 97}

	ok := venue.Order{InstrumentID: "NVDA", Side: venue.SideBid, Volume: 3}
	if err := g.PreOrder(snapshot, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	over := venue.Order{InstrumentID: "NVDA", Side: venue.SideBid, Volume: 5}
	if err := g.PreOrder(snapshot, over); !errors.Is(err, ErrLimitBreach) {
		t.Fatalf("expected ErrLimitBreach, got %v", err)
	}
}

func TestLimitGuardUnitFactor(t *testing.T) {
	g := LimitGuard{
		Limits: Limits{Default: 100},
		UnitFactor: func(id string) float64 {
			if id == "NVDA_202503_F" {
				return 1.05
			}
			return 1.0
		},
	}
	// 折算后 95*1.05=99.75，再买 1 即越限
	snapshot := map[string]int{"NVDA_202503_F": 95}
	o := venue.Order{InstrumentID: "NVDA_202503_F", Side: venue.SideBid, Volume: 1}
	if err := g.PreOrder(snapshot, o); !errors.Is(err, ErrLimitBreach) {
		t.Fatalf("expected scaled breach, got %v", err)
	}
}

func TestMultiGuard(t *testing.T) {
	g := MultiGuard{
		Guards: []Guard{
			stubGuard{},                    // pass
			stubGuard{err: ErrLimitBreach}, // fail
			nil,                            // skipped
		},
	}
	o := venue.Order{InstrumentID: "NVDA", Side: venue.SideBid, Volume: 1}
	if err := g.PreOrder(nil, o); !errors.Is(err, ErrLimitBreach) {
		t.Fatalf("expected ErrLimitBreach, got %v", err)
	}
}
