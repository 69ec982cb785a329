package venue

import (
	"reflect"
	"testing"
)

func sampleInstruments() map[string]Instrument {
	return map[string]Instrument{
		"NVDA":          {ID: "NVDA", Kind: KindSpot},
		"SAN":           {ID: "SAN", Kind: KindSpot},
		"NVDA_202503_F": {ID: "NVDA_202503_F", Kind: KindFuture},
		"NVDA_202603_F": {ID: "NVDA_202603_F", Kind: KindFuture},
		"SAN_202503_F":  {ID: "SAN_202503_F", Kind: KindFuture},
		"NVDA_OPT":      {ID: "NVDA_OPT"}, // 非期货后缀，不参与
	}
}

func TestStocks(t *testing.T) {
	got := Stocks(sampleInstruments())
	want := []string{"NVDA", "SAN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestFuturesOf(t *testing.T) {
	got := FuturesOf(sampleInstruments(), "NVDA")
	want := []string{"NVDA_202503_F", "NVDA_202603_F"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	if fs := FuturesOf(sampleInstruments(), "TSLA"); len(fs) != 0 {
		t.Fatalf("unknown stock should have no futures, got %v", fs)
	}
}
