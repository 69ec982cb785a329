package engine

import "futures-arb-go/venue"

// AutoPairs 按命名约定自动构建组合：每只现货与其最后一只期货
// 组成股票-期货对；有两只以上期货的现货再补一条期货-期货对
// （最后两只，带三腿组中和）。
func AutoPairs(instruments map[string]venue.Instrument) []Pair {
	var pairs []Pair
	for _, stock := range venue.Stocks(instruments) {
		futures := venue.FuturesOf(instruments, stock)
		if len(futures) == 0 {
			continue
		}
		pairs = append(pairs, Pair{
			Kind:   PairStockFuture,
			Stock:  stock,
			Future: futures[len(futures)-1],
		})
		if len(futures) >= 2 {
			pairs = append(pairs, Pair{
				Kind:            PairFutureFuture,
				Stock:           stock,
				Future:          futures[len(futures)-1],
				Future2:         futures[len(futures)-2],
				GroupNeutralize: true,
			})
		}
	}
	return pairs
}
