package strategy

import (
	"math"

	"futures-arb-go/venue"
)

// MaxHedgedVolume 计算股票-期货对上可同时满足双腿 ±limit 与盘口深度
// 的最大可执行量。futureSide 为期货腿报单方向；futureBookVolume /
// stockBookVolume 为两腿盘口可用手数（原生单位）。返回值按各自原生
// 单位取整（向下取整：宁可少做、绝不越限）。方向非法时返回 (0, 0)。
func MaxHedgedVolume(
	futureSide venue.Side,
	stockPos, futurePos int,
	futureBookVolume, stockBookVolume int,
	discount float64,
	stockLimit, futureLimit int,
) (futureVolume, stockVolume int) {
	var stockHedged float64
	switch futureSide {
	case venue.SideAsk:
		// 卖期货、买现货对冲
		maxFutureSell := float64(futureLimit + futurePos)
		maxStockBuy := float64(stockLimit - stockPos)
		stockHedged = min(
			maxStockBuy,
			maxFutureSell*discount,
			float64(futureBookVolume)*discount,
			float64(stockBookVolume),
		)
	case venue.SideBid:
		// 买期货、卖现货对冲
		maxFutureBuy := float64(futureLimit - futurePos)
		maxStockSell := float64(stockLimit + stockPos)
		stockHedged = min(
			maxStockSell,
			maxFutureBuy*discount,
			float64(futureBookVolume)*discount,
			float64(stockBookVolume),
		)
	default:
		return 0, 0
	}
	futureVolume = floorLots(stockHedged / discount)
	stockVolume = floorLots(stockHedged)
	return futureVolume, stockVolume
}

// MaxCoverVolume 期货-期货对的对应版本。primarySide 为 1 号腿方向
// （探测极性），conversion = d2/d1。2 号腿手数先取整，再由它反推
// 1 号腿手数并取整，保证两腿在 1 手取整误差内保持对应。
func MaxCoverVolume(
	primarySide venue.Side,
	pos1, pos2 int,
	bookVolume1, bookVolume2 int,
	conversion float64,
	limit1, limit2 int,
) (volume2, volume1 int) {
	var cover float64
	switch primarySide {
	case venue.SideBid:
		// 买 1 号、卖 2 号
		maxBuy1 := float64(limit1 - pos1)
		maxSell2 := float64(limit2 + pos2)
		cover = min(
			maxBuy1,
			maxSell2*conversion,
			float64(bookVolume1),
			float64(bookVolume2)*conversion,
		)
	case venue.SideAsk:
		// 卖 1 号、买 2 号
		maxSell1 := float64(limit1 + pos1)
		maxBuy2 := float64(limit2 - pos2)
		cover = min(
			maxSell1,
			maxBuy2*conversion,
			float64(bookVolume1),
			float64(bookVolume2)*conversion,
		)
	default:
		return 0, 0
	}
	volume2 = floorLots(cover / conversion)
	volume1 = floorLots(float64(volume2) * conversion)
	return volume2, volume1
}

// floorLots 向下取整到整数手，负值压为 0。
func floorLots(v float64) int {
	n := int(math.Floor(v))
	if n < 0 {
		return 0
	}
	return n
}
