package strategy

import "futures-arb-go/venue"

// DefaultSpreadThreshold 触发套利所需的最小绝对价差，
// 用于过滤噪声级错价。
const DefaultSpreadThreshold = 0.05

// DetectStockFuture 比较现货与其期货的盘口（期货价先经 discount
// 折回现货单位）。现货盘口必须双边齐全，否则直接返回 None；
// 期货盘口允许单边。命中时 Side 为期货腿方向：
//
//	期货卖一 < 现货买一*d - threshold ⇒ bid（买期货）
//	期货买一 > 现货卖一*d + threshold ⇒ ask（卖期货）
//
// 两个比较都是严格不等；探测只定方向与盘口量，实际可执行量
// 由 MaxHedgedVolume 进一步限制。
func DetectStockFuture(stockBook, futureBook *venue.PriceBook, discount, threshold float64) Opportunity {
	if !stockBook.TwoSided() || futureBook == nil {
		return None()
	}
	stockBid := stockBook.Bids[0]
	stockAsk := stockBook.Asks[0]

	opp := None()

	if futureAsk, ok := futureBook.BestAsk(); ok {
		if futureAsk.Price < stockBid.Price*discount-threshold {
			opp = Opportunity{
				Side:            venue.SideBid,
				Price:           futureAsk.Price,
				PrimaryVolume:   stockBid.Volume,
				SecondaryVolume: futureAsk.Volume,
			}
		}
	}
	if futureBid, ok := futureBook.BestBid(); ok {
		if futureBid.Price > stockAsk.Price*discount+threshold {
			opp = Opportunity{
				Side:            venue.SideAsk,
				Price:           futureBid.Price,
				PrimaryVolume:   stockAsk.Volume,
				SecondaryVolume: futureBid.Volume,
			}
		}
	}
	return opp
}

// DetectFutureFuture 比较同一标的两只期货的盘口，conversion = d2/d1
// 把 2 号腿价格折进 1 号腿单位。两个盘口都必须双边齐全。
// 命中时 Side 为 1 号腿方向（原用法极性）：
//
//	2号卖一 < 1号买一*c - threshold ⇒ ask（卖 1 号、买 2 号）
//	2号买一 > 1号卖一*c + threshold ⇒ bid（买 1 号、卖 2 号）
//
// 实际只对 2 号腿报单（方向取反），1 号腿敞口交给 Neutralizer。
func DetectFutureFuture(book1, book2 *venue.PriceBook, conversion, threshold float64) Opportunity {
	if !book1.TwoSided() || !book2.TwoSided() {
		return None()
	}
	bid1, ask1 := book1.Bids[0], book1.Asks[0]
	bid2, ask2 := book2.Bids[0], book2.Asks[0]

	if ask2.Price < bid1.Price*conversion-threshold {
		return Opportunity{
			Side:            venue.SideAsk,
			Price:           ask2.Price,
			PrimaryVolume:   bid1.Volume,
			SecondaryVolume: ask2.Volume,
		}
	}
	if bid2.Price > ask1.Price*conversion+threshold {
		return Opportunity{
			Side:            venue.SideBid,
			Price:           bid2.Price,
			PrimaryVolume:   ask1.Volume,
			SecondaryVolume: bid2.Volume,
		}
	}
	return None()
}
