package hedge

import "futures-arb-go/venue"

// ProfitUnavailable 哨兵值：所需现货盘口缺失，无法估算，
// 调用方应放弃本次双腿交易。
const ProfitUnavailable = -1.0

// PreHedgeProfit 在提交双期货腿之前估算净现金收益。volF1/volF2 为
// 带符号手数（买正卖负），price1/price2 为对应腿的成交价；两腿现金流
// 为 -price*vol，残余的现货 delta 假定按当前最优价平掉：delta>0 按
// 现货买一卖出，delta<0 按现货卖一买回。正值才值得执行。
func PreHedgeProfit(v venue.Venue, stockID string, volF1, volF2 float64, d1, d2, price1, price2 float64) float64 {
	delta := roundLots(volF1*d1 + volF2*d2)
	if delta == 0 {
		return -(price1*volF1 + price2*volF2)
	}

	book, err := v.GetLastPriceBook(stockID)
	if err != nil {
		return ProfitUnavailable
	}

	var level venue.PriceLevel
	var ok bool
	if delta < 0 {
		// 需要买现货补敞口
		level, ok = book.BestAsk()
	} else {
		// 需要卖现货
		level, ok = book.BestBid()
	}
	if !ok {
		return ProfitUnavailable
	}
	return -(price1*volF1 + price2*volF2) + float64(delta)*level.Price
}
