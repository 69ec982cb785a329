package pricing

import (
	"math"
	"time"
)

// YearFraction 把日期映射到"年 + 年内进度"的连续标尺，
// 年内进度 = (当日序数 - 当年1月1日序数) / 当年天数。
func YearFraction(t time.Time) float64 {
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	nextStart := time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
	yearDays := nextStart.Sub(yearStart).Hours() / 24
	elapsed := float64(t.YearDay() - 1)
	return float64(t.Year()) + elapsed/yearDays
}

// DiscountFactor 返回 exp(rate * tau)，tau 为 now 到 expiry 的年分数距离。
// 到期已过时 tau 为负、因子小于 1；调用方需容忍，不视为错误。
func DiscountFactor(rate float64, expiry, now time.Time) float64 {
	tau := YearFraction(expiry) - YearFraction(now)
	return math.Exp(rate * tau)
}

// ConversionFactor 把 2 号期货的价格/手数换算进 1 号期货单位：d2/d1。
func ConversionFactor(discount1, discount2 float64) float64 {
	return discount2 / discount1
}
