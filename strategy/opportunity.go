package strategy

import "futures-arb-go/venue"

// Opportunity 一次探测的结果，逐轮重算、从不落盘。
// Side 的极性由探测函数约定：股票-期货对为期货腿的报单方向，
// 期货-期货对为 1 号腿方向（2 号腿实际报单方向相反）。
type Opportunity struct {
	Side            venue.Side
	Price           float64 // 被动腿成交价（即被吃档位的价格）
	PrimaryVolume   int     // 主腿盘口可用手数（各自原生单位）
	SecondaryVolume int     // 从腿盘口可用手数
}

// None 表示本轮无机会。
func None() Opportunity {
	return Opportunity{Side: venue.SideNone}
}

// Found 是否探测到机会。
func (o Opportunity) Found() bool { return o.Side != venue.SideNone }
