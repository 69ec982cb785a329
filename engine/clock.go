package engine

import "time"

// Clock 抽象时间与休眠，便于测试中模拟时间推进而不真正等待。
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// WallClock 默认真实时钟。
var WallClock Clock = realClock{}
