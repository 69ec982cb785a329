package venue

import (
	"sort"
	"strings"
)

// Stocks 返回所有现货代码（命名约定：代码不含下划线）。
func Stocks(instruments map[string]Instrument) []string {
	var res []string
	for id := range instruments {
		if !strings.Contains(id, "_") {
			res = append(res, id)
		}
	}
	sort.Strings(res)
	return res
}

// FuturesOf 返回某现货的全部期货代码（<STOCK>_..._F），按代码排序。
func FuturesOf(instruments map[string]Instrument, stockID string) []string {
	var res []string
	for id := range instruments {
		parts := strings.Split(id, "_")
		if len(parts) < 2 {
			continue
		}
		if parts[0] == stockID && parts[len(parts)-1] == "F" {
			res = append(res, id)
		}
	}
	sort.Strings(res)
	return res
}
