package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"futures-arb-go/config"
	"futures-arb-go/gateway"
	"futures-arb-go/hedge"
	"futures-arb-go/venue"
)

// 独立的清仓工具：对每个非零持仓用极端价 IOC 打平，
// 前后各报告一次持仓与 PnL。
func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	client, err := gateway.Dial(cfg.Venue.Endpoint, cfg.Venue.APIKey, gateway.NopLimiter{})
	if err != nil {
		log.Fatalf("连接场所失败: %v", err)
	}
	defer client.Close()

	report(client, "before")

	flattener := hedge.NewFlattener(client)
	n, err := flattener.Flatten()
	if err != nil {
		log.Fatalf("平仓失败: %v", err)
	}
	fmt.Printf("flatten orders sent: %d\n", n)

	report(client, "after")
}

func report(v venue.Venue, label string) {
	positions, err := v.GetPositions()
	if err != nil {
		log.Printf("读取持仓失败: %v", err)
		return
	}
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if positions[id] != 0 {
			fmt.Printf("[%s] %s: %d\n", label, id, positions[id])
		}
	}
	if pnl, err := v.GetPnL(); err == nil {
		fmt.Printf("[%s] pnl: %.2f\n", label, pnl)
	}
}
