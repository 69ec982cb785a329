package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"futures-arb-go/venue"
)

// Client 通过 websocket 与场所同步问答，实现 venue.Venue。
// 协议是逐请求应答式的，调用在锁内串行执行，与核心的
// 单线程轮询模型一致。
type Client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	limiter RateLimiter
	nextID  int
	timeout time.Duration
}

// Dial 建立连接；apiKey 非空时放进握手头。
func Dial(endpoint, apiKey string, limiter RateLimiter) (*Client, error) {
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("dial venue: %w", err)
	}
	if limiter == nil {
		limiter = NopLimiter{}
	}
	return &Client{
		conn:    conn,
		limiter: limiter,
		timeout: 10 * time.Second,
	}, nil
}

// Close 关闭连接。
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// call 发送一帧请求并等待同 id 的应答。
func (c *Client) call(method string, params any, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := request{ID: c.nextID, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		req.Params = raw
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("%s: write: %w", method, err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("%s: read: %w", method, err)
		}
		if resp.ID != req.ID {
			// 过期应答（上一次超时遗留），丢弃继续等。
			continue
		}
		if resp.Error != "" {
			return fmt.Errorf("%s: venue error: %s", method, resp.Error)
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("%s: decode result: %w", method, err)
			}
		}
		return nil
	}
}

func (c *Client) GetInstruments() (map[string]venue.Instrument, error) {
	var wire []wireInstrument
	if err := c.call("get_instruments", nil, &wire); err != nil {
		return nil, err
	}
	res := make(map[string]venue.Instrument, len(wire))
	for _, w := range wire {
		ins, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", w.InstrumentID, err)
		}
		res[ins.ID] = ins
	}
	return res, nil
}

func (c *Client) GetPositions() (map[string]int, error) {
	var res map[string]int
	if err := c.call("get_positions", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) GetPnL() (float64, error) {
	var res float64
	if err := c.call("get_pnl", nil, &res); err != nil {
		return 0, err
	}
	return res, nil
}

func (c *Client) GetLastPriceBook(instrumentID string) (*venue.PriceBook, error) {
	var wire *wireBook
	params := map[string]string{"instrument_id": instrumentID}
	if err := c.call("get_last_price_book", params, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (c *Client) InsertOrder(o venue.Order) error {
	c.limiter.Wait()
	return c.call("insert_order", wireOrder{
		InstrumentID: o.InstrumentID,
		Price:        o.Price,
		Volume:       o.Volume,
		Side:         string(o.Side),
		OrderType:    string(o.Type),
	}, nil)
}
