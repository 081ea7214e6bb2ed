package net

import (
	"net/http"
	"time"
)

// Dispatcher 网络调度器 (通用组件)
// 各平台适配器通过它发请求，测试里可以注入假实现
type Dispatcher interface {
	// Send 发送 HTTP 请求
	// 只有传输层失败才返回 error，HTTP 状态码由调用方自行判定
	Send(req *http.Request) (*http.Response, error)
}

// httpDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type httpDispatcher struct {
	client *http.Client
}

var _ Dispatcher = (*httpDispatcher)(nil)

// NewDispatcher 创建调度器，复用同一个 Transport 做 TCP Keep-Alive
func NewDispatcher(timeout time.Duration) Dispatcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	tr := &http.Transport{
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}

	return &httpDispatcher{
		client: &http.Client{
			Transport: tr,
			Timeout:   timeout,
		},
	}
}

func (d *httpDispatcher) Send(req *http.Request) (*http.Response, error) {
	return d.client.Do(req)
}
