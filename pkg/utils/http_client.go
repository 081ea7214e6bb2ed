package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewRestyClient 创建一个配置好超时和标准 UA 的 Resty 客户端
// 它是 SmartStore token 换取等表单类请求的统一入口
// 注意：不要在这里开 resty 自带重试，重试语义由推送管线统一控制
func NewRestyClient(timeout time.Duration) *resty.Client {
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "KMarket-Go-App/1.0")

	return client
}
