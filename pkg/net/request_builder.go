package net

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BuildCoupangRequest 通用 Coupang 请求构建器
// 适用方：CoupangAdapter 的订单拉取、咨询拉取、运单/回复推送
// 职责：统一封装 CEA HMAC 签名头 (Authorization) 和标准头 (Content-Type)
// 签名串 = signed-date + method + path + query，密钥为 SecretKey
func BuildCoupangRequest(ctx context.Context, method, baseURL, path, query string, body io.Reader, accessKey, secretKey string) (*http.Request, error) {
	url := baseURL + path
	if query != "" {
		url += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Authorization", CoupangSignature(method, path, query, accessKey, secretKey, time.Now().UTC()))

	return req, nil
}

// CoupangSignature 生成 Coupang 开放平台的 CEA 签名头
// signed-date 使用 UTC 时间，格式 yyMMdd'T'HHmmss'Z'
func CoupangSignature(method, path, query, accessKey, secretKey string, now time.Time) string {
	signedDate := now.Format("060102T150405Z")
	message := signedDate + method + path + query

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(message))
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf(
		"CEA algorithm=HmacSHA256, access-key=%s, signed-date=%s, signature=%s",
		accessKey, signedDate, signature,
	)
}

// BuildBearerRequest 构建 Bearer 鉴权请求
// 适用方：SmartStoreAdapter（token 换取后的所有业务调用）
func BuildBearerRequest(ctx context.Context, method, url string, body io.Reader, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return req, nil
}
