package utils

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ProxyURL 构造带认证信息的 HTTP 代理地址
func ProxyURL(user, password, host string, port int) *url.URL {
	return &url.URL{
		Scheme: "http",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
}

// NewProxyHTTPClient 所有请求都经过指定代理；insecure 用于会重新签发证书的抓取代理
func NewProxyHTTPClient(proxy *url.URL, timeout time.Duration, insecure bool) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(proxy, insecure),
	}
}

func newTransport(proxy *url.URL, insecure bool) *http.Transport {
	t := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecure,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxy != nil {
		t.Proxy = http.ProxyURL(proxy)
	}
	return t
}
