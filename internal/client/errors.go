package client

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError 后端返回非 2xx 且没有可用的错误载荷
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error: %s", http.StatusText(e.Code))
}

// APIError 后端在载荷中给出的 error 字段
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request with status %d", e.Code)
	}
	return e.Message
}

// Message 把传输错误、状态码错误、业务错误归一成一句可读信息。
// 业务错误优先；没有 error 字段时、或传输失败且 fallback 非空时使用 fallback。
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if fallback != "" {
			return fallback
		}
		return apiErr.Error()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
