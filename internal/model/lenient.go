package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// 后端字段类型并不稳定：邮编、电话可能是数字，数量可能是字符串。
// 单个字段类型不符时取零值，不让整份订单快照解码失败。

func lenientString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	switch raw[0] {
	case '{', '[':
		return ""
	}
	// 数字、布尔按字面量保留
	return string(raw)
}

func lenientInt(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func (l *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         json.RawMessage `json:"name"`
		CartQuantity json.RawMessage `json:"cartQuantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = LineItem{Name: lenientString(raw.Name), CartQuantity: lenientInt(raw.CartQuantity)}
	return nil
}

func (s *ShippingInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    json.RawMessage `json:"name"`
		Address json.RawMessage `json:"address"`
		Phone   json.RawMessage `json:"phone"`
		ZipCode json.RawMessage `json:"zipCode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ShippingInfo{
		Name:    lenientString(raw.Name),
		Address: lenientString(raw.Address),
		Phone:   lenientString(raw.Phone),
		ZipCode: lenientString(raw.ZipCode),
	}
	return nil
}
