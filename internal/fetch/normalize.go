package fetch

import (
	"bytes"
	"encoding/json"
)

// 列表所在的字段名
const (
	FieldCourses         = "courses"
	FieldChapters        = "chapters"
	FieldKnowledgePoints = "knowledgePoints"
)

// Normalize 把不同形状的响应统一成数组：
//   - 直接返回数组
//   - {success, data} / {data}，data 为数组
//   - data 为对象，数组位于 fields 指定的字段下
//
// 其他形状一律返回空切片。
func Normalize(body []byte, fields ...string) []json.RawMessage {
	body = bytes.TrimSpace(body)
	if arr, ok := asArray(body); ok {
		return arr
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []json.RawMessage{}
	}
	data, ok := envelope["data"]
	if !ok {
		return []json.RawMessage{}
	}
	data = bytes.TrimSpace(data)
	if arr, ok := asArray(data); ok {
		return arr
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err != nil {
		return []json.RawMessage{}
	}
	for _, f := range fields {
		if raw, ok := inner[f]; ok {
			if arr, ok := asArray(bytes.TrimSpace(raw)); ok {
				return arr
			}
		}
	}
	return []json.RawMessage{}
}

func asArray(raw []byte) ([]json.RawMessage, bool) {
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	if arr == nil {
		arr = []json.RawMessage{}
	}
	return arr, true
}
