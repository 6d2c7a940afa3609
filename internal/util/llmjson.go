package util

import (
	"encoding/json"
	"strings"
)

// ExtractJSON 从大模型的自由文本回复中提取JSON对象。
// 先尝试整体解析；失败则剥掉 markdown 代码栅栏后扫描第一个配平的 {...} 块。
// 无法解析时返回 ok=false，由调用方降级为兜底应答。
func ExtractJSON(text string, v interface{}) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if json.Unmarshal([]byte(trimmed), v) == nil {
		return true
	}

	trimmed = stripCodeFences(trimmed)
	if candidate := firstJSONObject(trimmed); candidate != "" {
		return json.Unmarshal([]byte(candidate), v) == nil
	}

	return false
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
	} else {
		return s
	}
	if end := strings.Index(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// firstJSONObject 返回文本中第一个大括号配平的片段。
// 计数时跳过字符串字面量和转义字符，避免把 "{" 当成结构字符。
func firstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}

	return ""
}
