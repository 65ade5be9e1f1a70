package processor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"
)

// fencedJSONBlock 匹配 ```json ... ``` 或 ``` ... ``` 代码块
var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ResponseDecoder 把补全网关的原始响应解码为当前模式的记录。
// 模型经常把JSON包在Markdown代码块里或夹带解释文字，解码前先剥离。
type ResponseDecoder struct {
	variant types.SchemaVariant
}

// NewResponseDecoder 创建解码器
func NewResponseDecoder(variant types.SchemaVariant) *ResponseDecoder {
	return &ResponseDecoder{variant: variant}
}

// Decode 解码原始响应。失败时返回错误，不触碰panic路径；
// 空壳兜底由上层的装配器负责。
func (d *ResponseDecoder) Decode(raw string) (*types.ResumeRecord, error) {
	jsonStr := ExtractJSON(raw)
	if jsonStr == "" {
		logger.Warn().Str("raw_response", truncateForLog(raw, 500)).Msg("无法从LLM响应中提取有效的JSON")
		return nil, NewDecodeError("", "无法从LLM响应中提取有效的JSON")
	}

	record := &types.ResumeRecord{Variant: d.variant}
	switch d.variant {
	case types.SchemaBasicInfo:
		var payload types.BasicInfoRecord
		if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
			logger.Warn().Str("raw_response", truncateForLog(raw, 500)).Msg("LLM响应JSON解析失败")
			return nil, NewDecodeError("", fmt.Sprintf("解析JSON失败: %v", err))
		}
		record.BasicInfo = &payload
	case types.SchemaProfile:
		var payload types.ProfileRecord
		if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
			logger.Warn().Str("raw_response", truncateForLog(raw, 500)).Msg("LLM响应JSON解析失败")
			return nil, NewDecodeError("", fmt.Sprintf("解析JSON失败: %v", err))
		}
		record.Profile = &payload
	default:
		return nil, fmt.Errorf("未知的输出模式: %q", d.variant)
	}

	return record, nil
}

// ExtractJSON 从文本中提取JSON对象。
// 先尝试Markdown代码块，再回退到花括号配对扫描。
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	matches := fencedJSONBlock.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	// 查找匹配的}
	level := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			level++
		} else if text[i] == '}' {
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
