package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"
)

// systemPrompt 固定的系统提示，约束模型只输出JSON
const systemPrompt = "You are a fast, accurate resume parser. Return only valid JSON."

// basicInfoPromptSkeleton "basic_info" 模式的提取提示
const basicInfoPromptSkeleton = `Extract resume data as JSON:
{
  "basic_info": {
    "first_name": "", "last_name": "", "full_name": "", "email": "",
    "phone_number": "", "location": "", "portfolio_website_url": "",
    "linkedin_url": "", "github_main_page_url": "", "university": "",
    "education_level": "", "graduation_year": "", "graduation_month": "",
    "majors": [], "GPA": ""
  },
  "work_experience": [{"job_title": "", "company": "", "location": "", "duration": "", "job_summary": ""}],
  "project_experience": [{"project_name": "", "project_description": ""}]
}

Resume text:`

// profilePromptSkeleton "profile" 模式的提取提示
const profilePromptSkeleton = `Extract resume data as JSON:
{
  "firstname": "", "lastname": "", "email": "", "contactno": "", "country": "", "city": "",
  "certificates": [{"credentialId": "", "credentialUrl": "", "description": "", "expirationDate": "", "issuedOn": "", "issuer": "", "name": ""}],
  "education": [{"city": "", "degree": "", "description": "", "endDate": "", "field": "", "school": "", "startDate": ""}],
  "extracurriculars": [{"activityName": "", "description": "", "endDate": "", "organization": "", "role": "", "startDate": ""}],
  "jobs": [{"city": "", "description": "", "employer": "", "endDate": "", "jobTitle": "", "startDate": ""}]
}

Resume text:`

// LLMFieldExtractor 把预处理后的简历文本交给补全网关，返回原始响应字符串。
// 响应的解码、归一化由下游处理。
type LLMFieldExtractor struct {
	llmModel model.ChatModel
	variant  types.SchemaVariant

	maxRetries  int
	retryDelay  time.Duration
	callTimeout time.Duration
}

// ExtractorOption LLM字段抽取器的配置选项
type ExtractorOption func(*LLMFieldExtractor)

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(n int) ExtractorOption {
	return func(e *LLMFieldExtractor) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithRetryDelay 设置首次重试的等待时间（之后指数递增）
func WithRetryDelay(d time.Duration) ExtractorOption {
	return func(e *LLMFieldExtractor) {
		if d > 0 {
			e.retryDelay = d
		}
	}
}

// WithCallTimeout 设置单次补全调用的超时时间
func WithCallTimeout(d time.Duration) ExtractorOption {
	return func(e *LLMFieldExtractor) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// NewLLMFieldExtractor 创建字段抽取器
func NewLLMFieldExtractor(llmModel model.ChatModel, variant types.SchemaVariant, options ...ExtractorOption) *LLMFieldExtractor {
	e := &LLMFieldExtractor{
		llmModel:    llmModel,
		variant:     variant,
		maxRetries:  2,
		retryDelay:  2 * time.Second,
		callTimeout: 30 * time.Second,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// PromptSkeleton 返回当前模式的提示词骨架
func (e *LLMFieldExtractor) PromptSkeleton() string {
	if e.variant == types.SchemaProfile {
		return profilePromptSkeleton
	}
	return basicInfoPromptSkeleton
}

// Extract 构建提示词并调用补全网关，返回模型的原始响应文本
func (e *LLMFieldExtractor) Extract(ctx context.Context, resumeText string) (string, error) {
	prompt := e.PromptSkeleton() + "\n" + resumeText
	return e.callLLM(ctx, systemPrompt, prompt)
}

// callLLM 调用补全网关，对瞬时错误做指数退避重试
func (e *LLMFieldExtractor) callLLM(ctx context.Context, systemContent, userContent string) (string, error) {
	messages := []*einoschema.Message{
		{Role: einoschema.System, Content: systemContent},
		{Role: einoschema.User, Content: userContent},
	}

	retryDelay := e.retryDelay
	var response *einoschema.Message
	var err error

	for retry := 0; retry <= e.maxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("上下文已取消: %w", ctx.Err())
			case <-time.After(retryDelay):
				retryDelay *= 2
				logger.Ctx(ctx).Warn().Int("retry", retry).Msg("重试补全调用")
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		response, err = e.llmModel.Generate(callCtx, messages)
		cancel()

		if err == nil {
			break
		}

		if !isRetryableError(err) || retry >= e.maxRetries {
			logger.Ctx(ctx).Error().Err(err).Int("retries", retry).Msg("补全调用最终失败")
			return "", fmt.Errorf("LLM Generate 失败: %w", err)
		}
	}

	logger.Ctx(ctx).Debug().Int("response_length", len(response.Content)).Msg("收到补全响应")
	return response.Content, nil
}

// isRetryableError 判断错误是否应该重试
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host")
}
