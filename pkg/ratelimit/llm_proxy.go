package ratelimit

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// RateLimitedChatModel 对补全网关的调用进行限流的代理
type RateLimitedChatModel struct {
	original    model.ChatModel
	rateLimiter *TokenBucket
}

// NewRateLimitedChatModel 创建一个新的限流补全代理。
// 容量设为QPM的一半，允许一定的突发流量。
func NewRateLimitedChatModel(original model.ChatModel, qpm int) *RateLimitedChatModel {
	return &RateLimitedChatModel{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2),
	}
}

// WithRetryPolicy 设置重试策略
func (rl *RateLimitedChatModel) WithRetryPolicy(waitTime time.Duration, maxRetries int) *RateLimitedChatModel {
	rl.rateLimiter.WithRetryPolicy(waitTime, maxRetries)
	return rl
}

// Generate 代理Generate方法，增加限流和重试逻辑
func (rl *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	var response *schema.Message
	var err error

	err = rl.rateLimiter.RetryWithBackoff(ctx, func() error {
		var genErr error
		response, genErr = rl.original.Generate(ctx, messages, options...)
		return genErr
	})

	return response, err
}

// Stream 代理Stream方法，增加限流和重试逻辑
func (rl *RateLimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var stream *schema.StreamReader[*schema.Message]
	var err error

	err = rl.rateLimiter.RetryWithBackoff(ctx, func() error {
		var streamErr error
		stream, streamErr = rl.original.Stream(ctx, messages, options...)
		return streamErr
	})

	return stream, err
}

// BindTools 代理BindTools方法
func (rl *RateLimitedChatModel) BindTools(tools []*schema.ToolInfo) error {
	return rl.original.BindTools(tools)
}

var _ model.ChatModel = (*RateLimitedChatModel)(nil)

// NewChatModelWithRateLimit 从配置创建带限流的补全网关
func NewChatModelWithRateLimit(original model.ChatModel, qpm int, maxRetries int, retryWaitTime time.Duration) model.ChatModel {
	if qpm <= 0 {
		qpm = 30 // 默认QPM
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryWaitTime <= 0 {
		retryWaitTime = time.Second
	}

	limited := NewRateLimitedChatModel(original, qpm)
	limited.WithRetryPolicy(retryWaitTime, maxRetries)
	return limited
}
