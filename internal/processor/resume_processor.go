package processor

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

var tracer = otel.Tracer("resume-parser/processor")

// Preprocessor 文本预处理接口
type Preprocessor interface {
	Run(text string) string
}

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	PDFExtractor   PDFExtractor   // PDF文本提取接口
	Preprocessor   Preprocessor   // 文本预处理
	FieldExtractor FieldExtractor // LLM字段抽取接口
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Variant types.SchemaVariant // 输出模式
	Debug   bool                // 是否开启调试模式
}

// ResumeProcessor 简历解析流水线的编排者：
// 预处理 → 补全 → 解码 → 归一化 → 装配
type ResumeProcessor struct {
	PDFExtractor   PDFExtractor
	Preprocessor   Preprocessor
	FieldExtractor FieldExtractor

	decoder   *ResponseDecoder
	assembler *ResultAssembler

	Settings Settings
}

// NewResumeProcessor 从组件和配置构造处理器
func NewResumeProcessor(comp *Components, set *Settings) *ResumeProcessor {
	if set == nil {
		set = &Settings{Variant: types.SchemaBasicInfo}
	}
	if set.Variant == "" {
		set.Variant = types.SchemaBasicInfo
	}

	rp := &ResumeProcessor{
		decoder:   NewResponseDecoder(set.Variant),
		assembler: NewResultAssembler(set.Variant, NewFieldNormalizer()),
		Settings:  *set,
	}
	if comp != nil {
		rp.PDFExtractor = comp.PDFExtractor
		rp.Preprocessor = comp.Preprocessor
		rp.FieldExtractor = comp.FieldExtractor
	}
	return rp
}

// ParseResume 对原始简历文本执行完整的解析流水线。
// 返回的记录永远结构合法；仅当补全网关失败时返回非nil错误，
// 此时记录是归一化后的空壳（解码链不被跳过）。
// 解码失败不算处理错误，按约定返回空壳和nil错误。
func (rp *ResumeProcessor) ParseResume(ctx context.Context, rawText string) (*types.ResumeRecord, error) {
	ctx, span := tracer.Start(ctx, "ResumeProcessor.ParseResume")
	defer span.End()

	// 预处理：清洗并筛选相关段落
	processedText := rawText
	if rp.Preprocessor != nil {
		processedText = rp.Preprocessor.Run(rawText)
	}
	span.SetAttributes(
		attribute.Int("resume.raw_length", len(rawText)),
		attribute.Int("resume.processed_length", len(processedText)),
		attribute.String("resume.schema", string(rp.Settings.Variant)),
	)

	// 补全：失败时降级为空响应，解码链继续执行
	rawResponse := ""
	var completionErr error
	if rp.FieldExtractor != nil {
		rawResponse, completionErr = rp.FieldExtractor.Extract(ctx, processedText)
		if completionErr != nil {
			tracing.RecordError(span, completionErr, tracing.ErrorTypeExternal)
			logger.Ctx(ctx).Error().Err(completionErr).Msg("补全网关调用失败，降级为空壳输出")
			rawResponse = "{}"
			completionErr = NewCompletionError("", completionErr.Error())
		}
	}

	if rp.Settings.Debug {
		logger.Ctx(ctx).Debug().Str("raw_response", truncateForLog(rawResponse, 500)).Msg("补全网关原始响应")
	}

	// 解码 → 归一化 → 装配
	decoded, decodeErr := rp.decoder.Decode(rawResponse)
	if decodeErr != nil {
		logger.Ctx(ctx).Warn().Err(decodeErr).Msg("LLM响应解码失败，输出空壳记录")
	}
	record := rp.assembler.Assemble(decoded, decodeErr)

	return record, completionErr
}

// ParseResumeFromReader 从PDF内容读取器开始的完整流程：
// 提取文本后进入 ParseResume。提取失败时同样输出空壳并返回错误。
func (rp *ResumeProcessor) ParseResumeFromReader(ctx context.Context, reader io.Reader, uri string) (*types.ResumeRecord, error) {
	ctx, span := tracer.Start(ctx, "ResumeProcessor.ParseResumeFromReader")
	defer span.End()
	span.SetAttributes(attribute.String("resume.uri", tracing.SafeAttributeValue("uri", uri, tracing.MaxResumeLength)))

	if rp.PDFExtractor == nil {
		err := NewExtractError("", "PDF提取器未配置")
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return rp.assembler.Assemble(nil, err), err
	}

	text, _, err := rp.PDFExtractor.ExtractFromReader(ctx, reader, uri)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		logger.Ctx(ctx).Error().Err(err).Str("uri", uri).Msg("PDF文本提取失败")
		return rp.assembler.Assemble(nil, err), NewExtractError("", err.Error())
	}

	return rp.ParseResume(ctx, text)
}

// ParseResumeFromBytes 从PDF字节内容开始的完整流程
func (rp *ResumeProcessor) ParseResumeFromBytes(ctx context.Context, data []byte, uri string) (*types.ResumeRecord, error) {
	ctx, span := tracer.Start(ctx, "ResumeProcessor.ParseResumeFromBytes")
	defer span.End()

	if rp.PDFExtractor == nil {
		err := NewExtractError("", "PDF提取器未配置")
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return rp.assembler.Assemble(nil, err), err
	}

	text, _, err := rp.PDFExtractor.ExtractFromBytes(ctx, data, uri)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		logger.Ctx(ctx).Error().Err(err).Str("uri", uri).Msg("PDF文本提取失败")
		return rp.assembler.Assemble(nil, err), NewExtractError("", err.Error())
	}

	return rp.ParseResume(ctx, text)
}
