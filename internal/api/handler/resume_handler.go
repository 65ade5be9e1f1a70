package handler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

// ResumeHandler 简历解析请求的协调者：
// 去重检查 → 同步解析 → 归档 → 组装响应
type ResumeHandler struct {
	cfg             *config.Config
	fileStore       processor.FileStore
	dedupe          processor.DedupeIndex
	processorModule *processor.ResumeProcessor
}

// NewResumeHandler 创建一个新的简历处理器。
// fileStore和dedupe允许为nil，对应的归档/去重步骤会被跳过。
func NewResumeHandler(
	cfg *config.Config,
	fileStore processor.FileStore,
	dedupe processor.DedupeIndex,
	processorModule *processor.ResumeProcessor,
) *ResumeHandler {
	return &ResumeHandler{
		cfg:             cfg,
		fileStore:       fileStore,
		dedupe:          dedupe,
		processorModule: processorModule,
	}
}

// ResumeParseResponse 简历解析响应
type ResumeParseResponse struct {
	Success        bool                `json:"success"`
	SubmissionUUID string              `json:"submission_uuid"`
	Status         string              `json:"status"`
	Data           *types.ResumeRecord `json:"data"`
}

// HandleResumeParse 处理一次简历上传并同步返回解析结果。
// 返回的响应永远非nil且Data结构合法；error非nil时调用方应回500，
// 此时Data是带error说明的空壳记录。
// 重复上传（MD5命中）仍然解析，但跳过归档并标记DUPLICATE_FILE状态。
func (h *ResumeHandler) HandleResumeParse(ctx context.Context, fileBytes []byte, filename string) (*ResumeParseResponse, error) {
	// 1. 生成提交UUID
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return h.failureResponse("", fmt.Errorf("生成UUIDv7失败: %w", err))
	}
	submissionUUID := uuidV7.String()

	// 2. 原始文件MD5去重（原子检查+登记）。
	// 去重索引不可用时按非重复处理，解析是主契约，不因Redis故障失败。
	duplicate := false
	registeredMD5 := ""
	if h.dedupe != nil {
		sum := md5.Sum(fileBytes)
		fileMD5Hex := hex.EncodeToString(sum[:])

		duplicate, err = h.dedupe.CheckAndAddFileMD5(ctx, fileMD5Hex)
		if err != nil {
			dedupeErr := processor.NewDedupeError(submissionUUID, err.Error())
			logger.Ctx(ctx).Warn().Err(dedupeErr).Str("md5", fileMD5Hex).Msg("文件MD5去重检查失败，按非重复处理")
			duplicate = false
		} else if duplicate {
			logger.Ctx(ctx).Info().Str("md5", fileMD5Hex).Str("filename", filename).Msg("检测到重复上传的简历文件")
		} else {
			// 本次请求新登记的MD5，归档失败时需要回滚
			registeredMD5 = fileMD5Hex
		}
	}

	// 3. 提取PDF文本
	text, _, extractErr := h.processorModule.PDFExtractor.ExtractFromBytes(ctx, fileBytes, filename)
	if extractErr != nil {
		logger.Ctx(ctx).Error().Err(extractErr).Str("filename", filename).Msg("PDF文本提取失败")
		return h.failureResponse(submissionUUID, processor.NewExtractError(submissionUUID, extractErr.Error()))
	}

	// 4. 同步执行解析流水线
	record, parseErr := h.processorModule.ParseResume(ctx, text)

	// 5. 归档原始文件和预处理文本（重复上传跳过）
	if !duplicate && h.fileStore != nil {
		if _, err := h.fileStore.UploadResumeFile(ctx, submissionUUID, fileBytes); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("归档原始简历失败")
			h.rollbackMD5(ctx, registeredMD5)
		}
		if h.processorModule.Preprocessor != nil {
			processed := h.processorModule.Preprocessor.Run(text)
			if _, err := h.fileStore.UploadParsedText(ctx, submissionUUID, processed); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("归档预处理文本失败")
			}
		}
	}

	if parseErr != nil {
		record.SetError(parseErr.Error())
		return &ResumeParseResponse{
			Success:        false,
			SubmissionUUID: submissionUUID,
			Status:         h.statusFor(duplicate),
			Data:           record,
		}, parseErr
	}

	return &ResumeParseResponse{
		Success:        true,
		SubmissionUUID: submissionUUID,
		Status:         h.statusFor(duplicate),
		Data:           record,
	}, nil
}

// HandleStoredResume 取回已归档的简历并重新解析（不再归档、不做去重）
func (h *ResumeHandler) HandleStoredResume(ctx context.Context, submissionUUID string) (*ResumeParseResponse, error) {
	if h.fileStore == nil {
		return h.failureResponse(submissionUUID, fmt.Errorf("归档存储未配置"))
	}

	objectKey := fmt.Sprintf("resume/%s/original.pdf", submissionUUID)
	fileBytes, err := h.fileStore.GetResumeFile(ctx, objectKey)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("submission_uuid", submissionUUID).Msg("取回归档简历失败")
		return h.failureResponse(submissionUUID, processor.NewStoreError(submissionUUID, err.Error()))
	}

	record, parseErr := h.processorModule.ParseResumeFromBytes(ctx, fileBytes, objectKey)
	if parseErr != nil {
		record.SetError(parseErr.Error())
		return &ResumeParseResponse{
			Success:        false,
			SubmissionUUID: submissionUUID,
			Status:         constants.StatusSubmitted,
			Data:           record,
		}, parseErr
	}

	return &ResumeParseResponse{
		Success:        true,
		SubmissionUUID: submissionUUID,
		Status:         constants.StatusSubmitted,
		Data:           record,
	}, nil
}

// rollbackMD5 归档失败时撤销本次请求登记的MD5，
// 避免之后的重传被误判为重复而再次跳过归档
func (h *ResumeHandler) rollbackMD5(ctx context.Context, registeredMD5 string) {
	if registeredMD5 == "" || h.dedupe == nil {
		return
	}
	if err := h.dedupe.RemoveFileMD5(ctx, registeredMD5); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("md5", registeredMD5).Msg("回滚MD5登记失败")
	}
}

// failureResponse 构造带错误说明的空壳响应
func (h *ResumeHandler) failureResponse(submissionUUID string, err error) (*ResumeParseResponse, error) {
	record := processor.NewFieldNormalizer().Normalize(types.NewShellRecord(h.processorModule.Settings.Variant))
	record.SetError(err.Error())
	return &ResumeParseResponse{
		Success:        false,
		SubmissionUUID: submissionUUID,
		Status:         constants.StatusSubmitted,
		Data:           record,
	}, err
}

func (h *ResumeHandler) statusFor(duplicate bool) string {
	if duplicate {
		return constants.StatusDuplicateFile
	}
	return constants.StatusSubmitted
}
