package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrExtractTextFailed = errors.New("提取简历文本失败")
	ErrCompletionFailed  = errors.New("补全网关调用失败")
	ErrDecodeFailed      = errors.New("解码LLM响应失败")
	ErrStoreFailed       = errors.New("归档简历文件失败")
	ErrDedupeFailed      = errors.New("文件去重检查失败")
)

// ResumeParseError 包含详细错误信息的自定义错误
type ResumeParseError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ResumeParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ResumeParseError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeParseError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewExtractError(uuid, detail string) error {
	return &ResumeParseError{
		SubmissionUUID: uuid,
		Op:             "extract",
		BaseErr:        ErrExtractTextFailed,
		Detail:         detail,
	}
}

func NewCompletionError(uuid, detail string) error {
	return &ResumeParseError{
		SubmissionUUID: uuid,
		Op:             "complete",
		BaseErr:        ErrCompletionFailed,
		Detail:         detail,
	}
}

func NewDecodeError(uuid, detail string) error {
	return &ResumeParseError{
		SubmissionUUID: uuid,
		Op:             "decode",
		BaseErr:        ErrDecodeFailed,
		Detail:         detail,
	}
}

func NewStoreError(uuid, detail string) error {
	return &ResumeParseError{
		SubmissionUUID: uuid,
		Op:             "store",
		BaseErr:        ErrStoreFailed,
		Detail:         detail,
	}
}

func NewDedupeError(uuid, detail string) error {
	return &ResumeParseError{
		SubmissionUUID: uuid,
		Op:             "dedupe",
		BaseErr:        ErrDedupeFailed,
		Detail:         detail,
	}
}
