package processor

import (
	"context"
	"io"
)

//
// PDF解析相关接口
//

// PDFExtractor PDF提取器接口
type PDFExtractor interface {
	// ExtractFromFile 从PDF文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractFromReader 从io.Reader提取文本和元数据
	ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)

	// ExtractFromBytes 从字节数组提取文本和元数据
	ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

//
// 字段抽取相关接口
//

// FieldExtractor 把简历文本交给补全网关，返回原始响应字符串
type FieldExtractor interface {
	Extract(ctx context.Context, resumeText string) (string, error)
}

//
// 存储相关接口
//

// FileStore 简历归档存储接口
type FileStore interface {
	// UploadResumeFile 上传原始简历文件，返回对象键
	UploadResumeFile(ctx context.Context, submissionUUID string, data []byte) (string, error)

	// GetResumeFile 按对象键取回原始简历内容
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)

	// UploadParsedText 上传预处理后的文本，返回对象键
	UploadParsedText(ctx context.Context, submissionUUID string, text string) (string, error)
}

// DedupeIndex 原始文件MD5去重索引
type DedupeIndex interface {
	// CheckAndAddFileMD5 原子地检查并登记MD5。返回true表示该MD5此前已存在。
	CheckAndAddFileMD5(ctx context.Context, md5Hex string) (bool, error)

	// RemoveFileMD5 移除已登记的MD5（归档失败时回滚用）
	RemoveFileMD5(ctx context.Context, md5Hex string) error
}
