package constants

const (
	// 服务标识
	ServiceName = "resume-parser"

	// 提交状态
	StatusSubmitted     = "SUBMITTED_FOR_PROCESSING"
	StatusDuplicateFile = "DUPLICATE_FILE"

	// RawFileMD5SetKey Redis Set键，存储已上传原始文件的MD5
	RawFileMD5SetKey = "resumes:file_md5s"

	// EmptyFieldPlaceholder city/country等必填字段为空时的哨兵值
	EmptyFieldPlaceholder = "-"

	// TruncationMarker 预处理文本超长截断时附加的标记
	TruncationMarker = "...[TRUNCATED]"
)
