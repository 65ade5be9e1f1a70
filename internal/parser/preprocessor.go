package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/constants"
)

// DefaultMaxChars 提交给LLM前的文本长度上限，约1000个token
const DefaultMaxChars = 4000

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	excessSpaces   = regexp.MustCompile(`[ \t]{2,}`)
	urlScheme      = regexp.MustCompile(`http[s]?://`)
)

// contactMarkers 联系方式行的标志，这些行无条件保留
var contactMarkers = []string{"@", "phone", "email", "linkedin", "github"}

// importantSections 需要保留的章节标题关键词
var importantSections = []string{
	"education", "experience", "work", "employment", "projects",
	"skills", "contact", "email", "phone", "address",
}

// TextPreprocessor 对提取出的简历文本做清洗和相关段落筛选，
// 减少提交给补全网关的token数量。纯函数，可重入。
type TextPreprocessor struct {
	maxChars int
}

// NewTextPreprocessor 创建预处理器。maxChars<=0时使用默认上限。
func NewTextPreprocessor(maxChars int) *TextPreprocessor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &TextPreprocessor{maxChars: maxChars}
}

// CleanExtractedText 清洗PDF提取出的原始文本：
// 压缩连续空行和空格，去掉URL协议前缀，超长时截断。
func (p *TextPreprocessor) CleanExtractedText(text string) string {
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = excessSpaces.ReplaceAllString(text, " ")
	text = urlScheme.ReplaceAllString(text, "")

	if len(text) > p.maxChars {
		text = text[:p.maxChars] + "\n" + constants.TruncationMarker
	}
	return strings.TrimSpace(text)
}

// Preprocess 逐行筛选出与字段抽取相关的内容：
//   - 含联系方式标志的行无条件保留
//   - 含章节关键词的行视为章节标题，保留并打开章节标记
//   - 章节标记打开期间的非空行保留
//   - 空行关闭章节标记（视为章节分隔）
func (p *TextPreprocessor) Preprocess(text string) string {
	lines := strings.Split(text, "\n")
	relevantLines := make([]string, 0, len(lines))
	inImportantSection := false

	for _, line := range lines {
		lineLower := strings.ToLower(strings.TrimSpace(line))

		if containsAny(lineLower, contactMarkers) {
			relevantLines = append(relevantLines, line)
			continue
		}

		if containsAny(lineLower, importantSections) {
			inImportantSection = true
			relevantLines = append(relevantLines, line)
			continue
		}

		if inImportantSection && strings.TrimSpace(line) != "" {
			relevantLines = append(relevantLines, line)
		}

		if strings.TrimSpace(line) == "" {
			inImportantSection = false
		}
	}

	return strings.Join(relevantLines, "\n")
}

// Run 完整的预处理链：先清洗再筛选
func (p *TextPreprocessor) Run(text string) string {
	return p.Preprocess(p.CleanExtractedText(text))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
