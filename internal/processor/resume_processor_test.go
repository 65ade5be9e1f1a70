package processor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/types"
)

// MockPDFExtractor 模拟PDF提取器
type MockPDFExtractor struct {
	text     string
	metadata map[string]interface{}
	err      error
}

func (m *MockPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return m.text, m.metadata, m.err
}

func (m *MockPDFExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	return m.text, m.metadata, m.err
}

func (m *MockPDFExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return m.text, m.metadata, m.err
}

// MockFieldExtractor 模拟LLM字段抽取器
type MockFieldExtractor struct {
	response string
	err      error
	lastText string
}

func (m *MockFieldExtractor) Extract(ctx context.Context, resumeText string) (string, error) {
	m.lastText = resumeText
	return m.response, m.err
}

func newTestProcessor(extractor FieldExtractor, variant types.SchemaVariant) *ResumeProcessor {
	return NewResumeProcessor(
		&Components{
			Preprocessor:   parser.NewTextPreprocessor(0),
			FieldExtractor: extractor,
		},
		&Settings{Variant: variant},
	)
}

func TestParseResumeSuccess(t *testing.T) {
	extractor := &MockFieldExtractor{
		response: "```json\n{\"firstname\":\"Ada\",\"lastname\":\"Lovelace\",\"contactno\":\"555-123-4567\",\"city\":\"London\"}\n```",
	}
	rp := newTestProcessor(extractor, types.SchemaProfile)

	rawText := "Contact\nada@example.com phone 555-123-4567\n\nWork Experience\nAnalytical Engines Ltd"
	record, err := rp.ParseResume(context.Background(), rawText)

	require.NoError(t, err)
	require.NotNil(t, record.Profile)
	assert.Equal(t, "Ada", record.Profile.FirstName)
	assert.Equal(t, "5551234567", record.Profile.ContactNo)
	assert.Equal(t, "London", record.Profile.City)
	assert.Equal(t, "-", record.Profile.Country)
	assert.NotNil(t, record.Profile.Jobs)

	// 提交给网关的文本经过了预处理
	assert.NotEmpty(t, extractor.lastText)
}

func TestParseResumeDecodeFailureYieldsShell(t *testing.T) {
	extractor := &MockFieldExtractor{response: "Sorry, I cannot parse this resume."}
	rp := newTestProcessor(extractor, types.SchemaProfile)

	record, err := rp.ParseResume(context.Background(), "some resume text")

	// 解码失败不是处理错误，返回归一化的空壳
	require.NoError(t, err)
	require.NotNil(t, record.Profile)
	assert.Equal(t, "", record.Profile.FirstName)
	assert.Equal(t, "-", record.Profile.City)
	assert.Equal(t, "-", record.Profile.Country)
	assert.NotNil(t, record.Profile.Certificates)
	assert.Empty(t, record.Profile.Error)
}

func TestParseResumeCompletionFailureDowngraded(t *testing.T) {
	extractor := &MockFieldExtractor{err: errors.New("context deadline exceeded")}
	rp := newTestProcessor(extractor, types.SchemaProfile)

	record, err := rp.ParseResume(context.Background(), "some resume text")

	// 补全失败：返回错误，但记录依然是合法的归一化空壳（解码链未被跳过）
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletionFailed))
	require.NotNil(t, record.Profile)
	assert.Equal(t, "-", record.Profile.City)
	assert.NotNil(t, record.Profile.Jobs)
}

func TestParseResumeCompletionFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	origLogger := logger.Logger
	logger.Logger = zerolog.New(&buf)
	defer func() { logger.Logger = origLogger }()

	extractor := &MockFieldExtractor{err: errors.New("context deadline exceeded")}
	rp := newTestProcessor(extractor, types.SchemaProfile)

	_, err := rp.ParseResume(context.Background(), "some resume text")
	require.Error(t, err)

	// 补全失败必须留下可诊断的错误日志，即使上下文里没有挂载日志记录器
	assert.Contains(t, buf.String(), "补全网关调用失败")
	assert.Contains(t, buf.String(), "context deadline exceeded")
}

func TestParseResumePartialDataDiscardedOnDecodeFailure(t *testing.T) {
	// 响应里有字段片段但JSON不完整，最终记录不得保留部分数据
	extractor := &MockFieldExtractor{response: `{"firstname":"Ada","lastname":`}
	rp := newTestProcessor(extractor, types.SchemaProfile)

	record, err := rp.ParseResume(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "", record.Profile.FirstName)
}

func TestParseResumeBasicInfoVariant(t *testing.T) {
	extractor := &MockFieldExtractor{
		response: `{"basic_info":{"first_name":"Grace","majors":["CS"]},"work_experience":[],"project_experience":[{"project_name":"COBOL"}]}`,
	}
	rp := newTestProcessor(extractor, types.SchemaBasicInfo)

	record, err := rp.ParseResume(context.Background(), "text")
	require.NoError(t, err)
	require.NotNil(t, record.BasicInfo)
	assert.Equal(t, "Grace", record.BasicInfo.BasicInfo.FirstName)
	require.Len(t, record.BasicInfo.ProjectExperience, 1)
	assert.NotNil(t, record.BasicInfo.WorkExperience)
}

func TestParseResumeFromBytesExtractorFailure(t *testing.T) {
	rp := NewResumeProcessor(
		&Components{
			PDFExtractor:   &MockPDFExtractor{err: errors.New("corrupt pdf")},
			FieldExtractor: &MockFieldExtractor{response: "{}"},
		},
		&Settings{Variant: types.SchemaProfile},
	)

	record, err := rp.ParseResumeFromBytes(context.Background(), []byte("%PDF-"), "broken.pdf")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractTextFailed))
	require.NotNil(t, record.Profile)
	assert.Equal(t, "-", record.Profile.City)
}

func TestAssemblerNeverReturnsNilPayload(t *testing.T) {
	a := NewResultAssembler(types.SchemaProfile, NewFieldNormalizer())

	record := a.Assemble(nil, errors.New("decode failed"))
	require.NotNil(t, record)
	require.NotNil(t, record.Profile)
	assert.Equal(t, "-", record.Profile.City)

	record = a.Assemble(nil, nil)
	require.NotNil(t, record)
	require.NotNil(t, record.Profile)
}
