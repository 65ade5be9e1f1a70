package handler

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

// mockPDFExtractor 模拟PDF提取器
type mockPDFExtractor struct {
	text string
	err  error
}

func (m *mockPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return m.text, nil, m.err
}

func (m *mockPDFExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	return m.text, nil, m.err
}

func (m *mockPDFExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return m.text, nil, m.err
}

// mockFieldExtractor 模拟LLM字段抽取器
type mockFieldExtractor struct {
	response string
	err      error
}

func (m *mockFieldExtractor) Extract(ctx context.Context, resumeText string) (string, error) {
	return m.response, m.err
}

// mockFileStore 模拟简历归档存储
type mockFileStore struct {
	uploads       int
	parsedUploads int
	uploadErr     error
	stored        []byte
	getErr        error
}

func (m *mockFileStore) UploadResumeFile(ctx context.Context, submissionUUID string, data []byte) (string, error) {
	m.uploads++
	return "resume/" + submissionUUID + "/original.pdf", m.uploadErr
}

func (m *mockFileStore) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	return m.stored, m.getErr
}

func (m *mockFileStore) UploadParsedText(ctx context.Context, submissionUUID string, text string) (string, error) {
	m.parsedUploads++
	return "resume/" + submissionUUID + "/parsed_text.txt", nil
}

// mockDedupe 模拟MD5去重索引
type mockDedupe struct {
	duplicate bool
	checkErr  error
	removed   []string
}

func (m *mockDedupe) CheckAndAddFileMD5(ctx context.Context, md5Hex string) (bool, error) {
	return m.duplicate, m.checkErr
}

func (m *mockDedupe) RemoveFileMD5(ctx context.Context, md5Hex string) error {
	m.removed = append(m.removed, md5Hex)
	return nil
}

func newTestHandler(pdf processor.PDFExtractor, field processor.FieldExtractor, store processor.FileStore, dedupe processor.DedupeIndex) *ResumeHandler {
	rp := processor.NewResumeProcessor(
		&processor.Components{
			PDFExtractor:   pdf,
			FieldExtractor: field,
		},
		&processor.Settings{Variant: types.SchemaProfile},
	)
	return NewResumeHandler(config.DefaultConfig(), store, dedupe, rp)
}

func TestHandleResumeParseSuccess(t *testing.T) {
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: `{"firstname":"Ada","city":"London"}`},
		nil, nil,
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("%PDF-1.4"), "ada.pdf")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SubmissionUUID)
	assert.Equal(t, constants.StatusSubmitted, resp.Status)
	require.NotNil(t, resp.Data.Profile)
	assert.Equal(t, "Ada", resp.Data.Profile.FirstName)
	assert.Equal(t, "London", resp.Data.Profile.City)
	assert.Equal(t, "-", resp.Data.Profile.Country)
}

func TestHandleResumeParseArchivesUpload(t *testing.T) {
	store := &mockFileStore{}
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: "{}"},
		store, &mockDedupe{},
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("%PDF-1.4"), "ada.pdf")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, store.uploads)
}

func TestHandleResumeParseDuplicateSkipsArchive(t *testing.T) {
	store := &mockFileStore{}
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: `{"firstname":"Ada"}`},
		store, &mockDedupe{duplicate: true},
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("%PDF-1.4"), "ada.pdf")
	require.NoError(t, err)

	// 重复上传依然完整解析，但跳过归档并标记状态
	assert.True(t, resp.Success)
	assert.Equal(t, constants.StatusDuplicateFile, resp.Status)
	assert.Equal(t, "Ada", resp.Data.Profile.FirstName)
	assert.Equal(t, 0, store.uploads)
}

func TestHandleResumeParseDedupeErrorTreatedAsNew(t *testing.T) {
	store := &mockFileStore{}
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: "{}"},
		store, &mockDedupe{checkErr: errors.New("redis down")},
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("%PDF-1.4"), "ada.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusSubmitted, resp.Status)
	assert.Equal(t, 1, store.uploads)
}

func TestHandleResumeParseArchiveFailureRollsBackMD5(t *testing.T) {
	store := &mockFileStore{uploadErr: errors.New("bucket unavailable")}
	dedupe := &mockDedupe{}
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: "{}"},
		store, dedupe,
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("%PDF-1.4"), "ada.pdf")

	// 归档失败只告警，解析契约不受影响；但本次登记的MD5必须回滚，
	// 否则之后的重传会被误判为重复而永远归档不上
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, dedupe.removed, 1)
}

func TestHandleResumeParseExtractionFailure(t *testing.T) {
	h := newTestHandler(
		&mockPDFExtractor{err: errors.New("corrupt pdf")},
		&mockFieldExtractor{response: "{}"},
		nil, nil,
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("garbage"), "bad.pdf")
	require.Error(t, err)
	require.NotNil(t, resp)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Data.Profile)
	// 失败响应携带归一化空壳和错误说明
	assert.Equal(t, "-", resp.Data.Profile.City)
	assert.NotEmpty(t, resp.Data.Profile.Error)
}

func TestHandleResumeParseCompletionFailure(t *testing.T) {
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{err: errors.New("context deadline exceeded")},
		nil, nil,
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("%PDF-1.4"), "ada.pdf")
	require.Error(t, err)
	require.NotNil(t, resp)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Data.Profile)
	assert.Equal(t, "-", resp.Data.Profile.City)
	assert.NotNil(t, resp.Data.Profile.Jobs)
	assert.NotEmpty(t, resp.Data.Profile.Error)
}

func TestHandleResumeParseDecodeFailureStill200(t *testing.T) {
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: "not json at all"},
		nil, nil,
	)

	resp, err := h.HandleResumeParse(context.Background(), []byte("%PDF-1.4"), "ada.pdf")
	// 解码失败返回空壳但不算处理错误
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "", resp.Data.Profile.FirstName)
	assert.Empty(t, resp.Data.Profile.Error)
}

func TestHandleStoredResume(t *testing.T) {
	store := &mockFileStore{stored: []byte("%PDF-1.4")}
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: `{"firstname":"Ada"}`},
		store, nil,
	)

	resp, err := h.HandleStoredResume(context.Background(), "0190a000-0000-7000-8000-000000000000")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Ada", resp.Data.Profile.FirstName)
}

func TestHandleStoredResumeWithoutStorage(t *testing.T) {
	h := newTestHandler(
		&mockPDFExtractor{text: "resume text"},
		&mockFieldExtractor{response: "{}"},
		nil, nil,
	)

	resp, err := h.HandleStoredResume(context.Background(), "0190a000-0000-7000-8000-000000000000")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Data.Profile.Error)
}
