package processor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

func TestNormalizeContact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"带分隔符的10位号码", "555-123-4567", "5551234567"},
		{"纯10位号码", "5551234567", "5551234567"},
		{"11位且前导0", "05551234567", "5551234567"},
		{"带括号和空格", "(555) 123 4567", "5551234567"},
		{"9位号码置空", "123456789", ""},
		{"11位但前导非0置空", "15551234567", ""},
		{"12位号码置空", "861380000111", ""},
		{"空串", "", ""},
		{"纯字母", "no-phone", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeContact(tt.input))
		})
	}
}

func TestNormalizeProfileDefaults(t *testing.T) {
	n := NewFieldNormalizer()

	record := &types.ResumeRecord{
		Variant: types.SchemaProfile,
		Profile: &types.ProfileRecord{
			FirstName: "Ada",
			ContactNo: "555-123-4567",
		},
	}

	got := n.Normalize(record)
	require.NotNil(t, got.Profile)

	assert.Equal(t, "5551234567", got.Profile.ContactNo)
	assert.Equal(t, "-", got.Profile.City)
	assert.Equal(t, "-", got.Profile.Country)

	// nil数组必须补为空数组，JSON输出[]而非null
	require.NotNil(t, got.Profile.Certificates)
	require.NotNil(t, got.Profile.Education)
	require.NotNil(t, got.Profile.Extracurriculars)
	require.NotNil(t, got.Profile.Jobs)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"certificates":[]`)
	assert.Contains(t, string(data), `"jobs":[]`)
	assert.NotContains(t, string(data), "null")
}

func TestNormalizeProfileWhitespaceCity(t *testing.T) {
	n := NewFieldNormalizer()

	record := &types.ResumeRecord{
		Variant: types.SchemaProfile,
		Profile: &types.ProfileRecord{City: "   ", Country: "\t"},
	}

	got := n.Normalize(record)
	assert.Equal(t, "-", got.Profile.City)
	assert.Equal(t, "-", got.Profile.Country)
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewFieldNormalizer()

	record := &types.ResumeRecord{
		Variant: types.SchemaProfile,
		Profile: &types.ProfileRecord{
			FirstName: "Ada",
			LastName:  "Lovelace",
			ContactNo: "555-123-4567",
			City:      "",
			Jobs:      []types.Job{{Employer: "Analytical Engines Ltd"}},
		},
	}

	once := n.Normalize(record)
	first, err := json.Marshal(once)
	require.NoError(t, err)

	twice := n.Normalize(once)
	second, err := json.Marshal(twice)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestNormalizeBasicInfoShapeRepair(t *testing.T) {
	n := NewFieldNormalizer()

	record := &types.ResumeRecord{
		Variant:   types.SchemaBasicInfo,
		BasicInfo: &types.BasicInfoRecord{},
	}

	got := n.Normalize(record)
	require.NotNil(t, got.BasicInfo)
	assert.NotNil(t, got.BasicInfo.BasicInfo.Majors)
	assert.NotNil(t, got.BasicInfo.WorkExperience)
	assert.NotNil(t, got.BasicInfo.ProjectExperience)
}

func TestNormalizeNilPayloadGetsShell(t *testing.T) {
	n := NewFieldNormalizer()

	record := &types.ResumeRecord{Variant: types.SchemaProfile}
	got := n.Normalize(record)

	require.NotNil(t, got.Profile)
	assert.Equal(t, "-", got.Profile.City)
	assert.Equal(t, "-", got.Profile.Country)
	assert.Equal(t, "", got.Profile.ContactNo)
}
