package processor

import (
	"strings"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"
)

// FieldNormalizer 对解码后的记录做确定性的字段修复。
// 全函数：任何输入都能产出合法记录；幂等：重复归一化结果不变。
type FieldNormalizer struct{}

// NewFieldNormalizer 创建归一化器
func NewFieldNormalizer() *FieldNormalizer {
	return &FieldNormalizer{}
}

// Normalize 原地修复记录并返回。nil载荷会被替换为空壳。
func (n *FieldNormalizer) Normalize(record *types.ResumeRecord) *types.ResumeRecord {
	if record == nil {
		return nil
	}

	switch record.Variant {
	case types.SchemaBasicInfo:
		if record.BasicInfo == nil {
			record.BasicInfo = types.NewBasicInfoShell()
		}
		n.normalizeBasicInfo(record.BasicInfo)
	case types.SchemaProfile:
		if record.Profile == nil {
			record.Profile = types.NewProfileShell()
		}
		n.normalizeProfile(record.Profile)
	}

	return record
}

// normalizeBasicInfo "basic_info" 模式只做形状修复：
// 缺失的数组补为空数组，保证序列化输出[]而不是null
func (n *FieldNormalizer) normalizeBasicInfo(rec *types.BasicInfoRecord) {
	if rec.BasicInfo.Majors == nil {
		rec.BasicInfo.Majors = []string{}
	}
	if rec.WorkExperience == nil {
		rec.WorkExperience = []types.WorkExperience{}
	}
	if rec.ProjectExperience == nil {
		rec.ProjectExperience = []types.ProjectExperience{}
	}
}

// normalizeProfile "profile" 模式的完整修复：
// 电话号码规整、city/country哨兵、数组补空
func (n *FieldNormalizer) normalizeProfile(rec *types.ProfileRecord) {
	rec.ContactNo = NormalizeContact(rec.ContactNo)

	if strings.TrimSpace(rec.City) == "" {
		rec.City = constants.EmptyFieldPlaceholder
	}
	if strings.TrimSpace(rec.Country) == "" {
		rec.Country = constants.EmptyFieldPlaceholder
	}

	if rec.Certificates == nil {
		rec.Certificates = []types.Certificate{}
	}
	if rec.Education == nil {
		rec.Education = []types.Education{}
	}
	if rec.Extracurriculars == nil {
		rec.Extracurriculars = []types.Extracurricular{}
	}
	if rec.Jobs == nil {
		rec.Jobs = []types.Job{}
	}
}

// NormalizeContact 把任意格式的电话号码规整为恰好10位数字：
//   - 剔除所有非数字字符
//   - 恰好10位：原样通过
//   - 11位且以0开头：去掉前导0
//   - 其余长度：置空并记录警告
func NormalizeContact(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	switch {
	case len(s) == 10:
		return s
	case len(s) == 11 && s[0] == '0':
		return s[1:]
	case s == "":
		return ""
	default:
		logger.Warn().Int("digit_count", len(s)).Msg("电话号码位数异常，已置空")
		return ""
	}
}
