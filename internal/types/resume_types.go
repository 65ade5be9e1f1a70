package types

import (
	"encoding/json"
	"fmt"
)

// SchemaVariant 输出模式的标识。一次部署只使用一种模式，
// 两种模式的字段命名互不兼容，不能混用。
type SchemaVariant string

const (
	// SchemaBasicInfo "basic_info" 模式：嵌套的基本信息 + 工作/项目经历
	SchemaBasicInfo SchemaVariant = "basic_info"
	// SchemaProfile "profile" 模式：扁平的个人资料字段 + 证书/教育/课外/工作数组
	SchemaProfile SchemaVariant = "profile"
)

// ParseSchemaVariant 校验配置中的模式名称
func ParseSchemaVariant(s string) (SchemaVariant, error) {
	switch SchemaVariant(s) {
	case SchemaBasicInfo:
		return SchemaBasicInfo, nil
	case SchemaProfile:
		return SchemaProfile, nil
	default:
		return "", fmt.Errorf("未知的输出模式: %q (可选: %s, %s)", s, SchemaBasicInfo, SchemaProfile)
	}
}

// ResumeRecord 简历解析结果，按模式二选一携带载荷。
// Variant 在构造时确定；序列化时只输出对应模式的布局。
type ResumeRecord struct {
	Variant   SchemaVariant    `json:"-"`
	BasicInfo *BasicInfoRecord `json:"-"`
	Profile   *ProfileRecord   `json:"-"`
}

// MarshalJSON 只输出当前模式的载荷
func (r *ResumeRecord) MarshalJSON() ([]byte, error) {
	switch r.Variant {
	case SchemaBasicInfo:
		if r.BasicInfo == nil {
			return json.Marshal(NewBasicInfoShell())
		}
		return json.Marshal(r.BasicInfo)
	case SchemaProfile:
		if r.Profile == nil {
			return json.Marshal(NewProfileShell())
		}
		return json.Marshal(r.Profile)
	default:
		return nil, fmt.Errorf("ResumeRecord 缺少有效的模式标识: %q", r.Variant)
	}
}

// SetError 在记录上附加错误说明（仅在最外层边界使用）
func (r *ResumeRecord) SetError(msg string) {
	switch r.Variant {
	case SchemaBasicInfo:
		if r.BasicInfo != nil {
			r.BasicInfo.Error = msg
		}
	case SchemaProfile:
		if r.Profile != nil {
			r.Profile.Error = msg
		}
	}
}

//
// Variant A: "basic_info" 模式
//

// BasicInfoFields 基本信息字段（除majors外均为字符串）
type BasicInfoFields struct {
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	FullName            string   `json:"full_name"`
	Email               string   `json:"email"`
	PhoneNumber         string   `json:"phone_number"`
	Location            string   `json:"location"`
	PortfolioWebsiteURL string   `json:"portfolio_website_url"`
	LinkedinURL         string   `json:"linkedin_url"`
	GithubMainPageURL   string   `json:"github_main_page_url"`
	University          string   `json:"university"`
	EducationLevel      string   `json:"education_level"`
	GraduationYear      string   `json:"graduation_year"`
	GraduationMonth     string   `json:"graduation_month"`
	Majors              []string `json:"majors"`
	GPA                 string   `json:"GPA"`
}

// WorkExperience 工作经历条目
type WorkExperience struct {
	JobTitle   string `json:"job_title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Duration   string `json:"duration"`
	JobSummary string `json:"job_summary"`
}

// ProjectExperience 项目经历条目
type ProjectExperience struct {
	ProjectName        string `json:"project_name"`
	ProjectDescription string `json:"project_description"`
}

// BasicInfoRecord "basic_info" 模式的完整输出
type BasicInfoRecord struct {
	BasicInfo         BasicInfoFields     `json:"basic_info"`
	WorkExperience    []WorkExperience    `json:"work_experience"`
	ProjectExperience []ProjectExperience `json:"project_experience"`

	// Error 仅在处理失败时由边界层填写
	Error string `json:"error,omitempty"`
}

// NewBasicInfoShell 构造全默认值的空壳记录（解析失败时的兜底输出）
func NewBasicInfoShell() *BasicInfoRecord {
	return &BasicInfoRecord{
		BasicInfo:         BasicInfoFields{Majors: []string{}},
		WorkExperience:    []WorkExperience{},
		ProjectExperience: []ProjectExperience{},
	}
}

//
// Variant B: "profile" 模式
//

// Certificate 证书条目
type Certificate struct {
	CredentialID   string `json:"credentialId"`
	CredentialURL  string `json:"credentialUrl"`
	Description    string `json:"description"`
	ExpirationDate string `json:"expirationDate"`
	IssuedOn       string `json:"issuedOn"`
	Issuer         string `json:"issuer"`
	Name           string `json:"name"`
}

// Education 教育经历条目
type Education struct {
	City        string `json:"city"`
	Degree      string `json:"degree"`
	Description string `json:"description"`
	EndDate     string `json:"endDate"`
	Field       string `json:"field"`
	School      string `json:"school"`
	StartDate   string `json:"startDate"`
}

// Extracurricular 课外活动条目
type Extracurricular struct {
	ActivityName string `json:"activityName"`
	Description  string `json:"description"`
	EndDate      string `json:"endDate"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	StartDate    string `json:"startDate"`
}

// Job 工作经历条目
type Job struct {
	City        string `json:"city"`
	Description string `json:"description"`
	Employer    string `json:"employer"`
	EndDate     string `json:"endDate"`
	JobTitle    string `json:"jobTitle"`
	StartDate   string `json:"startDate"`
}

// ProfileRecord "profile" 模式的完整输出。
// 约束: contactno 要么恰好10位数字要么为空串；city/country 永远非空（空值用哨兵"-"）。
type ProfileRecord struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	ContactNo string `json:"contactno"`
	Country   string `json:"country"`
	City      string `json:"city"`

	Certificates     []Certificate     `json:"certificates"`
	Education        []Education       `json:"education"`
	Extracurriculars []Extracurricular `json:"extracurriculars"`
	Jobs             []Job             `json:"jobs"`

	// Error 仅在处理失败时由边界层填写
	Error string `json:"error,omitempty"`
}

// NewProfileShell 构造全默认值的空壳记录。
// 注意 city/country 此处为空串，哨兵替换由归一化器统一完成。
func NewProfileShell() *ProfileRecord {
	return &ProfileRecord{
		Certificates:     []Certificate{},
		Education:        []Education{},
		Extracurriculars: []Extracurricular{},
		Jobs:             []Job{},
	}
}

// NewShellRecord 按模式构造空壳 ResumeRecord
func NewShellRecord(variant SchemaVariant) *ResumeRecord {
	switch variant {
	case SchemaProfile:
		return &ResumeRecord{Variant: SchemaProfile, Profile: NewProfileShell()}
	default:
		return &ResumeRecord{Variant: SchemaBasicInfo, BasicInfo: NewBasicInfoShell()}
	}
}
