package processor

import (
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"
)

// ResultAssembler 根据解码结果装配最终记录：
// 解码成功时输出归一化后的解码记录；解码失败时输出归一化后的空壳，
// 不保留任何部分数据。永远返回结构合法的记录。
type ResultAssembler struct {
	variant    types.SchemaVariant
	normalizer *FieldNormalizer
}

// NewResultAssembler 创建装配器
func NewResultAssembler(variant types.SchemaVariant, normalizer *FieldNormalizer) *ResultAssembler {
	if normalizer == nil {
		normalizer = NewFieldNormalizer()
	}
	return &ResultAssembler{variant: variant, normalizer: normalizer}
}

// Assemble 装配最终记录。decodeErr非nil或decoded为nil时走空壳路径。
func (a *ResultAssembler) Assemble(decoded *types.ResumeRecord, decodeErr error) *types.ResumeRecord {
	if decodeErr != nil || decoded == nil {
		if decodeErr != nil {
			logger.Debug().Err(decodeErr).Msg("解码失败，装配空壳记录")
		}
		return a.normalizer.Normalize(types.NewShellRecord(a.variant))
	}
	return a.normalizer.Normalize(decoded)
}
