package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DocumentTypeSeed 文档类型种子文件
//
//	document_types:
//	  - name: Purchase Agreement
//	    required_approvals: 3
//	    sla_days: 5
//	    approver_ids: [alice, "", carol]
type DocumentTypeSeed struct {
	DocumentTypes []*CreateDocumentTypeRequest `yaml:"document_types"`
}

// SeedResult 种子导入结果
type SeedResult struct {
	Created []string
	Skipped []string
}

// LoadDocumentTypeSeed 解析 YAML 种子文件
func LoadDocumentTypeSeed(r io.Reader) (*DocumentTypeSeed, error) {
	var seed DocumentTypeSeed
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// SeedDocumentTypes 导入文档类型,已存在的同名类型跳过
func SeedDocumentTypes(ctx context.Context, svc DocumentTypeService, seed *DocumentTypeSeed) (*SeedResult, error) {
	result := &SeedResult{}
	for i, req := range seed.DocumentTypes {
		if req == nil {
			continue
		}
		_, err := svc.Create(ctx, req)
		switch {
		case err == nil:
			result.Created = append(result.Created, req.Name)
		case errors.Is(err, ErrDocumentTypeExists):
			result.Skipped = append(result.Skipped, req.Name)
		default:
			return result, fmt.Errorf("document type #%d (%s): %w", i+1, req.Name, err)
		}
	}
	return result, nil
}
