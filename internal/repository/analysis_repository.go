package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(analysis *model.Analysis) error {
	if err := r.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("create analysis failed: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) ListByFileID(fileID string) ([]model.Analysis, error) {
	var analyses []model.Analysis
	if err := r.db.Where("file_id = ?", fileID).Order("created_at DESC").Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("list analyses failed: %w", err)
	}
	return analyses, nil
}
