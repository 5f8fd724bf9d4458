package repository

import (
	"gorm.io/gorm"
	"setores/cmd/internal/domain/entity"
)

type DefaultChangeLogRepository struct {
	db *gorm.DB
}

func NewChangeLogRepository(db *gorm.DB) *DefaultChangeLogRepository {
	return &DefaultChangeLogRepository{db: db}
}

func (r *DefaultChangeLogRepository) Save(entry *entity.ChangeLog) error {
	return r.db.Create(entry).Error
}

// FindBySlug returns the newest entries of one setor first.
func (r *DefaultChangeLogRepository) FindBySlug(slug string, limit int) ([]*entity.ChangeLog, error) {
	var entries []*entity.ChangeLog
	err := r.db.
		Where("slug = ?", slug).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteBefore removes every entry created before the given epoch millis.
func (r *DefaultChangeLogRepository) DeleteBefore(before int64) (int64, error) {
	res := r.db.
		Where("created_at < ?", before).
		Delete(&entity.ChangeLog{})
	return res.RowsAffected, res.Error
}

func (r *DefaultChangeLogRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.ChangeLog{}).Count(&n).Error
	return n, err
}
