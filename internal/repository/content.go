package repository

import (
	"context"
	"errors"
	"fmt"

	"edupay/internal/apperr"
	"edupay/internal/model"

	"gorm.io/gorm"
)

// ContentRepository is a read-only lookup into the platform's content
// collections. Content CRUD lives elsewhere; this module only needs
// pricing and availability.
type ContentRepository interface {
	GetItem(ctx context.Context, itemModel model.ItemModel, itemID uint) (*model.ContentItem, error)
}

type contentRepoImpl struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepoImpl{
		db: db,
	}
}

func (r *contentRepoImpl) GetItem(ctx context.Context, itemModel model.ItemModel, itemID uint) (*model.ContentItem, error) {
	table, ok := itemModel.Table()
	if !ok {
		return nil, fmt.Errorf("unknown item model %q: %w", itemModel, apperr.ErrNotFound)
	}

	var item model.ContentItem
	err := r.db.WithContext(ctx).
		Table(table).
		Select("id", "title", "price", "availability").
		Where("id = ?", itemID).
		Take(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %d: %w", itemModel, itemID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	item.Model = itemModel
	return &item, nil
}
