package service

import (
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// normalizePage rejects negative offsets and non-positive sizes and caps size at limit.
func normalizePage(page models.Page, limit int) (models.Page, error) {
	if page.From < 0 {
		return models.Page{}, fmt.Errorf("%w: from must not be negative", domain.ErrValidation)
	}
	if page.Size < 1 {
		return models.Page{}, fmt.Errorf("%w: size must be positive", domain.ErrValidation)
	}
	if page.Size > limit {
		page.Size = limit
	}
	return page, nil
}
