package search

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/models"
)

// ReindexResult counts the properties pushed by Reindex
type ReindexResult struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// Reindex pushes every stored property to idx in batches. A failing batch is
// counted and skipped.
func Reindex(db *gorm.DB, idx Index, batchSize int) (*ReindexResult, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	result := &ReindexResult{}

	var batch []models.Property
	err := db.Order("id").FindInBatches(&batch, batchSize, func(tx *gorm.DB, n int) error {
		result.Total += len(batch)
		if err := idx.IndexProperties(batch); err != nil {
			log.WithError(err).WithField("batch", n).Warn("[Reindex] batch failed")
			result.Failed += len(batch)
			return nil
		}
		result.Indexed += len(batch)
		log.Debugf("[Reindex] Progress: %d indexed", result.Indexed)
		return nil
	}).Error
	if err != nil {
		return result, fmt.Errorf("failed to read properties: %w", err)
	}

	log.Infof("[Reindex] Reindex complete. Success: %d, Failed: %d", result.Indexed, result.Failed)
	return result, nil
}
