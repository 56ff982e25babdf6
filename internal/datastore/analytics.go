package datastore

import (
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
)

// GetDiseaseStats aggregates ingested scans per disease: row count and
// mean confidence, most frequent first. Returns an empty slice when no
// scans have been ingested.
func (ds *DataStore) GetDiseaseStats() ([]DiseaseStat, error) {
	stats := []DiseaseStat{}
	err := ds.DB.Model(&RemoteScan{}).
		Select("disease_name, COUNT(*) as count, AVG(confidence) as avg_confidence").
		Group("disease_name").
		Order("count DESC, disease_name ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return stats, nil
}
