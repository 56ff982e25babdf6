package datastore

// ScanRecord is one classified leaf photo in the on-device history. The ID
// is a client-generated UUID so the remote store can deduplicate replayed
// batches. Timestamps are unix milliseconds.
type ScanRecord struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	DiseaseName string   `gorm:"index" json:"disease_name"`
	Severity    string   `json:"severity"`
	Confidence  float64  `json:"confidence"`
	ImagePath   string   `json:"image_path"`
	Timestamp   int64    `gorm:"index" json:"timestamp"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	DeviceID    string   `json:"device_id"`
	Synced      int      `gorm:"index;default:0" json:"-"`
}

// RemoteScan is a scan as stored by the ingest server. It mirrors the
// client record, keyed by the same client UUID, plus the server-side
// ingest time.
type RemoteScan struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	DiseaseName string   `gorm:"index" json:"disease_name"`
	Severity    string   `json:"severity"`
	Confidence  float64  `json:"confidence"`
	ImagePath   string   `json:"image_path"`
	Timestamp   int64    `gorm:"index" json:"timestamp"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	DeviceID    string   `gorm:"index" json:"device_id"`
	SyncedAt    int64    `json:"synced_at"`
}

// TableName keeps the ingest table name independent of the struct name.
func (RemoteScan) TableName() string {
	return "scans"
}

// DiseaseStat is one row of the per-disease aggregate.
type DiseaseStat struct {
	DiseaseName   string  `json:"disease_name"`
	Count         int64   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}
