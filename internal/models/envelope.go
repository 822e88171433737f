package models

import "encoding/json"

// Envelope wraps every backend response.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Upload is a file selected by the user (or rebuilt from stored bytes) and
// sent to the backend as one multipart part.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// KVEntry is one row of the client-persisted key-value storage.
type KVEntry struct {
	Namespace string `gorm:"primaryKey;type:varchar(64)"`
	Key       string `gorm:"primaryKey;column:kv_key;type:varchar(64)"`
	Value     string `gorm:"type:text"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}

// TableName pins the GORM table name.
func (KVEntry) TableName() string { return "kv_entries" }
