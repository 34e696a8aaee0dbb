package domain

import "time"

// UsageRecord tracks free-tier generation consumption for one user.
// Premium callers never have their count consulted or incremented.
type UsageRecord struct {
	UserID    string    `gorm:"type:text;primaryKey" json:"user_id"`
	FreeUsage int       `gorm:"not null;default:0" json:"free_usage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for UsageRecord.
func (UsageRecord) TableName() string {
	return "usage_records"
}
