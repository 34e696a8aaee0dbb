package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// CreationKind tags what kind of artifact a creation row holds.
type CreationKind string

const (
	KindArticle      CreationKind = "article"
	KindBlogTitle    CreationKind = "blog-title"
	KindImage        CreationKind = "image"
	KindResumeReview CreationKind = "resume-review"
)

// Valid reports whether k is one of the known creation kinds.
func (k CreationKind) Valid() bool {
	switch k {
	case KindArticle, KindBlogTitle, KindImage, KindResumeReview:
		return true
	}
	return false
}

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Contains reports whether s is a member of the array.
func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

// Creation is one persisted generation result. Rows are write-once except
// for the likes column, which is mutated through the like-toggle path.
type Creation struct {
	ID        string       `gorm:"type:text;primaryKey" json:"id"`
	UserID    string       `gorm:"type:text;not null;index:idx_creations_user" json:"user_id"`
	Prompt    string       `gorm:"type:text;not null" json:"prompt"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	Kind      CreationKind `gorm:"column:type;type:text;not null;index:idx_creations_type" json:"type"`
	Publish   bool         `gorm:"default:false;index:idx_creations_publish" json:"publish"`
	Likes     StringArray  `gorm:"type:text" json:"likes"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName returns the database table name for Creation.
func (Creation) TableName() string {
	return "creations"
}
