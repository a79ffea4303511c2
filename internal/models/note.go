package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Note indexes a processed markdown note written under BASE_DIRECTORY.
type Note struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Category string `gorm:"column:category;type:text;index" json:"category"`
	Title    string `gorm:"column:title;type:text" json:"title"`
	SavedTo  string `gorm:"column:saved_to;type:text" json:"saved_to"`
	Source   string `gorm:"column:source;type:text" json:"source"`

	Tags pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`

	// raw frontmatter
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Note) TableName() string { return "notes" }
