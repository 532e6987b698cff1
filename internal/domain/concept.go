package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Concept is a single testable unit of knowledge extracted from a material.
// Immutable once created except for enrichment fields.
type Concept struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`

	Name       string `gorm:"not null;column:name" json:"name"`
	Definition string `gorm:"column:definition;type:text" json:"definition,omitempty"`
	Context    string `gorm:"column:context;type:text" json:"context,omitempty"`
	Complexity int    `gorm:"column:complexity;not null;default:1" json:"complexity"`

	RelatedConcepts datatypes.JSON `gorm:"column:related_concepts;type:jsonb" json:"related_concepts,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Concept) TableName() string { return "concept" }
