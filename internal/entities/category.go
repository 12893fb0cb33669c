package entities

import "time"

// Category is one node of the two-level category tree of a content source.
// TypeID 0 is reserved for the "All" category; ParentTypeID 0 marks a top-level row.
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Namespace    string    `gorm:"index;size:255" json:"-"` // subUrl of the owning source
	TypeID       int       `gorm:"index" json:"type_id"`
	TypeName     string    `gorm:"size:100" json:"type_name"`
	ParentTypeID int       `gorm:"index" json:"parent_type_id"`
	Position     int       `json:"-"` // order in the reconciled list
	CreatedAt    time.Time `json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// IsTopLevel reports whether the category has no parent. "All" counts as top-level.
func (c Category) IsTopLevel() bool {
	return c.ParentTypeID == 0
}
