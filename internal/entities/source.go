package entities

import "time"

type ContentType string

const (
	ContentTypeMovie  ContentType = "MOVIE"
	ContentTypeBook   ContentType = "BOOK"
	ContentTypeMusic  ContentType = "MUSIC"
	ContentTypeCustom ContentType = "CUSTOM"
)

type DetailScreenType string

const (
	DetailScreenVideoPlayer DetailScreenType = "VIDEO_PLAYER"
	DetailScreenBookReader  DetailScreenType = "BOOK_READER"
	DetailScreenAudioPlayer DetailScreenType = "AUDIO_PLAYER"
	DetailScreenWebView     DetailScreenType = "WEB_VIEW"
)

// ContentSource is an external content API instance. Categories and items
// are scoped to it through Namespace.
type ContentSource struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Namespace       string `gorm:"uniqueIndex;size:255" json:"namespace"`
	Name            string `gorm:"size:255" json:"name"`
	BaseURL         string `gorm:"size:1024" json:"base_url"`
	CategoryPath    string `gorm:"size:512" json:"category_path,omitempty"`
	ListPath        string `gorm:"size:512" json:"list_path,omitempty"`
	RemoteConfigURL string `gorm:"size:1024" json:"remote_config_url,omitempty"`

	// Content type configuration
	ContentType          ContentType      `gorm:"size:20;default:'MOVIE'" json:"content_type"`
	DetailScreenType     DetailScreenType `gorm:"size:20;default:'VIDEO_PLAYER'" json:"detail_screen_type"`
	ListResponsePath     string           `gorm:"size:255" json:"list_response_path,omitempty"`
	CategoryResponsePath string           `gorm:"size:255" json:"category_response_path,omitempty"`
	DetailResponsePath   string           `gorm:"size:255" json:"detail_response_path,omitempty"`
	SearchResponsePath   string           `gorm:"size:255" json:"search_response_path,omitempty"`

	FieldMappings []FieldMapping `gorm:"foreignKey:SourceID;constraint:OnDelete:CASCADE" json:"field_mappings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContentSource) TableName() string {
	return "content_sources"
}

// FieldMapping projects one key path of an external record onto one internal field.
type FieldMapping struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	SourceID     uint    `gorm:"index" json:"-"`
	Position     int     `json:"-"`
	SourceField  string  `gorm:"size:255" json:"source_field" yaml:"source_field"`
	TargetField  string  `gorm:"size:100" json:"target_field" yaml:"target_field"`
	IsRequired   bool    `gorm:"default:false" json:"is_required" yaml:"required"`
	DefaultValue *string `gorm:"size:512" json:"default_value,omitempty" yaml:"default,omitempty"`
}

func (FieldMapping) TableName() string {
	return "field_mappings"
}

// IsActive reports whether both ends of the mapping are set.
func (m FieldMapping) IsActive() bool {
	return m.SourceField != "" && m.TargetField != ""
}
