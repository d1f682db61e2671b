package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lvillar/proposalpdf/schema"
)

// Record statuses.
const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusArchived = "archived"
)

// Proposal item types.
const (
	ItemCustom  = "custom"
	ItemPackage = "package"
	ItemExtra   = "extra"
)

// SchemaData is the schema_json column of a record together with its
// decoded document. Data is filled after every find and written back
// before every save.
type SchemaData struct {
	SchemaJSON datatypes.JSON  `gorm:"column:schema_json" json:"-"`
	Data       schema.Document `gorm:"-" json:"schema_data"`
}

// AfterFind decodes SchemaJSON. Invalid or empty JSON yields an empty
// document.
func (s *SchemaData) AfterFind(*gorm.DB) error {
	s.Data = schema.Document{}
	if len(s.SchemaJSON) == 0 {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(s.SchemaJSON, &doc); err == nil && doc != nil {
		s.Data = doc
	}
	return nil
}

// BeforeSave encodes Data when it is set.
func (s *SchemaData) BeforeSave(*gorm.DB) error {
	if s.Data == nil {
		return nil
	}
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("store: encode schema_json: %w", err)
	}
	s.SchemaJSON = raw
	return nil
}

// Attachment is an uploaded media file.
type Attachment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	FilePath  string    `gorm:"column:file_path;size:1024;not null" json:"file_path"`
	MimeType  string    `gorm:"column:mime_type;size:100" json:"mime_type"`
}

func (Attachment) TableName() string { return "sf_attachments" }

// Asset is a reusable file or content fragment: covers, portfolios,
// terms, ending pages and agreements.
type Asset struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Slug         string         `gorm:"size:100;uniqueIndex" json:"slug"`
	AssetType    string         `gorm:"column:asset_type;size:50;index" json:"asset_type"`
	AttachmentID *int64         `gorm:"column:attachment_id" json:"attachment_id,omitempty"`
	Attachment   *Attachment    `gorm:"foreignKey:AttachmentID" json:"attachment,omitempty"`
	Content      string         `gorm:"type:text" json:"content"`
	MetadataJSON datatypes.JSON `gorm:"column:metadata_json" json:"metadata,omitempty"`
}

func (Asset) TableName() string { return "sf_assets" }

// Metadata decodes MetadataJSON.
func (a *Asset) Metadata() map[string]any {
	var m map[string]any
	if len(a.MetadataJSON) > 0 {
		_ = json.Unmarshal(a.MetadataJSON, &m)
	}
	return m
}

// Package is a website, hosting or maintenance package.
type Package struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	PackageType      string    `gorm:"column:package_type;size:50;index" json:"package_type"`
	Status           string    `gorm:"size:20;index;default:active" json:"status"`
	ShortDescription string    `gorm:"column:short_description;type:text" json:"short_description"`
	BasePrice        float64   `gorm:"column:base_price" json:"base_price"`
	SchemaData
}

func (Package) TableName() string { return "sf_packages" }

// Extra is an optional add-on offered with a proposal.
type Extra struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:20;index;default:active" json:"status"`
	BasePrice   float64   `gorm:"column:base_price" json:"base_price"`
	SchemaData
}

func (Extra) TableName() string { return "sf_extras" }

// Proposal is a proposal, agreement or cost estimate.
type Proposal struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	ClientName   string         `gorm:"column:client_name;size:255" json:"client_name"`
	ProjectName  string         `gorm:"column:project_name;size:255" json:"project_name"`
	Status       string         `gorm:"size:20;index;default:draft" json:"status"`
	ProposalType string         `gorm:"column:proposal_type;size:20;index;default:proposal" json:"proposal_type"`
	TotalAmount  float64        `gorm:"column:total_amount" json:"total_amount"`
	Currency     string         `gorm:"size:10;default:PHP" json:"currency"`
	Items        []ProposalItem `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	SchemaData
}

func (Proposal) TableName() string { return "sf_proposals" }

// ProposalItem is one line of a proposal's cost breakdown.
type ProposalItem struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ProposalID  int64     `gorm:"column:proposal_id;index;not null" json:"proposal_id"`
	ItemType    string    `gorm:"column:item_type;size:20;index;default:custom" json:"item_type"`
	ItemID      *int64    `gorm:"column:item_id" json:"item_id,omitempty"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Quantity    int       `gorm:"default:1" json:"quantity"`
	UnitPrice   float64   `gorm:"column:unit_price" json:"unit_price"`
	TotalPrice  float64   `gorm:"column:total_price" json:"total_price"`
	SortOrder   int       `gorm:"column:sort_order;index" json:"sort_order"`
}

func (ProposalItem) TableName() string { return "sf_proposal_items" }

// Brochure is a marketing document rendered from its schema data.
type Brochure struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Status    string         `gorm:"size:50;index;default:draft" json:"status"`
	Category  string         `gorm:"size:255;index" json:"category"`
	Items     []BrochureItem `gorm:"foreignKey:BrochureID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	SchemaData
}

func (Brochure) TableName() string { return "sf_brochures" }

// BrochureItem places a package in a brochure, with optional overrides of
// the package's fields.
type BrochureItem struct {
	ID         int64          `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	BrochureID int64          `gorm:"column:brochure_id;index;not null" json:"brochure_id"`
	PackageID  int64          `gorm:"column:package_id;index;not null" json:"package_id"`
	SortOrder  int            `gorm:"column:sort_order;index" json:"sort_order"`
	Overrides  datatypes.JSON `gorm:"column:overrides_json" json:"overrides,omitempty"`
}

func (BrochureItem) TableName() string { return "sf_brochure_items" }

// Snippet is reusable text, used among other things as agreement content.
type Snippet struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Category  string    `gorm:"size:100;index" json:"category"`
	Content   string    `gorm:"type:text" json:"content"`
	SchemaData
}

func (Snippet) TableName() string { return "sf_snippets" }
