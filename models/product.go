package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Product struct {
	ID          string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex" json:"slug"`
	SKU         string         `json:"sku"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Category    string         `gorm:"index" json:"category"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Colors      pq.StringArray `gorm:"type:text[]" json:"colors"`
	Sizes       pq.StringArray `gorm:"type:text[]" json:"sizes"`
	Stock       int            `json:"stock"`
	Images      []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate fills in the identifier and slug when the caller left them empty.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name) + "-" + ShortID(p.ID)
	}
	return nil
}

// PrimaryImage returns the URL of the first image, or "" if the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// HasTag reports whether the product carries tag, ignoring case.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ShortID returns the first eight characters of id, or id itself when shorter.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
