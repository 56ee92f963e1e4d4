package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Content type, category and priority choices for a ContentItem.
const (
	TypeNote     = "note"
	TypeTask     = "task"
	TypeLink     = "link"
	TypeCode     = "code"
	TypeDocument = "document"

	CategoryWork     = "work"
	CategoryPersonal = "personal"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ContentItem represents one user-owned item: a note, task, link,
// code snippet or document with an optional file attachment.
type ContentItem struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"type:varchar(36);not null;index"`
	User        *User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Content     string     `json:"content" gorm:"type:text"`
	ContentType string     `json:"content_type" gorm:"type:varchar(20);default:note" validate:"omitempty,oneof=note task link code document"`
	Category    string     `json:"category" gorm:"type:varchar(20);default:personal" validate:"omitempty,oneof=work personal"`
	Priority    string     `json:"priority" gorm:"type:varchar(10);default:medium" validate:"omitempty,oneof=low medium high"`
	URL         string     `json:"url" validate:"omitempty,url"`
	FilePath    string     `json:"file"`      // Relative path under the media root, e.g. documents/2025/09/01/<uuid>.pdf
	FileName    string     `json:"file_name"` // Original name of the uploaded file
	Language    string     `json:"language" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	DueDate     *time.Time `json:"due_date"`
	IsCompleted bool       `json:"is_completed" gorm:"default:false"`
	IsStarred   bool       `json:"is_starred" gorm:"default:false"`
	Tags        string     `json:"tags" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasFile reports whether the item has a stored attachment.
func (c *ContentItem) HasFile() bool {
	return c.FilePath != ""
}

// FileExt returns the lower-cased extension of the attachment, including
// the leading dot, or an empty string when there is no attachment.
func (c *ContentItem) FileExt() string {
	if c.FilePath == "" {
		return ""
	}
	return strings.ToLower(filepath.Ext(c.FilePath))
}

// FileBaseName returns the stored file name without its directory part.
func (c *ContentItem) FileBaseName() string {
	if c.FileName != "" {
		return c.FileName
	}
	return filepath.Base(c.FilePath)
}
