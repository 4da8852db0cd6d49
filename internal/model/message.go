package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a one-directional supervisor-to-admin note tied to a site,
// optionally carrying a video URL. Media itself is hosted elsewhere; only the
// URL travels through this system.
type Message struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"site_id"`
	Site      *Site      `gorm:"foreignKey:SiteID" json:"site,omitempty"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	SenderID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender    *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	VideoURL  string     `gorm:"type:text" json:"video_url,omitempty"`
	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
