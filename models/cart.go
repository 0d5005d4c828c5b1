package models

import (
	"time"

	"gorm.io/datatypes"
)

// CartSnapshot is the durable slot holding one session's serialized cart.
// The whole blob is overwritten on every save; the last writer wins.
type CartSnapshot struct {
	SessionID string         `gorm:"primaryKey;type:varchar(128)"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}
