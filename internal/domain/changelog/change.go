package changelog

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionCreated       = "created"
	ActionDeleted       = "deleted"
	ActionRenamed       = "renamed"
	ActionParentSet     = "parent_set"
	ActionParentCleared = "parent_cleared"
	ActionLocationSet   = "location_set"
	ActionLinked        = "linked"
	ActionUnlinked      = "unlinked"
	ActionDescribed     = "described"
)

// Change is one committed catalog write, appended in the same transaction as the write.
type Change struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityKind string         `gorm:"column:entity_kind;not null" json:"entity_kind"`
	EntityID   int64          `gorm:"column:entity_id;not null" json:"entity_id"`
	Action     string         `gorm:"column:action;not null" json:"action"`
	Actor      string         `gorm:"column:actor;not null" json:"actor"`
	Payload    datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (Change) TableName() string { return "change_log" }

// Entity kinds outside the containment forest. Forest nodes use their
// hierarchy.NodeKind as the entity kind.
const (
	EntityClimber = "climber"
	EntityAscent  = "ascent"
)
