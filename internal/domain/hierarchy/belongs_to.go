package hierarchy

type AreaBelongsTo struct {
	AreaID      int64 `gorm:"column:area_id;primaryKey;autoIncrement:false" json:"area_id"`
	SuperAreaID int64 `gorm:"column:super_area_id;not null" json:"super_area_id"`
}

func (AreaBelongsTo) TableName() string { return "area_belongs_to" }

func (r *AreaBelongsTo) Parent() ParentRef { return AreaParent(r.SuperAreaID) }

// FormationBelongsTo holds exactly one of AreaID or SuperFormationID.
type FormationBelongsTo struct {
	FormationID      int64  `gorm:"column:formation_id;primaryKey;autoIncrement:false" json:"formation_id"`
	AreaID           *int64 `gorm:"column:area_id" json:"area_id"`
	SuperFormationID *int64 `gorm:"column:super_formation_id" json:"super_formation_id"`
}

func (FormationBelongsTo) TableName() string { return "formation_belongs_to" }

func (r *FormationBelongsTo) Parent() (ParentRef, error) {
	return ParentRefFromColumns(r.AreaID, r.SuperFormationID)
}

func NewFormationBelongsTo(formationID int64, parent ParentRef) *FormationBelongsTo {
	areaID, formationParentID := parent.Columns()
	return &FormationBelongsTo{FormationID: formationID, AreaID: areaID, SuperFormationID: formationParentID}
}

// ClimbBelongsTo holds exactly one of AreaID or FormationID.
type ClimbBelongsTo struct {
	ClimbID     int64  `gorm:"column:climb_id;primaryKey;autoIncrement:false" json:"climb_id"`
	AreaID      *int64 `gorm:"column:area_id" json:"area_id"`
	FormationID *int64 `gorm:"column:formation_id" json:"formation_id"`
}

func (ClimbBelongsTo) TableName() string { return "climb_belongs_to" }

func (r *ClimbBelongsTo) Parent() (ParentRef, error) {
	return ParentRefFromColumns(r.AreaID, r.FormationID)
}

func NewClimbBelongsTo(climbID int64, parent ParentRef) *ClimbBelongsTo {
	areaID, formationID := parent.Columns()
	return &ClimbBelongsTo{ClimbID: climbID, AreaID: areaID, FormationID: formationID}
}
