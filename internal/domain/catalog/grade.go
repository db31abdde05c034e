package catalog

const (
	GradeTypeVermin = "vermin"

	DescriptionTypeBrief   = "brief"
	DescriptionTypeDesc    = "desc"
	DescriptionTypeHistory = "hist"
)

// SeedGradeTypes and SeedDescriptionTypes must exist after initialization.
var (
	SeedGradeTypes       = []string{GradeTypeVermin}
	SeedDescriptionTypes = []string{DescriptionTypeBrief, DescriptionTypeDesc, DescriptionTypeHistory}
)

type GradeType struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
}

func (GradeType) TableName() string { return "grade_types" }

// Grade is an opaque graded value scoped to one grading system.
type Grade struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GradeTypeID int64  `gorm:"column:grade_type_id;not null" json:"grade_type_id"`
	Value       string `gorm:"column:value;not null" json:"value"`
}

func (Grade) TableName() string { return "grades" }

// GradeValue names a grade by its grade type name. A climb or ascent may
// carry several values of the same type.
type GradeValue struct {
	GradeType string `json:"grade_type"`
	Value     string `json:"value"`
}

type ClimbDescriptionType struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
}

func (ClimbDescriptionType) TableName() string { return "climb_description_types" }

type ClimbDescription struct {
	ClimbID           int64  `gorm:"column:climb_id;primaryKey;autoIncrement:false" json:"climb_id"`
	DescriptionTypeID int64  `gorm:"column:description_type_id;primaryKey;autoIncrement:false" json:"description_type_id"`
	Value             string `gorm:"column:value;not null" json:"value"`
}

func (ClimbDescription) TableName() string { return "climb_descriptions" }
