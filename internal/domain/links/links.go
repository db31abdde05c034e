package links

import (
	"fmt"
	"strings"
)

// Kind identifies one many-to-many link table.
type Kind string

const (
	KindClimbGrade     Kind = "climb_grade"
	KindAscentGrade    Kind = "ascent_grade"
	KindAscentParty    Kind = "ascent_party"
	KindClimbVariation Kind = "climb_variation"
)

// Spec describes the table and key columns behind a Kind.
type Spec struct {
	Table       string
	LeftColumn  string
	RightColumn string
	LeftTable   string
	RightTable  string
	// NoSelfLink rejects left == right.
	NoSelfLink bool
}

var specs = map[Kind]Spec{
	KindClimbGrade:     {Table: "climb_grades", LeftColumn: "climb_id", RightColumn: "grade_id", LeftTable: "climbs", RightTable: "grades"},
	KindAscentGrade:    {Table: "ascent_grades", LeftColumn: "ascent_id", RightColumn: "grade_id", LeftTable: "ascents", RightTable: "grades"},
	KindAscentParty:    {Table: "ascent_parties", LeftColumn: "ascent_id", RightColumn: "climber_id", LeftTable: "ascents", RightTable: "climbers"},
	KindClimbVariation: {Table: "climb_variations", LeftColumn: "root_id", RightColumn: "variation_id", LeftTable: "climbs", RightTable: "climbs", NoSelfLink: true},
}

func (k Kind) Spec() (Spec, error) {
	s, ok := specs[k]
	if !ok {
		return Spec{}, fmt.Errorf("unknown link kind %q", string(k))
	}
	return s, nil
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, err := k.Spec(); err != nil {
		return "", err
	}
	return k, nil
}

func Kinds() []Kind {
	return []Kind{KindClimbGrade, KindAscentGrade, KindAscentParty, KindClimbVariation}
}

// Pair is one link row.
type Pair struct {
	Left  int64 `json:"left"`
	Right int64 `json:"right"`
}

type ClimbGrade struct {
	ClimbID int64 `gorm:"column:climb_id;primaryKey;autoIncrement:false" json:"climb_id"`
	GradeID int64 `gorm:"column:grade_id;primaryKey;autoIncrement:false" json:"grade_id"`
}

func (ClimbGrade) TableName() string { return "climb_grades" }

type AscentGrade struct {
	AscentID int64 `gorm:"column:ascent_id;primaryKey;autoIncrement:false" json:"ascent_id"`
	GradeID  int64 `gorm:"column:grade_id;primaryKey;autoIncrement:false" json:"grade_id"`
}

func (AscentGrade) TableName() string { return "ascent_grades" }

type AscentParty struct {
	AscentID  int64 `gorm:"column:ascent_id;primaryKey;autoIncrement:false" json:"ascent_id"`
	ClimberID int64 `gorm:"column:climber_id;primaryKey;autoIncrement:false" json:"climber_id"`
}

func (AscentParty) TableName() string { return "ascent_parties" }

type ClimbVariation struct {
	RootID      int64 `gorm:"column:root_id;primaryKey;autoIncrement:false" json:"root_id"`
	VariationID int64 `gorm:"column:variation_id;primaryKey;autoIncrement:false" json:"variation_id"`
}

func (ClimbVariation) TableName() string { return "climb_variations" }
