package catalog

// Climb is a single route or problem.
type Climb struct {
	ID    int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Names Names `gorm:"column:names;not null" json:"names"`
}

func (Climb) TableName() string { return "climbs" }

type Climber struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FirstName string `gorm:"column:first_name;not null" json:"first_name"`
	LastName  string `gorm:"column:last_name;not null" json:"last_name"`
}

func (Climber) TableName() string { return "climbers" }

type Ascent struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClimbID    int64      `gorm:"column:climb_id;not null" json:"climb_id"`
	AscentDate *DateRange `gorm:"column:ascent_date" json:"ascent_date,omitempty"`
}

func (Ascent) TableName() string { return "ascents" }
