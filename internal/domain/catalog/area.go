package catalog

// Area is a geographic climbing region.
type Area struct {
	ID    int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Names Names `gorm:"column:names;not null" json:"names"`
}

func (Area) TableName() string { return "areas" }
