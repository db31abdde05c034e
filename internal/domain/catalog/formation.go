package catalog

import "fmt"

// DefaultSRID is WGS 84.
const DefaultSRID = 4326

// Location is a single point. Lat is the y coordinate, Lon the x coordinate.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	SRID int     `json:"srid"`
}

func (l Location) Normalize() Location {
	if l.SRID == 0 {
		l.SRID = DefaultSRID
	}
	return l
}

func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", l.Lon)
	}
	if l.SRID < 0 {
		return fmt.Errorf("srid %d invalid", l.SRID)
	}
	return nil
}

// Formation is a physical rock feature (crag, boulder, wall).
type Formation struct {
	ID           int64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Names        Names    `gorm:"column:names;not null" json:"names"`
	LocationLat  *float64 `gorm:"column:location_lat" json:"-"`
	LocationLon  *float64 `gorm:"column:location_lon" json:"-"`
	LocationSRID *int     `gorm:"column:location_srid" json:"-"`
}

func (Formation) TableName() string { return "formations" }

func (f *Formation) Location() *Location {
	if f == nil || f.LocationLat == nil || f.LocationLon == nil || f.LocationSRID == nil {
		return nil
	}
	return &Location{Lat: *f.LocationLat, Lon: *f.LocationLon, SRID: *f.LocationSRID}
}

func (f *Formation) SetLocation(loc *Location) {
	if loc == nil {
		f.LocationLat, f.LocationLon, f.LocationSRID = nil, nil, nil
		return
	}
	l := loc.Normalize()
	f.LocationLat, f.LocationLon, f.LocationSRID = &l.Lat, &l.Lon, &l.SRID
}
