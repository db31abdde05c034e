package db

// SQLite keeps the same tables and constraint names. Triggers cannot hold a
// recursive CTE here, so acyclicity rests on the in-transaction chain walk.
var sqliteSchema = []ddlStatement{
	{"areas", `
		CREATE TABLE IF NOT EXISTS areas (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			names TEXT NOT NULL DEFAULT '{}'
		)`},
	{"formations", `
		CREATE TABLE IF NOT EXISTS formations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			names         TEXT NOT NULL DEFAULT '{}',
			location_lat  REAL,
			location_lon  REAL,
			location_srid INTEGER,
			CONSTRAINT formations_location_complete CHECK (
				(location_lat IS NULL AND location_lon IS NULL AND location_srid IS NULL)
				OR (location_lat IS NOT NULL AND location_lon IS NOT NULL AND location_srid IS NOT NULL)
			)
		)`},
	{"climbs", `
		CREATE TABLE IF NOT EXISTS climbs (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			names TEXT NOT NULL DEFAULT '{}'
		)`},
	{"climbers", `
		CREATE TABLE IF NOT EXISTS climbers (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL
		)`},
	{"ascents", `
		CREATE TABLE IF NOT EXISTS ascents (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			climb_id    INTEGER NOT NULL REFERENCES climbs(id) ON DELETE CASCADE,
			ascent_date TEXT
		)`},
	{"grade_types", `
		CREATE TABLE IF NOT EXISTS grade_types (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			CONSTRAINT grade_types_name_key UNIQUE (name)
		)`},
	{"grades", `
		CREATE TABLE IF NOT EXISTS grades (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			grade_type_id INTEGER NOT NULL REFERENCES grade_types(id) ON DELETE CASCADE,
			value         TEXT NOT NULL,
			CONSTRAINT grades_type_value_key UNIQUE (grade_type_id, value)
		)`},
	{"climb_description_types", `
		CREATE TABLE IF NOT EXISTS climb_description_types (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			CONSTRAINT climb_description_types_name_key UNIQUE (name)
		)`},
	{"climb_descriptions", `
		CREATE TABLE IF NOT EXISTS climb_descriptions (
			climb_id            INTEGER NOT NULL REFERENCES climbs(id) ON DELETE CASCADE,
			description_type_id INTEGER NOT NULL REFERENCES climb_description_types(id) ON DELETE CASCADE,
			value               TEXT NOT NULL,
			PRIMARY KEY (climb_id, description_type_id)
		)`},
	{"climb_grades", `
		CREATE TABLE IF NOT EXISTS climb_grades (
			climb_id INTEGER NOT NULL REFERENCES climbs(id) ON DELETE CASCADE,
			grade_id INTEGER NOT NULL REFERENCES grades(id) ON DELETE CASCADE,
			PRIMARY KEY (climb_id, grade_id)
		)`},
	{"ascent_grades", `
		CREATE TABLE IF NOT EXISTS ascent_grades (
			ascent_id INTEGER NOT NULL REFERENCES ascents(id) ON DELETE CASCADE,
			grade_id  INTEGER NOT NULL REFERENCES grades(id) ON DELETE CASCADE,
			PRIMARY KEY (ascent_id, grade_id)
		)`},
	{"ascent_parties", `
		CREATE TABLE IF NOT EXISTS ascent_parties (
			ascent_id  INTEGER NOT NULL REFERENCES ascents(id) ON DELETE CASCADE,
			climber_id INTEGER NOT NULL REFERENCES climbers(id) ON DELETE CASCADE,
			PRIMARY KEY (ascent_id, climber_id)
		)`},
	{"climb_variations", `
		CREATE TABLE IF NOT EXISTS climb_variations (
			root_id      INTEGER NOT NULL REFERENCES climbs(id) ON DELETE CASCADE,
			variation_id INTEGER NOT NULL REFERENCES climbs(id) ON DELETE CASCADE,
			PRIMARY KEY (root_id, variation_id),
			CONSTRAINT climb_variations_no_self CHECK (root_id <> variation_id)
		)`},
	{"area_belongs_to", `
		CREATE TABLE IF NOT EXISTS area_belongs_to (
			area_id       INTEGER PRIMARY KEY REFERENCES areas(id) ON DELETE CASCADE,
			super_area_id INTEGER NOT NULL REFERENCES areas(id) ON DELETE RESTRICT,
			CONSTRAINT area_belongs_to_no_self CHECK (area_id <> super_area_id)
		)`},
	{"formation_belongs_to", `
		CREATE TABLE IF NOT EXISTS formation_belongs_to (
			formation_id       INTEGER PRIMARY KEY REFERENCES formations(id) ON DELETE CASCADE,
			area_id            INTEGER REFERENCES areas(id) ON DELETE RESTRICT,
			super_formation_id INTEGER REFERENCES formations(id) ON DELETE RESTRICT,
			CONSTRAINT formation_belongs_to_one_parent CHECK ((area_id IS NULL) <> (super_formation_id IS NULL)),
			CONSTRAINT formation_belongs_to_no_self CHECK (super_formation_id IS NULL OR super_formation_id <> formation_id)
		)`},
	{"climb_belongs_to", `
		CREATE TABLE IF NOT EXISTS climb_belongs_to (
			climb_id     INTEGER PRIMARY KEY REFERENCES climbs(id) ON DELETE CASCADE,
			area_id      INTEGER REFERENCES areas(id) ON DELETE RESTRICT,
			formation_id INTEGER REFERENCES formations(id) ON DELETE RESTRICT,
			CONSTRAINT climb_belongs_to_one_parent CHECK ((area_id IS NULL) <> (formation_id IS NULL))
		)`},
	{"change_log", `
		CREATE TABLE IF NOT EXISTS change_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_kind TEXT NOT NULL,
			entity_id   INTEGER NOT NULL,
			action      TEXT NOT NULL,
			actor       TEXT NOT NULL,
			payload     TEXT NOT NULL DEFAULT '{}',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},

	{"idx_area_belongs_to_super_area_id", `CREATE INDEX IF NOT EXISTS idx_area_belongs_to_super_area_id ON area_belongs_to(super_area_id)`},
	{"idx_formation_belongs_to_area_id", `CREATE INDEX IF NOT EXISTS idx_formation_belongs_to_area_id ON formation_belongs_to(area_id)`},
	{"idx_formation_belongs_to_super_formation_id", `CREATE INDEX IF NOT EXISTS idx_formation_belongs_to_super_formation_id ON formation_belongs_to(super_formation_id)`},
	{"idx_climb_belongs_to_area_id", `CREATE INDEX IF NOT EXISTS idx_climb_belongs_to_area_id ON climb_belongs_to(area_id)`},
	{"idx_climb_belongs_to_formation_id", `CREATE INDEX IF NOT EXISTS idx_climb_belongs_to_formation_id ON climb_belongs_to(formation_id)`},
	{"idx_ascents_climb_id", `CREATE INDEX IF NOT EXISTS idx_ascents_climb_id ON ascents(climb_id)`},
	{"idx_change_log_entity", `CREATE INDEX IF NOT EXISTS idx_change_log_entity ON change_log(entity_kind, entity_id)`},
}
