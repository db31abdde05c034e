package db

var postgresSchema = []ddlStatement{
	{"areas", `
		CREATE TABLE IF NOT EXISTS areas (
			id    SERIAL PRIMARY KEY,
			names TEXT[] NOT NULL DEFAULT '{}'
		)`},
	{"formations", `
		CREATE TABLE IF NOT EXISTS formations (
			id            SERIAL PRIMARY KEY,
			names         TEXT[] NOT NULL DEFAULT '{}',
			location_lat  DOUBLE PRECISION,
			location_lon  DOUBLE PRECISION,
			location_srid INTEGER,
			CONSTRAINT formations_location_complete CHECK (
				(location_lat IS NULL AND location_lon IS NULL AND location_srid IS NULL)
				OR (location_lat IS NOT NULL AND location_lon IS NOT NULL AND location_srid IS NOT NULL)
			)
		)`},
	{"climbs", `
		CREATE TABLE IF NOT EXISTS climbs (
			id    SERIAL PRIMARY KEY,
			names TEXT[] NOT NULL DEFAULT '{}'
		)`},
	{"climbers", `
		CREATE TABLE IF NOT EXISTS climbers (
			id         SERIAL PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name  VARCHAR(100) NOT NULL
		)`},
	{"ascents", `
		CREATE TABLE IF NOT EXISTS ascents (
			id          SERIAL PRIMARY KEY,
			climb_id    INTEGER NOT NULL REFERENCES climbs(id) ON DELETE CASCADE,
			ascent_date DATERANGE
		)`},
	{"grade_types", `
		CREATE TABLE IF NOT EXISTS grade_types (
			id   SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			CONSTRAINT grade_types_name_key UNIQUE (name)
		)`},
	{"grades", `
		CREATE TABLE IF NOT EXISTS grades (
			id            SERIAL PRIMARY KEY,
			grade_type_id INTEGER NOT NULL REFERENCES grade_types(id) ON DELETE CASCADE,
			value         VARCHAR(50) NOT NULL,
			CONSTRAINT grades_type_value_key UNIQUE (grade_type_id, value)
		)`},
	{"climb_description_types", `
		CREATE TABLE IF NOT EXISTS climb_description_types (
			id   SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
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
			id          BIGSERIAL PRIMARY KEY,
			entity_kind VARCHAR(32) NOT NULL,
			entity_id   BIGINT NOT NULL,
			action      VARCHAR(32) NOT NULL,
			actor       VARCHAR(200) NOT NULL,
			payload     JSONB NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},

	{"idx_area_belongs_to_super_area_id", `CREATE INDEX IF NOT EXISTS idx_area_belongs_to_super_area_id ON area_belongs_to(super_area_id)`},
	{"idx_formation_belongs_to_area_id", `CREATE INDEX IF NOT EXISTS idx_formation_belongs_to_area_id ON formation_belongs_to(area_id)`},
	{"idx_formation_belongs_to_super_formation_id", `CREATE INDEX IF NOT EXISTS idx_formation_belongs_to_super_formation_id ON formation_belongs_to(super_formation_id)`},
	{"idx_climb_belongs_to_area_id", `CREATE INDEX IF NOT EXISTS idx_climb_belongs_to_area_id ON climb_belongs_to(area_id)`},
	{"idx_climb_belongs_to_formation_id", `CREATE INDEX IF NOT EXISTS idx_climb_belongs_to_formation_id ON climb_belongs_to(formation_id)`},
	{"idx_ascents_climb_id", `CREATE INDEX IF NOT EXISTS idx_ascents_climb_id ON ascents(climb_id)`},
	{"idx_change_log_entity", `CREATE INDEX IF NOT EXISTS idx_change_log_entity ON change_log(entity_kind, entity_id)`},

	// Backstop for the application-level chain walk.
	{"area_belongs_to_check_cycle", `
		CREATE OR REPLACE FUNCTION area_belongs_to_check_cycle() RETURNS trigger AS $$
		BEGIN
			IF EXISTS (
				WITH RECURSIVE chain(id) AS (
					SELECT NEW.super_area_id
					UNION
					SELECT abt.super_area_id
					FROM area_belongs_to abt
					JOIN chain ON abt.area_id = chain.id
				)
				SELECT 1 FROM chain WHERE chain.id = NEW.area_id
			) THEN
				RAISE EXCEPTION 'area % would become its own ancestor', NEW.area_id
					USING ERRCODE = 'check_violation', CONSTRAINT = 'area_belongs_to_no_cycle';
			END IF;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`},
	{"drop area_belongs_to_no_cycle", `DROP TRIGGER IF EXISTS area_belongs_to_no_cycle ON area_belongs_to`},
	{"area_belongs_to_no_cycle", `
		CREATE TRIGGER area_belongs_to_no_cycle
		BEFORE INSERT OR UPDATE ON area_belongs_to
		FOR EACH ROW EXECUTE FUNCTION area_belongs_to_check_cycle()`},
	{"formation_belongs_to_check_cycle", `
		CREATE OR REPLACE FUNCTION formation_belongs_to_check_cycle() RETURNS trigger AS $$
		BEGIN
			IF NEW.super_formation_id IS NOT NULL AND EXISTS (
				WITH RECURSIVE chain(id) AS (
					SELECT NEW.super_formation_id
					UNION
					SELECT fbt.super_formation_id
					FROM formation_belongs_to fbt
					JOIN chain ON fbt.formation_id = chain.id
					WHERE fbt.super_formation_id IS NOT NULL
				)
				SELECT 1 FROM chain WHERE chain.id = NEW.formation_id
			) THEN
				RAISE EXCEPTION 'formation % would become its own ancestor', NEW.formation_id
					USING ERRCODE = 'check_violation', CONSTRAINT = 'formation_belongs_to_no_cycle';
			END IF;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`},
	{"drop formation_belongs_to_no_cycle", `DROP TRIGGER IF EXISTS formation_belongs_to_no_cycle ON formation_belongs_to`},
	{"formation_belongs_to_no_cycle", `
		CREATE TRIGGER formation_belongs_to_no_cycle
		BEFORE INSERT OR UPDATE ON formation_belongs_to
		FOR EACH ROW EXECUTE FUNCTION formation_belongs_to_check_cycle()`},
}
