package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding user skill profiles and generated
// project ideas.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "devspark.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in
// ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- User skills ---

// UpsertUserSkills inserts or replaces the skill profile for a user. The
// upsert overwrites every column; prior languages and frameworks are not
// merged with the new values.
func (s *Store) UpsertUserSkills(u UserSkills) error {
	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO user_skills (user_id, languages, frameworks, experience_level, interests, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			languages = excluded.languages,
			frameworks = excluded.frameworks,
			experience_level = excluded.experience_level,
			interests = excluded.interests,
			updated_at = excluded.updated_at`,
		u.UserID, u.Languages, u.Frameworks, u.ExperienceLevel, u.Interests,
		updatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetUserSkills returns the stored skill profile for a user.
func (s *Store) GetUserSkills(userID string) (UserSkills, error) {
	var u UserSkills
	var updatedAt string
	err := s.db.QueryRow(`
		SELECT user_id, languages, frameworks, experience_level, interests, updated_at
		FROM user_skills WHERE user_id = ?`, userID,
	).Scan(&u.UserID, &u.Languages, &u.Frameworks, &u.ExperienceLevel, &u.Interests, &updatedAt)
	if err == sql.ErrNoRows {
		return UserSkills{}, ErrNotFound
	}
	if err != nil {
		return UserSkills{}, err
	}
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return UserSkills{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	u.UpdatedAt = t
	return u, nil
}

// CountUserSkills returns the number of stored skill profiles.
func (s *Store) CountUserSkills() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM user_skills").Scan(&n)
	return n, err
}

// --- Project ideas ---

// SaveProjectIdea inserts one generated idea record.
func (s *Store) SaveProjectIdea(rec ProjectIdeaRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	aiGenerated := 0
	if rec.AIGenerated {
		aiGenerated = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO project_ideas (id, user_id, idea, difficulty, ai_generated, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Idea, rec.Difficulty, aiGenerated,
		createdAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListProjectIdeas returns up to limit idea records for a user, newest first.
func (s *Store) ListProjectIdeas(userID string, limit int) ([]ProjectIdeaRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, idea, difficulty, ai_generated, created_at
		FROM project_ideas WHERE user_id = ?
		ORDER BY created_at DESC, id LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ProjectIdeaRecord
	for rows.Next() {
		var rec ProjectIdeaRecord
		var aiGenerated int
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Idea, &rec.Difficulty, &aiGenerated, &createdAt); err != nil {
			return nil, err
		}
		rec.AIGenerated = aiGenerated != 0
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		rec.CreatedAt = t
		results = append(results, rec)
	}
	return results, rows.Err()
}
