package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"dantechat/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// PropertyStore handles read-only queries over the property listing table.
// It runs on SQLite by default and on PostgreSQL when configured.
type PropertyStore struct {
	db     *sqlx.DB
	driver string
	limit  int
}

// NewPropertyStore opens the property database and prepares the schema.
func NewPropertyStore(driver, dsn string, maxConn, maxIdleConn, limit int) (*PropertyStore, error) {
	if driver == "postgres" {
		// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
		if !strings.Contains(dsn, "?") {
			dsn += "?prefer_simple_protocol=true"
		} else {
			dsn += "&prefer_simple_protocol=true"
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)

	if driver == "sqlite3" {
		if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set journal mode: %w", err)
		}
	}

	s := &PropertyStore{db: db, driver: driver, limit: limit}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *PropertyStore) Close() error {
	return s.db.Close()
}

func (s *PropertyStore) ensureSchema() error {
	idCol := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		idCol = "id BIGSERIAL PRIMARY KEY"
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS properties (
			%s,
			title TEXT NOT NULL,
			neighborhood TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL DEFAULT 0,
			rooms INTEGER NOT NULL DEFAULT 0,
			sqm REAL NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			operacion TEXT NOT NULL DEFAULT '',
			tipo TEXT NOT NULL DEFAULT '',
			address TEXT,
			age_years INTEGER,
			condition TEXT,
			amenities TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`, idCol)

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create properties table: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price)`); err != nil {
		return fmt.Errorf("failed to create price index: %w", err)
	}
	return nil
}

// LoadFeed replaces the property table with the contents of a JSON listing
// feed. Existing rows are dropped; the load runs in one transaction.
func (s *PropertyStore) LoadFeed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read feed %s: %w", path, err)
	}

	var props []model.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return 0, fmt.Errorf("failed to decode feed %s: %w", path, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM properties`); err != nil {
		return 0, fmt.Errorf("failed to clear properties: %w", err)
	}

	insert := s.db.Rebind(`
		INSERT INTO properties (title, neighborhood, price, rooms, sqm, description, operacion, tipo, address, age_years, condition, amenities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range props {
		if _, err := stmt.ExecContext(ctx,
			p.Title, p.Neighborhood, p.Price, p.Rooms, p.Sqm, p.Description,
			p.Operacion, p.Tipo, p.Address, p.AgeYears, p.Condition, p.Amenities,
		); err != nil {
			return 0, fmt.Errorf("failed to insert %q: %w", p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit feed load: %w", err)
	}
	return len(props), nil
}

const propertyColumns = `id, title, neighborhood, price, rooms, sqm, description, operacion, tipo, address, age_years, condition, amenities, created_at`

// Search returns listings matching the filter set, ascending by price and
// capped at the configured row limit. An empty filter set matches everything.
func (s *PropertyStore) Search(ctx context.Context, filters *model.Filters) ([]model.Property, error) {
	whereClauses := []string{}
	args := []interface{}{}

	if filters != nil {
		if filters.Neighborhood != nil {
			whereClauses = append(whereClauses, "LOWER(neighborhood) LIKE LOWER(?)")
			args = append(args, "%"+*filters.Neighborhood+"%")
		}
		if filters.MinPrice != nil {
			whereClauses = append(whereClauses, "price >= ?")
			args = append(args, *filters.MinPrice)
		}
		if filters.MaxPrice != nil {
			whereClauses = append(whereClauses, "price <= ?")
			args = append(args, *filters.MaxPrice)
		}
		if filters.MinRooms != nil {
			whereClauses = append(whereClauses, "rooms >= ?")
			args = append(args, *filters.MinRooms)
		}
		if filters.Operacion != nil {
			whereClauses = append(whereClauses, "LOWER(operacion) LIKE LOWER(?)")
			args = append(args, "%"+*filters.Operacion+"%")
		}
		if filters.Tipo != nil {
			whereClauses = append(whereClauses, "LOWER(tipo) LIKE LOWER(?)")
			args = append(args, "%"+*filters.Tipo+"%")
		}
		if filters.MinSqm != nil {
			whereClauses = append(whereClauses, "sqm >= ?")
			args = append(args, *filters.MinSqm)
		}
		if filters.MaxSqm != nil {
			whereClauses = append(whereClauses, "sqm <= ?")
			args = append(args, *filters.MaxSqm)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM properties", propertyColumns)
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY price ASC LIMIT ?"
	args = append(args, s.limit)

	var properties []model.Property
	err := s.db.SelectContext(ctx, &properties, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	return properties, nil
}

// GetByID retrieves a single property by its identifier
func (s *PropertyStore) GetByID(ctx context.Context, id int64) (*model.Property, error) {
	var p model.Property
	query := s.db.Rebind(fmt.Sprintf("SELECT %s FROM properties WHERE id = ?", propertyColumns))
	err := s.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &p, nil
}

// FindByTitle returns the first property whose title contains the given
// fragment, case-insensitively. Used to resolve detail follow-ups.
func (s *PropertyStore) FindByTitle(ctx context.Context, title string) (*model.Property, error) {
	var p model.Property
	query := s.db.Rebind(fmt.Sprintf(
		"SELECT %s FROM properties WHERE LOWER(title) LIKE LOWER(?) ORDER BY id LIMIT 1", propertyColumns))
	err := s.db.GetContext(ctx, &p, query, "%"+title+"%")
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find property by title: %w", err)
	}
	return &p, nil
}

// DistinctNeighborhoods returns the known neighborhood names, lowercased and sorted
func (s *PropertyStore) DistinctNeighborhoods(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "neighborhood")
}

// DistinctTipos returns the known property types, lowercased and sorted
func (s *PropertyStore) DistinctTipos(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "tipo")
}

// DistinctOperaciones returns the known operation types, lowercased and sorted
func (s *PropertyStore) DistinctOperaciones(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "operacion")
}

// Titles returns every listing title, used to resolve which property a prior
// bot response referred to.
func (s *PropertyStore) Titles(ctx context.Context) ([]string, error) {
	var titles []string
	if err := s.db.SelectContext(ctx, &titles, `SELECT title FROM properties WHERE title <> '' ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	return titles, nil
}

func (s *PropertyStore) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT LOWER(%s) FROM properties WHERE %s <> '' ORDER BY 1", column, column)
	var values []string
	if err := s.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	return values, nil
}
