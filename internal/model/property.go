package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Property represents a property listing. Records are bulk-loaded from the
// listing feed and read-only to the query engine afterwards.
type Property struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Neighborhood string    `json:"neighborhood" db:"neighborhood"`
	Price        float64   `json:"price" db:"price"`
	Rooms        int       `json:"rooms" db:"rooms"`
	Sqm          float64   `json:"sqm" db:"sqm"`
	Description  string    `json:"description" db:"description"`
	Operacion    string    `json:"operacion" db:"operacion"`
	Tipo         string    `json:"tipo" db:"tipo"`
	Address      *string   `json:"address,omitempty" db:"address"`
	AgeYears     *int      `json:"age_years,omitempty" db:"age_years"`
	Condition    *string   `json:"condition,omitempty" db:"condition"`
	Amenities    JSONArray `json:"amenities,omitempty" db:"amenities"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
