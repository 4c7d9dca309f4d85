package mysql

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// nullIfEmpty maps blank optional text to NULL
func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// encodeAreas stores expertise areas as a JSON array column
func encodeAreas(areas []string) (string, error) {
	if areas == nil {
		areas = []string{}
	}
	b, err := json.Marshal(areas)
	return string(b), err
}

func decodeAreas(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
