package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		dbName   string
		expected string
	}{
		{
			name:     "no database name returns base unchanged",
			baseURL:  "postgres://u:p@localhost:5432/arena",
			expected: "postgres://u:p@localhost:5432/arena",
		},
		{
			name:     "appends name and sslmode",
			baseURL:  "postgres://u:p@localhost:5432",
			dbName:   "arena",
			expected: "postgres://u:p@localhost:5432/arena?sslmode=disable",
		},
		{
			name:     "trailing slash is trimmed",
			baseURL:  "postgres://u:p@localhost:5432/",
			dbName:   "arena",
			expected: "postgres://u:p@localhost:5432/arena?sslmode=disable",
		},
		{
			name:     "existing query parameters are kept",
			baseURL:  "postgres://u:p@localhost:5432?connect_timeout=5",
			dbName:   "arena",
			expected: "postgres://u:p@localhost:5432/arena?connect_timeout=5&sslmode=disable",
		},
		{
			name:     "explicit sslmode is respected",
			baseURL:  "postgres://u:p@db:5432?sslmode=require",
			dbName:   "arena",
			expected: "postgres://u:p@db:5432/arena?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
