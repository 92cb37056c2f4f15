package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDescribeSQL(t *testing.T) {
	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{`SELECT * FROM "quiz_attempts" WHERE quiz_id = $1`, "SELECT", "quiz_attempts"},
		{`INSERT INTO "enrollments" ("id") VALUES ($1)`, "INSERT", "enrollments"},
		{`UPDATE "lesson_progress" SET is_unlocked = true`, "UPDATE", "lesson_progress"},
		{``, "UNKNOWN", "unknown"},
	}
	for _, tt := range tests {
		op, table := describeSQL(tt.sql)
		assert.Equal(t, tt.operation, op, tt.sql)
		assert.Equal(t, tt.table, table, tt.sql)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, isConnectionError(errors.New("read tcp: connection reset by peer")))
	assert.False(t, isConnectionError(gorm.ErrRecordNotFound))
}
