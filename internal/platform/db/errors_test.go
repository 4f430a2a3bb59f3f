package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsConstraintViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "permission_records_pkey"}
	assert.True(t, IsConstraintViolation(unique))
	assert.True(t, IsConstraintViolation(fmt.Errorf("insert record: %w", unique)))

	assert.False(t, IsConstraintViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsConstraintViolation(errors.New("boom")))
	assert.False(t, IsConstraintViolation(nil))
}
