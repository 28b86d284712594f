package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/quiz-auth/internal/domain/repository"
)

func TestMapWriteErr(t *testing.T) {
	assert.ErrorIs(t, mapWriteErr(pgx.ErrNoRows), repository.ErrEmailTaken)
	assert.ErrorIs(t, mapWriteErr(&pgconn.PgError{Code: uniqueViolation}), repository.ErrEmailTaken)

	boom := errors.New("connection reset")
	err := mapWriteErr(boom)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, repository.ErrEmailTaken)
}
