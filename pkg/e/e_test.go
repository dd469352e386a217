package e

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestWrapError(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"deadline", fmt.Errorf("q: %w", context.DeadlineExceeded), ErrDeadline},
		{"canceled", context.Canceled, ErrCanceled},
		{"unique", &pgconn.PgError{Code: "23505"}, ErrUniqueViolation},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrInvalidInput},
		{"other pg", &pgconn.PgError{Code: "42P01"}, ErrInternal},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"unknown", errors.New("boom"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, WrapError(ctx, "op", tt.in), tt.want)
		})
	}

	assert.NoError(t, WrapError(ctx, "op", nil))
}

func TestWrapMongoError(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, WrapMongoError(ctx, "op", mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, WrapMongoError(ctx, "op", mongo.ErrClientDisconnected), ErrDependencyUnavailable)
	assert.ErrorIs(t, WrapMongoError(ctx, "op", context.DeadlineExceeded), ErrDeadline)
	assert.ErrorIs(t, WrapMongoError(ctx, "op", errors.New("boom")), ErrInternal)
	assert.NoError(t, WrapMongoError(ctx, "op", nil))
}

func TestErrInvalidCoordinates_IsInvalidInput(t *testing.T) {
	err := fmt.Errorf("op: %w", ErrInvalidCoordinates)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("title", "is required")
	v.Add("radiusKm", "must be a positive number")

	err := v.OrNil()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, v.Has("radiusKm"))
	assert.False(t, v.Has("message"))
	assert.Equal(t, "validation failed: title: is required; radiusKm: must be a positive number", err.Error())
}
