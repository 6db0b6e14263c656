package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"youthpolicy/internal/types"
)

// Note: mockDBTX and the fixtures live in policy_repo_test.go.

// ============================================================
// HealthSampleRepository Tests
// ============================================================

func TestHealthSampleRepository_Insert_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHealthSampleRepository(db)

	errText := "upstream returned 503"
	var gotArgs []any
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), &types.HealthCheckSample{
		Source:         "youthcenter",
		IsHealthy:      false,
		StatusCode:     503,
		ResponseTimeMs: 850,
		Error:          &errText,
		CheckedAt:      repoNow,
	})

	require.NoError(t, err)
	require.Len(t, gotArgs, 6)
	assert.Equal(t, "youthcenter", gotArgs[0])
	assert.Equal(t, false, gotArgs[1])
	assert.Equal(t, 503, gotArgs[2])
	assert.Equal(t, int64(850), gotArgs[3])
	assert.Equal(t, &errText, gotArgs[4])
	assert.Equal(t, repoNow, gotArgs[5])
	db.AssertExpectations(t)
}

func TestHealthSampleRepository_Insert_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewHealthSampleRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := repo.Insert(context.Background(), &types.HealthCheckSample{Source: "youthcenter"})

	requireAppError(t, err, types.ErrCodeInternalDB)
}

// ============================================================
// NotificationLogRepository Tests
// ============================================================

func TestNotificationLogRepository_Insert_GeneratesID(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationLogRepository(db)

	var gotArgs []any
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), &types.NotificationLogEntry{
		PolicyID: "R001",
		UserID:   "user-1",
		Status:   types.DispatchStatusSent,
		SentAt:   repoNow,
	})

	require.NoError(t, err)
	require.Len(t, gotArgs, 6)
	id, ok := gotArgs[0].(string)
	require.True(t, ok)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr, "blank entry id must be replaced with a generated uuid")
	assert.Equal(t, "R001", gotArgs[1])
	assert.Equal(t, "user-1", gotArgs[2])
	assert.Equal(t, types.DispatchStatusSent, gotArgs[3])
	assert.Nil(t, gotArgs[4])
}

func TestNotificationLogRepository_Insert_KeepsProvidedID(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationLogRepository(db)

	reason := "DeviceNotRegistered"
	var gotArgs []any
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { gotArgs = args.Get(2).([]any) }).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), &types.NotificationLogEntry{
		ID:            "5f1c6f2e-8f1a-4c0e-9d7b-3a2b1c0d9e8f",
		PolicyID:      "R001",
		UserID:        "user-1",
		Status:        types.DispatchStatusFailed,
		FailureReason: &reason,
		SentAt:        repoNow,
	})

	require.NoError(t, err)
	assert.Equal(t, "5f1c6f2e-8f1a-4c0e-9d7b-3a2b1c0d9e8f", gotArgs[0])
	assert.Equal(t, types.DispatchStatusFailed, gotArgs[3])
	assert.Equal(t, &reason, gotArgs[4])
}

func TestNotificationLogRepository_Insert_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationLogRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := repo.Insert(context.Background(), &types.NotificationLogEntry{PolicyID: "R001"})

	requireAppError(t, err, types.ErrCodeInternalDB)
}
