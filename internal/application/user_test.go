package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"led-detector/internal/domain/entity"
	"led-detector/internal/infrastructure/storage"
)

func TestUserService_BeginDetectAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginDetect(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateAwaitingPhoto)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	stored, err := svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, stored.State)
}

func TestUserService_StartProcessingRejectsSecondFrame(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.StartProcessing(ctx, 3, 30)
	require.NoError(t, err)
	require.True(t, user.Busy())

	_, err = svc.StartProcessing(ctx, 3, 30)
	require.ErrorIs(t, err, ErrUserBusy)

	user, err = svc.Finish(ctx, 3, 30)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	_, err = svc.StartProcessing(ctx, 3, 30)
	require.NoError(t, err)
}
