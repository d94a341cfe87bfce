package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/bwing/pkg/provider"
)

func TestStore_ListObjects(t *testing.T) {
	s := New("developer-task").Seed("b-wing/b.log", "other/x", "b-wing/a.txt")

	keys, err := s.ListObjects(context.Background(), "b-wing/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-wing/a.txt", "b-wing/b.log"}, keys)

	keys, err = s.ListObjects(context.Background(), "missing/")
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}

func TestStore_PutOverwrites(t *testing.T) {
	s := New("developer-task")
	ctx := context.Background()

	require.NoError(t, s.PutObject(ctx, "b-wing/a.txt", strings.NewReader("one"), provider.PutOptions{ContentType: "text/plain"}))
	require.NoError(t, s.PutObject(ctx, "b-wing/a.txt", strings.NewReader("two"), provider.PutOptions{}))

	obj, ok := s.Get("b-wing/a.txt")
	require.True(t, ok)
	assert.Equal(t, "two", string(obj.Body))
	assert.Empty(t, obj.ContentType)
	assert.Equal(t, []string{"b-wing/a.txt", "b-wing/a.txt"}, s.CallsFor("PutObject"))
}

func TestStore_DeleteObject(t *testing.T) {
	s := New("developer-task").Seed("b-wing/a.txt")
	ctx := context.Background()

	require.NoError(t, s.DeleteObject(ctx, "b-wing/a.txt"))
	require.NoError(t, s.DeleteObject(ctx, "b-wing/a.txt"))
	assert.Empty(t, s.Keys())
}

func TestStore_InjectedErrors(t *testing.T) {
	boom := errors.New("boom")
	s := New("developer-task").Seed("b-wing/a.txt")
	s.ListErr = provider.ErrAccessDenied
	s.PutErr = boom
	s.DeleteErrs = map[string]error{"b-wing/a.txt": provider.ErrThrottled}
	ctx := context.Background()

	_, err := s.ListObjects(ctx, "b-wing/")
	assert.ErrorIs(t, err, provider.ErrAccessDenied)

	err = s.PutObject(ctx, "b-wing/b.txt", strings.NewReader("x"), provider.PutOptions{})
	assert.ErrorIs(t, err, boom)
	_, ok := s.Get("b-wing/b.txt")
	assert.False(t, ok)

	err = s.DeleteObject(ctx, "b-wing/a.txt")
	var provErr *provider.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.ProviderMemory, provErr.Provider)
	assert.Equal(t, "b-wing/a.txt", provErr.Key)
	assert.ErrorIs(t, err, provider.ErrThrottled)
	assert.Equal(t, []string{"b-wing/a.txt"}, s.Keys())
}

func TestStore_CancelledContext(t *testing.T) {
	s := New("developer-task")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListObjects(ctx, "b-wing/")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Calls())
}
