package preflight_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/bwing/pkg/preflight"
	"github.com/3leaps/bwing/pkg/provider"
	"github.com/3leaps/bwing/pkg/provider/memory"
)

func TestRun_PlanOnly(t *testing.T) {
	store := memory.New("developer-task")

	rep, err := preflight.Run(context.Background(), store, preflight.Spec{Mode: preflight.ModePlanOnly, Prefix: "b-wing/"})
	require.NoError(t, err)
	assert.Empty(t, rep.Results)
	assert.True(t, rep.OK())
	assert.Empty(t, store.Calls())
}

func TestRun_ReadSafe(t *testing.T) {
	store := memory.New("developer-task").Seed("b-wing/a.txt")

	rep, err := preflight.Run(context.Background(), store, preflight.Spec{Mode: preflight.ModeReadSafe, Prefix: "b-wing/"})
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, preflight.CapList, rep.Results[0].Capability)
	assert.True(t, rep.OK())
	assert.Empty(t, store.CallsFor("PutObject"))
}

func TestRun_ListDenied(t *testing.T) {
	store := memory.New("developer-task")
	store.ListErr = provider.ErrAccessDenied

	rep, err := preflight.Run(context.Background(), store, preflight.Spec{Mode: preflight.ModeWriteProbe, Prefix: "b-wing/"})
	require.Error(t, err)
	require.Len(t, rep.Results, 1)
	assert.False(t, rep.OK())
	assert.Equal(t, preflight.ErrCodeAccessDenied, rep.Results[0].ErrorCode)
	assert.Empty(t, store.CallsFor("PutObject"))
}

func TestRun_WriteProbe(t *testing.T) {
	store := memory.New("developer-task").Seed("b-wing/a.txt")

	rep, err := preflight.Run(context.Background(), store, preflight.Spec{Mode: preflight.ModeWriteProbe, Prefix: "b-wing/"})
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)
	assert.True(t, rep.OK())

	puts := store.CallsFor("PutObject")
	require.Len(t, puts, 1)
	assert.True(t, strings.HasPrefix(puts[0], "b-wing/_bwing/preflight-"), puts[0])
	assert.Equal(t, puts, store.CallsFor("DeleteObject"))

	// The probe object is gone; the seeded key is untouched.
	assert.Equal(t, []string{"b-wing/a.txt"}, store.Keys())
}

func TestRun_WriteDenied(t *testing.T) {
	store := memory.New("developer-task")
	store.PutErr = provider.ErrAccessDenied

	rep, err := preflight.Run(context.Background(), store, preflight.Spec{Mode: preflight.ModeWriteProbe, Prefix: "b-wing/"})
	require.Error(t, err)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, preflight.CapWrite, rep.Results[1].Capability)
	assert.False(t, rep.Results[1].Allowed)
	assert.Equal(t, "PutObject(probe)", rep.Results[1].Method)
	assert.Empty(t, store.CallsFor("DeleteObject"))
}
