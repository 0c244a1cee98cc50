package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/pdmvault/pkg/vault/errors"
	"github.com/marmos91/pdmvault/pkg/version"
	"github.com/marmos91/pdmvault/pkg/version/memory"
)

func TestListTrackedFiles_InsertionOrder(t *testing.T) {
	store := memory.New(
		version.TrackedFile{Filename: "b.sldprt", Status: version.StatusTracked},
		version.TrackedFile{Filename: "a.sldprt", Status: version.StatusModified},
	)
	store.Add(version.TrackedFile{Filename: "c.sldprt", Status: version.StatusUntracked})

	files, err := store.ListTrackedFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "b.sldprt", files[0].Filename)
	assert.Equal(t, "a.sldprt", files[1].Filename)
	assert.Equal(t, "c.sldprt", files[2].Filename)
}

func TestGetStatus(t *testing.T) {
	store := memory.New(
		version.TrackedFile{Filename: "a.sldprt", Status: version.StatusTracked},
	)

	status, err := store.GetStatus(context.Background(), "a.sldprt")
	require.NoError(t, err)
	assert.Equal(t, version.StatusTracked, status)

	store.SetStatus("a.sldprt", version.StatusModified)
	status, err = store.GetStatus(context.Background(), "a.sldprt")
	require.NoError(t, err)
	assert.Equal(t, version.StatusModified, status)
}

func TestGetStatus_UnknownFile(t *testing.T) {
	store := memory.New()

	_, err := store.GetStatus(context.Background(), "missing.sldprt")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSetFailing(t *testing.T) {
	store := memory.New(
		version.TrackedFile{Filename: "a.sldprt", Status: version.StatusTracked},
	)
	store.SetFailing(true)

	_, err := store.ListTrackedFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsUnavailableError(err))

	store.SetFailing(false)
	_, err = store.ListTrackedFiles(context.Background())
	require.NoError(t, err)
}
