package vault_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metamemory "github.com/marmos91/pdmvault/pkg/metadata/store/memory"
	"github.com/marmos91/pdmvault/pkg/vault"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
	"github.com/marmos91/pdmvault/pkg/version"
	versionmemory "github.com/marmos91/pdmvault/pkg/version/memory"
)

// ============================================================================
// Test Fixtures
// ============================================================================

type testFixture struct {
	assembler *vault.Assembler
	versions  *versionmemory.Store
	meta      *metamemory.Store
}

func newTestFixture(t *testing.T, opts vault.Options, files ...version.TrackedFile) *testFixture {
	t.Helper()

	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Millisecond
	}

	versions := versionmemory.New(files...)
	meta := metamemory.New()
	t.Cleanup(func() { _ = meta.Close() })

	return &testFixture{
		assembler: vault.New(versions, meta, opts),
		versions:  versions,
		meta:      meta,
	}
}

func defaultFiles() []version.TrackedFile {
	return []version.TrackedFile{
		{Filename: "bracket.sldprt", Status: version.StatusTracked, SizeBytes: 2048},
		{Filename: "housing.sldasm", Status: version.StatusModified, SizeBytes: 4096},
		{Filename: "notes.txt", Status: version.StatusUntracked, SizeBytes: 12},
	}
}

// ============================================================================
// ListFiles
// ============================================================================

func TestListFiles_DefaultDescription(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	records, err := f.assembler.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	for _, record := range records {
		assert.Equal(t, vault.DefaultDescription, record.Description,
			"files without metadata use the sentinel description")
		assert.Empty(t, record.LockedBy)
	}
}

func TestListFiles_PreservesListingOrder(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	records, err := f.assembler.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "bracket.sldprt", records[0].Filename)
	assert.Equal(t, "housing.sldasm", records[1].Filename)
	assert.Equal(t, "notes.txt", records[2].Filename)
}

func TestListFiles_MergesMetadata(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	_, err := f.assembler.UpdateDescription(ctx, "bracket.sldprt", "Mounting bracket, rev B")
	require.NoError(t, err)

	records, err := f.assembler.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Mounting bracket, rev B", records[0].Description)
	assert.Equal(t, version.StatusTracked, records[0].Status)
	assert.Equal(t, int64(2048), records[0].SizeBytes)
	assert.Equal(t, vault.DefaultDescription, records[1].Description)
}

func TestListFiles_EmptyVault(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true})

	records, err := f.assembler.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// ============================================================================
// GetFile
// ============================================================================

func TestGetFile_ReturnsRecord(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	_, err := f.assembler.UpdateDescription(ctx, "housing.sldasm", "Main housing assembly")
	require.NoError(t, err)

	record, err := f.assembler.GetFile(ctx, "housing.sldasm")
	require.NoError(t, err)

	assert.Equal(t, "housing.sldasm", record.Filename)
	assert.Equal(t, "Main housing assembly", record.Description)
	assert.Equal(t, version.StatusModified, record.Status)
	assert.Equal(t, int64(4096), record.SizeBytes)
}

func TestGetFile_UnknownFileFailsNotFound(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	_, err := f.assembler.GetFile(context.Background(), "ghost.sldprt")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGetFile_EmptyFilenameFailsValidation(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	_, err := f.assembler.GetFile(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

// ============================================================================
// UpdateDescription
// ============================================================================

func TestUpdateDescription_ReadYourWrite(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	record, err := f.assembler.UpdateDescription(context.Background(), "bracket.sldprt", "Steel bracket")
	require.NoError(t, err)

	// The returned record reflects the new description, not the prior
	// committed state.
	assert.Equal(t, "Steel bracket", record.Description)
}

func TestUpdateDescription_Overwrites(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	_, err := f.assembler.UpdateDescription(ctx, "bracket.sldprt", "first")
	require.NoError(t, err)
	_, err = f.assembler.UpdateDescription(ctx, "bracket.sldprt", "second")
	require.NoError(t, err)

	record, err := f.assembler.GetFile(ctx, "bracket.sldprt")
	require.NoError(t, err)
	assert.Equal(t, "second", record.Description)
}

func TestUpdateDescription_EmptyDescriptionFailsValidation(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	_, err := f.assembler.UpdateDescription(ctx, "bracket.sldprt", "keep me")
	require.NoError(t, err)

	_, err = f.assembler.UpdateDescription(ctx, "bracket.sldprt", "")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	// The failed write must not have touched the store.
	record, err := f.assembler.GetFile(ctx, "bracket.sldprt")
	require.NoError(t, err)
	assert.Equal(t, "keep me", record.Description)
}

func TestUpdateDescription_UntrackedFileFailsNotFound(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	_, err := f.assembler.UpdateDescription(context.Background(), "ghost.sldprt", "orphan")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUpdateDescription_UntrackedAllowedWhenPolicyOff(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: false}, defaultFiles()...)

	record, err := f.assembler.UpdateDescription(context.Background(), "ghost.sldprt", "planned part")
	require.NoError(t, err)

	assert.Equal(t, "planned part", record.Description)
	assert.Equal(t, version.StatusUntracked, record.Status)
}

// ============================================================================
// SearchFiles
// ============================================================================

func TestSearchFiles_SubstringMatchIsCaseInsensitive(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	records, err := f.assembler.SearchFiles(context.Background(), "SLD", "", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "bracket.sldprt", records[0].Filename)
	assert.Equal(t, "housing.sldasm", records[1].Filename)
}

func TestSearchFiles_StatusFilter(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	records, err := f.assembler.SearchFiles(context.Background(), "", version.StatusModified, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "housing.sldasm", records[0].Filename)
}

func TestSearchFiles_Limit(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	records, err := f.assembler.SearchFiles(context.Background(), "", "", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearchFiles_NoMatches(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	records, err := f.assembler.SearchFiles(context.Background(), "nothing-here", "", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// ============================================================================
// Retry Policy
// ============================================================================

func TestRetry_TransientOutageRecovers(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true, RetryAttempts: 3}, defaultFiles()...)

	// Two failed attempts, third succeeds.
	f.meta.FailNext(2)

	records, err := f.assembler.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRetry_ExhaustedAttemptsSurfaceUnavailable(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true, RetryAttempts: 3}, defaultFiles()...)

	f.meta.FailNext(3)

	_, err := f.assembler.ListFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsUnavailableError(err))
}

func TestRetry_NotFoundIsNotRetried(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	start := time.Now()
	_, err := f.assembler.GetFile(context.Background(), "ghost.sldprt")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Less(t, time.Since(start), 50*time.Millisecond,
		"a NotFound failure must surface without backoff delays")
}

func TestRetry_ContextCancellationAborts(t *testing.T) {
	f := newTestFixture(t, vault.Options{
		RequireTracked: true,
		RetryAttempts:  5,
		RetryBackoff:   time.Hour,
	}, defaultFiles()...)

	f.meta.SetFailing(true)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.assembler.ListFiles(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentUpdates_DistinctFiles(t *testing.T) {
	const workers = 16

	files := make([]version.TrackedFile, workers)
	for i := range files {
		files[i] = version.TrackedFile{
			Filename: fmt.Sprintf("part-%02d.sldprt", i),
			Status:   version.StatusTracked,
		}
	}
	f := newTestFixture(t, vault.Options{RequireTracked: true}, files...)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.assembler.UpdateDescription(ctx,
				fmt.Sprintf("part-%02d.sldprt", i),
				fmt.Sprintf("description %d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	records, err := f.assembler.ListFiles(ctx)
	require.NoError(t, err)
	for i, record := range records {
		assert.Equal(t, fmt.Sprintf("description %d", i), record.Description)
	}
}

func TestConcurrentUpdates_SameFileLastWriteWins(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, desc := range []string{"writer X", "writer Y"} {
		wg.Add(1)
		go func(desc string) {
			defer wg.Done()
			_, err := f.assembler.UpdateDescription(ctx, "bracket.sldprt", desc)
			assert.NoError(t, err)
		}(desc)
	}
	wg.Wait()

	record, err := f.assembler.GetFile(ctx, "bracket.sldprt")
	require.NoError(t, err)
	assert.Contains(t, []string{"writer X", "writer Y"}, record.Description,
		"the surviving description is exactly one racer's value")
}
