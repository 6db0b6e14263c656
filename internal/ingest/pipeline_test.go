package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youthpolicy/internal/types"
)

// --- Test Doubles ---

// fakeFetcher serves a fixed set of pages and can fail a specific page.
type fakeFetcher struct {
	pages    map[int]*PolicyPage
	pageSize int
	failPage int
	calls    []int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageIndex int) (*PolicyPage, error) {
	f.calls = append(f.calls, pageIndex)
	if f.failPage != 0 && pageIndex == f.failPage {
		return nil, types.NewAppError(types.ErrCodeUpstreamUnavailable, "upstream returned 503", nil)
	}
	if page, ok := f.pages[pageIndex]; ok {
		return page, nil
	}
	return &PolicyPage{PageIndex: pageIndex}, nil
}

func (f *fakeFetcher) PageSize() int { return f.pageSize }

// fakeWriter records upserts in memory, keyed by policy id.
type fakeWriter struct {
	stored  map[string]*types.Policy
	failIDs map[string]bool
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{stored: make(map[string]*types.Policy), failIDs: make(map[string]bool)}
}

func (w *fakeWriter) Upsert(ctx context.Context, p *types.Policy) (bool, error) {
	if w.failIDs[p.ID] {
		return false, types.NewAppError(types.ErrCodeInternalDB, "simulated write failure", nil)
	}
	_, exists := w.stored[p.ID]
	w.stored[p.ID] = p
	return !exists, nil
}

func validRecord(id string) UpstreamPolicy {
	return UpstreamPolicy{
		BizID:        id,
		Title:        "청년 월세 지원 " + id,
		Summary:      "무주택 청년 대상 월세 지원",
		CategoryCode: "023020",
		Locality:     "서울특별시",
		ApplyPeriod:  "2024.01.01~2024.12.31",
		ApplyURL:     "https://example.org/apply/" + id,
	}
}

func newTestSyncer(t *testing.T, fetcher PageFetcher, store PolicyWriter) *Syncer {
	t.Helper()
	regions, err := NewRegionResolver()
	require.NoError(t, err)
	return NewSyncer(SyncerConfig{
		APIKey:  types.SecretString("test-key"),
		Fetcher: fetcher,
		Store:   store,
		Regions: regions,
	})
}

// --- Tests ---

func TestSync_MissingAPIKeyIsPreconditionError(t *testing.T) {
	fetcher := &fakeFetcher{pageSize: 10}
	syncer := NewSyncer(SyncerConfig{
		Fetcher: fetcher,
		Store:   newFakeWriter(),
	})

	_, err := syncer.Sync(context.Background())

	require.Error(t, err)
	appErr := &types.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodePreconditionCredentials, appErr.Code)
	assert.Empty(t, fetcher.calls, "no network activity before the precondition check")
}

func TestSync_SinglePage(t *testing.T) {
	fetcher := &fakeFetcher{
		pageSize: 10,
		pages: map[int]*PolicyPage{
			1: {TotalCount: 2, Policies: []UpstreamPolicy{validRecord("R001"), validRecord("R002")}},
		},
	}
	writer := newFakeWriter()
	syncer := newTestSyncer(t, fetcher, writer)

	result, err := syncer.Sync(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, []int{1}, fetcher.calls)

	p := writer.stored["R001"]
	require.NotNil(t, p)
	assert.Equal(t, types.CategoryHousing, p.Category)
	assert.Equal(t, types.RegionSeoul, p.Region)
	require.NotNil(t, p.StartAt)
	require.NotNil(t, p.EndAt)
	assert.False(t, p.IsAlwaysOpen)
	assert.NotEmpty(t, p.Detail, "raw record kept as detail blob")
}

func TestSync_PaginatesUntilTotalCovered(t *testing.T) {
	fetcher := &fakeFetcher{
		pageSize: 2,
		pages: map[int]*PolicyPage{
			1: {TotalCount: 5, Policies: []UpstreamPolicy{validRecord("R001"), validRecord("R002")}},
			2: {TotalCount: 5, Policies: []UpstreamPolicy{validRecord("R003"), validRecord("R004")}},
			3: {TotalCount: 5, Policies: []UpstreamPolicy{validRecord("R005")}},
		},
	}
	writer := newFakeWriter()
	syncer := newTestSyncer(t, fetcher, writer)

	result, err := syncer.Sync(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.Inserted)
	assert.Equal(t, []int{1, 2, 3}, fetcher.calls)
}

func TestSync_Idempotent(t *testing.T) {
	fetcher := &fakeFetcher{
		pageSize: 10,
		pages: map[int]*PolicyPage{
			1: {TotalCount: 2, Policies: []UpstreamPolicy{validRecord("R001"), validRecord("R002")}},
		},
	}
	writer := newFakeWriter()
	syncer := newTestSyncer(t, fetcher, writer)

	first, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	second, err := syncer.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, writer.stored, 2)
}

func TestSync_BadRecordIsIsolated(t *testing.T) {
	missingID := validRecord("")
	fetcher := &fakeFetcher{
		pageSize: 10,
		pages: map[int]*PolicyPage{
			1: {TotalCount: 3, Policies: []UpstreamPolicy{validRecord("R001"), missingID, validRecord("R003")}},
		},
	}
	writer := newFakeWriter()
	syncer := newTestSyncer(t, fetcher, writer)

	result, err := syncer.Sync(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Errors)
}

func TestSync_WriteFailureIsIsolated(t *testing.T) {
	fetcher := &fakeFetcher{
		pageSize: 10,
		pages: map[int]*PolicyPage{
			1: {TotalCount: 3, Policies: []UpstreamPolicy{validRecord("R001"), validRecord("R002"), validRecord("R003")}},
		},
	}
	writer := newFakeWriter()
	writer.failIDs["R002"] = true
	syncer := newTestSyncer(t, fetcher, writer)

	result, err := syncer.Sync(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Errors)
	assert.NotContains(t, writer.stored, "R002")
}

func TestSync_PageFetchFailureAbortsRun(t *testing.T) {
	fetcher := &fakeFetcher{
		pageSize: 2,
		failPage: 2,
		pages: map[int]*PolicyPage{
			1: {TotalCount: 4, Policies: []UpstreamPolicy{validRecord("R001"), validRecord("R002")}},
		},
	}
	writer := newFakeWriter()
	syncer := newTestSyncer(t, fetcher, writer)

	result, err := syncer.Sync(context.Background())

	// The abort is reported in the result, not raised.
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 2, result.Inserted, "partial counts preserved")
	assert.Equal(t, []int{1, 2}, fetcher.calls, "no page fetched after the failure")
}

func TestSync_EmptyFirstPageStops(t *testing.T) {
	fetcher := &fakeFetcher{
		pageSize: 10,
		pages: map[int]*PolicyPage{
			1: {TotalCount: 0},
		},
	}
	syncer := newTestSyncer(t, fetcher, newFakeWriter())

	result, err := syncer.Sync(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.Total)
}

func TestNormalize_OptionalFields(t *testing.T) {
	syncer := newTestSyncer(t, &fakeFetcher{pageSize: 10}, newFakeWriter())

	rec := validRecord("R010")
	rec.Summary = "   "
	rec.ApplyURL = "-"
	rec.ApplyPeriod = "상시모집"

	p, err := syncer.normalize(&rec)

	require.NoError(t, err)
	assert.Nil(t, p.Summary, "blank summary becomes nil")
	assert.Nil(t, p.ApplyURL, `placeholder "-" becomes nil`)
	assert.True(t, p.IsAlwaysOpen)
	assert.Nil(t, p.StartAt)
	assert.Nil(t, p.EndAt)
}

func TestNormalize_MissingTitle(t *testing.T) {
	syncer := newTestSyncer(t, &fakeFetcher{pageSize: 10}, newFakeWriter())

	rec := validRecord("R011")
	rec.Title = "  "

	_, err := syncer.normalize(&rec)
	require.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "R011")
}
