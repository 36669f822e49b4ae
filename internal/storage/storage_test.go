package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinsuchenak/fqdngen/internal/model"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fqdngen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() *model.Run {
	alive := true
	started := time.Now().UTC().Truncate(time.Second)
	return &model.Run{
		ID:              "0192aaaa-0000-7000-8000-000000000001",
		StartedAt:       started,
		CompletedAt:     started.Add(3 * time.Second),
		DurationSeconds: 3,
		TotalRows:       3,
		Produced:        2,
		Skipped:         1,
		Records: []*model.Record{
			{
				IPAddress: "10.0.0.1",
				Hostname:  "sw1",
				Domain:    "example.com",
				FullName:  "sw1.example.com",
				PTRRecord: "1.0.0.10.in-addr.arpa",
				Forward:   model.LookupResult{Status: model.StatusMatches, ExistingValue: "10.0.0.1"},
				Reverse:   model.LookupResult{Status: model.StatusNotFound},
				Reachable: &alive,
			},
			{
				IPAddress: "10.0.0.2",
				Hostname:  "sw2",
				Domain:    "example.com",
				FullName:  "sw2.example.com",
				PTRRecord: "2.0.0.10.in-addr.arpa",
				Forward:   model.LookupResult{Status: model.StatusNotFound},
				Reverse:   model.LookupResult{Status: model.StatusDiffers, ExistingValue: "other.example.com"},
			},
		},
		Failures: []model.RowFailure{
			{Hostname: "sw3", IPAddress: "bad-ip", Reason: "invalid IPv4 address"},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStorage(t)
	run := sampleRun()
	require.NoError(t, s.SaveRun(run))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, run.ID, got.ID)
	assert.True(t, run.StartedAt.Equal(got.StartedAt), "started_at mismatch: %v vs %v", run.StartedAt, got.StartedAt)
	assert.Equal(t, run.TotalRows, got.TotalRows)
	assert.Equal(t, run.Produced, got.Produced)
	assert.Equal(t, run.Skipped, got.Skipped)

	require.Len(t, got.Records, 2)
	recs := map[string]*model.Record{}
	for _, r := range got.Records {
		recs[r.FullName] = r
	}
	sw1 := recs["sw1.example.com"]
	require.NotNil(t, sw1)
	assert.Equal(t, model.StatusMatches, sw1.Forward.Status)
	assert.Equal(t, "10.0.0.1", sw1.Forward.ExistingValue)
	require.NotNil(t, sw1.Reachable)
	assert.True(t, *sw1.Reachable)

	sw2 := recs["sw2.example.com"]
	require.NotNil(t, sw2)
	assert.Equal(t, model.StatusDiffers, sw2.Reverse.Status)
	assert.Nil(t, sw2.Reachable)

	require.Len(t, got.Failures, 1)
	assert.Equal(t, "sw3", got.Failures[0].Hostname)
}

func TestGetRunMissing(t *testing.T) {
	s := openTestStorage(t)
	got, err := s.GetRun("no-such-run")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListRuns(t *testing.T) {
	s := openTestStorage(t)

	first := sampleRun()
	second := sampleRun()
	second.ID = "0192aaaa-0000-7000-8000-000000000002"
	second.StartedAt = first.StartedAt.Add(time.Minute)
	second.CompletedAt = second.StartedAt.Add(time.Second)

	require.NoError(t, s.SaveRun(first))
	require.NoError(t, s.SaveRun(second))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first, summaries only.
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Empty(t, runs[0].Records)
	assert.Equal(t, first.ID, runs[1].ID)
}
