package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinsuchenak/fqdngen/internal/model"
	"github.com/martinsuchenak/fqdngen/internal/normalize"
)

// fakeResolver answers forward lookups from a map and fails everything else.
type fakeResolver struct {
	hosts map[string][]string
	addrs map[string][]string
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if addrs, ok := f.hosts[host]; ok {
		return addrs, nil
	}
	return nil, errors.New("no such host")
}

func (f *fakeResolver) LookupAddr(_ context.Context, addr string) ([]string, error) {
	if names, ok := f.addrs[addr]; ok {
		return names, nil
	}
	return nil, errors.New("no such host")
}

func testSettings(concurrent bool) model.Settings {
	return model.Settings{
		DefaultDomain:      "example.com",
		InterfaceMap:       normalize.DefaultInterfaceMap,
		PreferInterfacePTR: true,
		Concurrent:         concurrent,
		Workers:            20,
		LookupTimeout:      time.Second,
	}
}

func TestRunEmptyBatch(t *testing.T) {
	c := New(&fakeResolver{}, nil, testSettings(false))
	_, err := c.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestRunSequential(t *testing.T) {
	resolver := &fakeResolver{
		hosts: map[string][]string{"sw1.example.com": {"10.0.0.1"}},
	}
	c := New(resolver, nil, testSettings(false))

	rows := []model.Row{
		{IPAddress: "10.0.0.1", DeviceHostname: "SW1.example.com"},
		{IPAddress: "10.0.0.2", DeviceHostname: "sw2", InterfaceName: "GigabitEthernet0/1"},
	}

	run, err := c.Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, run.Records, 2)
	assert.Equal(t, 2, run.TotalRows)
	assert.Equal(t, 2, run.Produced)
	assert.Equal(t, 0, run.Skipped)
	assert.NotEmpty(t, run.ID)

	// Sequential mode preserves input order.
	assert.Equal(t, "sw1.example.com", run.Records[0].FullName)
	assert.Equal(t, model.StatusMatches, run.Records[0].Forward.Status)
	assert.Equal(t, "sw2-gi-0-1.example.com", run.Records[1].FullName)
	assert.Equal(t, model.StatusNotFound, run.Records[1].Forward.Status)
}

func TestRunSkipsBadRows(t *testing.T) {
	c := New(&fakeResolver{}, nil, testSettings(false))

	rows := []model.Row{
		{IPAddress: "10.0.0.1", DeviceHostname: "sw1"},
		{IPAddress: "not-an-ip", DeviceHostname: "sw2"},
		{IPAddress: "10.0.0.3", DeviceHostname: "sw3", InterfaceName: "Wireless0"},
		{IPAddress: "10.0.0.4", DeviceHostname: "..."},
	}

	run, err := c.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Produced)
	assert.Equal(t, 3, run.Skipped)
	require.Len(t, run.Failures, 3)

	// Failures carry row-identifying context for the log trail.
	assert.Equal(t, "sw2", run.Failures[0].Hostname)
	assert.Equal(t, "not-an-ip", run.Failures[0].IPAddress)
	assert.Contains(t, run.Failures[1].Reason, "wireless")
}

func TestRunConcurrentMatchesSequential(t *testing.T) {
	resolver := &fakeResolver{hosts: map[string][]string{}, addrs: map[string][]string{}}

	var rows []model.Row
	for i := 0; i < 100; i++ {
		ip := fmt.Sprintf("10.0.%d.%d", i/250, i%250+1)
		host := fmt.Sprintf("sw%d", i)
		rows = append(rows, model.Row{IPAddress: ip, DeviceHostname: host})
		if i%3 == 0 {
			resolver.hosts[host+".example.com"] = []string{ip}
		}
		if i%4 == 0 {
			resolver.addrs[ip] = []string{host + "-gi-0-1.example.com."}
		}
	}

	seq, err := New(resolver, nil, testSettings(false)).Run(context.Background(), rows)
	require.NoError(t, err)
	conc, err := New(resolver, nil, testSettings(true)).Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, seq.Produced, conc.Produced)
	assert.Equal(t, seq.Skipped, conc.Skipped)
	assert.ElementsMatch(t, fullNames(seq.Records), fullNames(conc.Records))

	// Content must match record-by-record once order is factored out.
	sortRecords(seq.Records)
	sortRecords(conc.Records)
	for i := range seq.Records {
		assert.Equal(t, *seq.Records[i], *conc.Records[i])
	}
}

func fullNames(records []*model.Record) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.FullName
	}
	return names
}

func sortRecords(records []*model.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].FullName < records[j].FullName
	})
}
