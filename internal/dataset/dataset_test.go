package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "order_id,order_date,Customer Since,State,Region,category,Gender,age,Discount_Percent,total,month\n"

const validCSV = header +
	"000101,2020-10-01,2015-06-12,CA,West,Beauty,F,34,10,100.50,10\n" +
	"000102,10/15/2020,3/1/2019,NY,East,Men's Fashion,M,,0,300,Oct\n" +
	"000103,2021-02-03,2020-01-01,TX,South,Appliances,F,71,25.5,600,\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_ValidData(t *testing.T) {
	records, err := Parse(strings.NewReader(validCSV), "test")
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "000101", first.OrderID, "order_id keeps leading zeros")
	assert.Equal(t, time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC), first.OrderDate)
	assert.Equal(t, time.Date(2015, 6, 12, 0, 0, 0, 0, time.UTC), first.CustomerSince)
	assert.Equal(t, "CA", first.State)
	assert.Equal(t, "West", first.Region)
	assert.Equal(t, 34, first.Age)
	assert.True(t, first.HasAge)
	assert.Equal(t, 10.0, first.DiscountPercent)
	assert.Equal(t, 100.50, first.Total)
	assert.Equal(t, time.October, first.Month)

	second := records[1]
	assert.Equal(t, time.Date(2020, 10, 15, 0, 0, 0, 0, time.UTC), second.OrderDate)
	assert.False(t, second.HasAge)
	assert.Equal(t, time.October, second.Month)

	// empty month column falls back to the order date
	assert.Equal(t, time.February, records[2].Month)
}

func TestParse_HeaderMatching(t *testing.T) {
	csv := "\ufeffORDER_ID,Order Date,customer_since,state,region,Category,gender,Age,discount_percent,Total,Month,extra\n" +
		"7,2021-01-01,2020-01-01,CA,West,Beauty,F,30,0,10,1,ignored\n"

	records, err := Parse(strings.NewReader(csv), "test")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0].OrderID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantCol string
		wantRow int
	}{
		{name: "empty file", csv: ""},
		{name: "missing columns", csv: "order_id,order_date\n1,2020-01-01\n"},
		{
			name:    "bad order date",
			csv:     header + "1,not-a-date,2020-01-01,CA,West,Beauty,F,30,0,10,1\n",
			wantCol: ColOrderDate,
			wantRow: 1,
		},
		{
			name:    "bad customer since",
			csv:     header + "1,2020-01-01,yesterday,CA,West,Beauty,F,30,0,10,1\n",
			wantCol: ColCustomerSince,
			wantRow: 1,
		},
		{
			name:    "bad total",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,30,0,lots,1\n",
			wantCol: ColTotal,
			wantRow: 1,
		},
		{
			name:    "negative total",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,30,0,-5,1\n",
			wantCol: ColTotal,
			wantRow: 1,
		},
		{
			name:    "NaN total",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,30,0,NaN,1\n",
			wantCol: ColTotal,
			wantRow: 1,
		},
		{
			name:    "infinite total",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,30,0,+Inf,1\n",
			wantCol: ColTotal,
			wantRow: 1,
		},
		{
			name:    "infinite discount",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,30,-Inf,5,1\n",
			wantCol: ColDiscount,
			wantRow: 1,
		},
		{
			name:    "huge age",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,1e300,0,5,1\n",
			wantCol: ColAge,
			wantRow: 1,
		},
		{
			name:    "negative age",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,-3,0,5,1\n",
			wantCol: ColAge,
			wantRow: 1,
		},
		{
			name:    "fractional age",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,30.5,0,5,1\n",
			wantCol: ColAge,
			wantRow: 1,
		},
		{
			name:    "bad age on second row",
			csv:     header + "1,2020-01-01,2020-01-01,CA,West,Beauty,F,30,0,5,1\n2,2020-01-01,2020-01-01,CA,West,Beauty,F,old,0,5,1\n",
			wantCol: ColAge,
			wantRow: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.csv), "test.csv")
			require.Error(t, err)

			var loadErr *DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, "test.csv", loadErr.Source)
			assert.Equal(t, tt.wantCol, loadErr.Column)
			assert.Equal(t, tt.wantRow, loadErr.Row)
		})
	}
}

func TestParse_SpreadsheetAge(t *testing.T) {
	records, err := Parse(strings.NewReader(header+"1,2020-01-01,2020-01-01,CA,West,Beauty,F,43.0,0,5,1\n"), "test.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 43, records[0].Age)
	assert.True(t, records[0].HasAge)
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
		ok   bool
	}{
		{"1", time.January, true},
		{"12", time.December, true},
		{"13", 0, false},
		{"Mar", time.March, true},
		{"september", time.September, true},
		{"Oct-2020", time.October, true},
		{"", 0, false},
		{"Smarch", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMonth(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoader_MemoizesBySource(t *testing.T) {
	path := writeCSV(t, validCSV)
	loader := NewLoader()

	first, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.Cache().Size())

	other := writeCSV(t, header+"9,2021-01-01,2020-01-01,CA,West,Beauty,F,30,0,10,1\n")
	third, err := loader.Load(context.Background(), other)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 1, third.Len())
	assert.Equal(t, 2, loader.Cache().Size())
}

func TestLoader_InvalidateRereads(t *testing.T) {
	path := writeCSV(t, validCSV)
	loader := NewLoader()

	first, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, first.Len())

	require.NoError(t, os.WriteFile(path, []byte(header+"1,2021-01-01,2020-01-01,CA,West,Beauty,F,30,0,10,1\n"), 0o644))

	cached, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.Len(), "cached entry survives file changes")

	assert.True(t, loader.Invalidate(path))
	assert.False(t, loader.Invalidate(path))

	reloaded, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestLoader_URLSourceFetchedOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(validCSV))
	}))
	defer srv.Close()

	loader := NewLoader(WithHTTPClient(srv.Client()))
	for i := 0; i < 3; i++ {
		table, err := loader.Load(context.Background(), srv.URL+"/sales.csv")
		require.NoError(t, err)
		assert.Equal(t, 3, table.Len())
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoader_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	loader := NewLoader(WithHTTPClient(srv.Client()))

	sources := []string{
		srv.URL + "/missing.csv",
		filepath.Join(t.TempDir(), "missing.csv"),
		"",
	}
	for _, source := range sources {
		_, err := loader.Load(context.Background(), source)
		var loadErr *DataLoadError
		require.True(t, errors.As(err, &loadErr), "source %q", source)
		assert.Equal(t, source, loadErr.Source)
	}
	assert.Equal(t, 0, loader.Cache().Size(), "failed loads are not cached")
}

func TestLoader_CanceledCallerDoesNotFailOthers(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		w.Write([]byte(validCSV))
	}))
	defer srv.Close()
	source := srv.URL + "/sales.csv"

	loader := NewLoader(WithHTTPClient(srv.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := loader.Load(ctx, source)
		firstErr <- err
	}()
	<-started

	type result struct {
		table *Table
		err   error
	}
	second := make(chan result, 1)
	go func() {
		table, err := loader.Load(context.Background(), source)
		second <- result{table, err}
	}()
	// Let the second caller join the in-flight read.
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 3, res.table.Len())
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, loader.Cache().Size(), "the shared read is cached even though its first caller left")
}

type countingRecorder struct {
	loads, hits int
	lastErr     error
}

func (r *countingRecorder) LoadCompleted(_ string, _ int, _ time.Duration, err error) {
	r.loads++
	r.lastErr = err
}

func (r *countingRecorder) CacheHit(string) { r.hits++ }

func TestLoader_Recorder(t *testing.T) {
	path := writeCSV(t, validCSV)
	rec := &countingRecorder{}
	loader := NewLoader(WithRecorder(rec))

	_, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.loads)
	assert.Equal(t, 1, rec.hits)
	assert.NoError(t, rec.lastErr)
}

func TestCache_Purge(t *testing.T) {
	c := NewCache()
	c.Set("a", &Table{Source: "a"})
	c.Set("b", &Table{Source: "b"})
	require.Equal(t, 2, c.Size())

	c.Purge()
	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
