package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestgate/guestgate/domain/entity"
)

const header = "timestamp,fullname,email,idNumber,idType,requestType"

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generatedData", "requests.csv")
	repo := NewAccessRequestRepository(path)

	err := repo.Append(context.Background(), entity.NewAccessRequest(at, "A", "a@b.com", "1", "ID", "visit"))
	require.NoError(t, err)

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, header, lines[0])
	assert.Equal(t, `"2024-05-01T12:00:00.000Z","A","a@b.com","1","ID","visit"`, lines[1])
	assert.Equal(t, path, repo.Path())
}

func TestAppend_NRowsOneHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.csv")
	repo := NewAccessRequestRepository(path)

	const n = 5
	for i := 0; i < n; i++ {
		req := entity.NewAccessRequest(at.Add(time.Duration(i)*time.Second), fmt.Sprintf("user %d", i), "u@example.com", "42", "passport", "visit")
		require.NoError(t, repo.Append(context.Background(), req))
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, n+1)
	assert.Equal(t, entity.AccessRequestHeader, records[0])
	for _, rec := range records[1:] {
		assert.Len(t, rec, 6)
	}

	for _, line := range readLines(t, path)[1:] {
		for _, field := range strings.Split(line, ",") {
			assert.True(t, strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`), "field %s is not quoted", field)
		}
	}
}

func TestAppend_EscapesQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.csv")
	repo := NewAccessRequestRepository(path)

	require.NoError(t, repo.Append(context.Background(), entity.NewAccessRequest(at, `Jane "JJ" Doe`, "", "", "", "")))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, `"2024-05-01T12:00:00.000Z","Jane ""JJ"" Doe","","","",""`, lines[1])
}

func TestAppend_ExistingFileKeepsSingleHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n"), 0o644))

	repo := NewAccessRequestRepository(path)
	require.NoError(t, repo.Append(context.Background(), entity.NewAccessRequest(at, "A", "a@b.com", "1", "ID", "visit")))

	lines := readLines(t, path)
	assert.Len(t, lines, 2)
	assert.Equal(t, header, lines[0])
}

func TestAppend_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.csv")
	repo := NewAccessRequestRepository(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(context.Background(), entity.NewAccessRequest(at, fmt.Sprintf("user %d", i), "", "", "", "")))
		}(i)
	}
	wg.Wait()

	lines := readLines(t, path)
	assert.Len(t, lines, 21)
	assert.Equal(t, header, lines[0])
}

func TestAppend_Failure(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should be
	path := filepath.Join(dir, "requests.csv")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := NewAccessRequestRepository(path).Append(context.Background(), entity.NewAccessRequest(at, "A", "", "", "", ""))
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `""`, Quote(""))
	assert.Equal(t, `"a,b"`, Quote("a,b"))
	assert.Equal(t, `"O""Brien"`, Quote(`O"Brien`))
}
