package store

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
	"github.com/zhouzirui/elyx-journey/backend/internal/service/generator"
)

const testProfile = `
member: {name: Rohan}
attributes:
  - {name: sleep, baseline: poor, target: good}
  - {name: nutrition, baseline: irregular, target: balanced}
simulation: {phases: 3, phase_days: 14, diagnostic_phases: [2]}
`

func generate(t *testing.T) *journey.Journey {
	t.Helper()
	p, err := profile.Parse([]byte(testProfile), profile.FormatYAML)
	require.NoError(t, err)
	j, err := generator.New(generator.Config{Seed: 7}, nil, nil).Generate(context.Background(), p)
	require.NoError(t, err)
	return j
}

func TestWriteReadRoundTrip(t *testing.T) {
	j := generate(t)
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "journey.json"))

	require.NoError(t, s.Write(context.Background(), j))
	got, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, j, got)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteIsStable(t *testing.T) {
	j := generate(t)
	dir := t.TempDir()
	a := NewFileStore(filepath.Join(dir, "a.json"))
	b := NewFileStore(filepath.Join(dir, "b.json"))

	require.NoError(t, a.Write(context.Background(), j))
	require.NoError(t, b.Write(context.Background(), j))

	first, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	second, err := os.ReadFile(b.Path())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriteOverwritesExisting(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "journey.json"))
	require.NoError(t, s.Write(context.Background(), &journey.Journey{MemberName: "First"}))
	require.NoError(t, s.Write(context.Background(), &journey.Journey{MemberName: "Second"}))

	got, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Second", got.MemberName)
}

func TestReadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := s.Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "read", storeErr.Op)
}

func TestReadCorruptFile(t *testing.T) {
	cases := map[string]string{
		"truncated": `{"member_name": "Rohan", "messages": [`,
		"no member": `{"seed": 1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "journey.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := NewFileStore(path).Read(context.Background())
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestExportJSONL(t *testing.T) {
	j := generate(t)
	dir := filepath.Join(t.TempDir(), "export")

	require.NoError(t, ExportJSONL(context.Background(), dir, j))

	assert.Equal(t, len(j.Messages), countLines(t, filepath.Join(dir, MessagesFile)))
	assert.Equal(t, len(j.Decisions), countLines(t, filepath.Join(dir, DecisionsFile)))
	assert.Equal(t, len(j.Tests), countLines(t, filepath.Join(dir, TestsFile)))

	f, err := os.Open(filepath.Join(dir, MessagesFile))
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var first journey.Message
	require.NoError(t, sonic.Unmarshal(scanner.Bytes(), &first))
	assert.Equal(t, j.Messages[0], first)

	data, err := os.ReadFile(filepath.Join(dir, MetricsFile))
	require.NoError(t, err)
	var metrics journey.Metrics
	require.NoError(t, sonic.Unmarshal(data, &metrics))
	assert.Equal(t, j.Metrics, metrics)
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	require.NoError(t, scanner.Err())
	return n
}
