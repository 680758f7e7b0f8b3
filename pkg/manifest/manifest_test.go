package manifest_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/manifest"
)

func writeFile(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := writeFile(t, dir, "vbp_2023.xlsx", "bbbb", ts)
	a := writeFile(t, dir, "vbp_2012.xlsx", "aa", ts.Add(time.Hour))

	entries, err := manifest.Build([]string{b, a})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "vbp_2012.xlsx", entries[0].Name)
	assert.Equal(t, int64(2), entries[0].Size)
	assert.True(t, entries[0].ModTime.Equal(ts.Add(time.Hour)))
	assert.Equal(t, "vbp_2023.xlsx", entries[1].Name)
}

func TestBuildMissingFile(t *testing.T) {
	_, err := manifest.Build([]string{filepath.Join(t.TempDir(), "missing.xlsx")})
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestFingerprint(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := manifest.Entry{Name: "a.xlsx", ModTime: ts, Size: 10}
	b := manifest.Entry{Name: "b.xlsx", ModTime: ts, Size: 20}

	fp := manifest.Fingerprint([]manifest.Entry{a, b})
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, manifest.Fingerprint([]manifest.Entry{b, a}), "order independent")

	touched := a
	touched.ModTime = ts.Add(time.Second)
	assert.True(t, manifest.Changed([]manifest.Entry{a, b}, []manifest.Entry{touched, b}))

	grown := b
	grown.Size++
	assert.True(t, manifest.Changed([]manifest.Entry{a, b}, []manifest.Entry{a, grown}))
	assert.True(t, manifest.Changed([]manifest.Entry{a, b}, []manifest.Entry{a}))
	assert.False(t, manifest.Changed([]manifest.Entry{a, b}, []manifest.Entry{b, a}))
}

func TestDocumentRoundTrip(t *testing.T) {
	entries := []manifest.Entry{{Name: "a.xlsx", ModTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Size: 1}}
	doc := manifest.New(entries)

	var buf bytes.Buffer
	require.NoError(t, manifest.Write(&buf, doc))
	assert.Contains(t, buf.String(), `"fingerprint"`)

	got, err := manifest.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.Fingerprint, got.Fingerprint)
	assert.False(t, manifest.Changed(entries, got.Files))
}

func TestDocumentMatches(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := []manifest.Entry{{Name: "vbp_2023.xlsx", ModTime: ts, Size: 10}}
	ref := manifest.Entry{Name: "lista_produtos.xlsx", ModTime: ts, Size: 30}

	doc := manifest.New(src, ref)
	assert.True(t, doc.Matches(manifest.New(src, ref)))

	edited := ref
	edited.ModTime = ts.Add(time.Minute)
	later := manifest.New(src, edited)
	assert.Equal(t, doc.Fingerprint, later.Fingerprint, "fingerprint covers sources only")
	assert.False(t, doc.Matches(later))

	assert.False(t, manifest.New(src).Matches(doc), "a manifest without reference entries is stale")
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	path := writeFile(t, dir, "municipios_pr.xlsx", "abc", ts)

	e, err := manifest.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "municipios_pr.xlsx", e.Name)
	assert.Equal(t, int64(3), e.Size)
	assert.True(t, e.ModTime.Equal(ts))

	_, err = manifest.Stat(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}

func TestReadInvalid(t *testing.T) {
	_, err := manifest.Read(bytes.NewBufferString("{not json"))
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.True(t, errors.As(err, &parseErr))
}
