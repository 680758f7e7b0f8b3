// Package manifest records the identity of a run's input files so an
// external cache can tell whether a rerun would see different inputs.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/agentstation/vbpmap/pkg/errors"
)

// Entry describes one input file.
type Entry struct {
	Name    string    `json:"name" yaml:"name"`
	ModTime time.Time `json:"mtime" yaml:"mtime"`
	Size    int64     `json:"size" yaml:"size"`
}

// Document is the persisted form of a manifest. Files are the source
// files of a run; Reference holds the catalogs and dictionary the sources
// were reconciled against. Fingerprint covers Files only.
type Document struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	Files       []Entry   `json:"files" yaml:"files"`
	Reference   []Entry   `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// Matches reports whether d and other describe the same source and
// reference files.
func (d Document) Matches(other Document) bool {
	return !Changed(d.Files, other.Files) && !Changed(d.Reference, other.Reference)
}

// Stat returns the entry for one path. The name is the base name, so a
// manifest survives moving the data directory.
func Stat(path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, errors.WrapIO("stat", path, err)
	}
	return Entry{
		Name:    filepath.Base(path),
		ModTime: info.ModTime().UTC(),
		Size:    info.Size(),
	}, nil
}

// Build stats every path and returns the entries sorted by name. The
// first path that cannot be stat'd fails the build.
func Build(paths []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		e, err := Stat(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	Sort(entries)
	return entries, nil
}

// Sort orders entries by name, then size.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Size < entries[j].Size
	})
}

// Fingerprint returns a hex SHA-256 digest of the entries. The digest does
// not depend on the order of entries.
func Fingerprint(entries []Entry) string {
	sorted := append([]Entry(nil), entries...)
	Sort(sorted)

	h := sha256.New()
	for _, e := range sorted {
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", e.Name, e.ModTime.UnixNano(), e.Size)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Changed reports whether two manifests differ in any file's name,
// modification time or size.
func Changed(prev, cur []Entry) bool {
	return Fingerprint(prev) != Fingerprint(cur)
}

// New builds a Document for source entries and optional reference entries.
func New(entries []Entry, reference ...Entry) Document {
	return Document{
		GeneratedAt: time.Now().UTC(),
		Fingerprint: Fingerprint(entries),
		Files:       entries,
		Reference:   reference,
	}
}

// Read decodes a Document written by Write.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.WrapParse("json", "manifest", err)
	}
	return doc, nil
}

// ReadFile decodes the Document stored at path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.WrapIO("write", "manifest", err)
	}
	return nil
}
