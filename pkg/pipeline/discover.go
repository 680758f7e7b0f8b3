package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/vbpmap/internal/matcher"
	"github.com/agentstation/vbpmap/pkg/errors"
)

// Discover lists the regular files directly inside dir whose names match
// an include glob and no exclude glob. Paths are returned sorted by name.
func Discover(dir string, include, exclude []string) ([]string, error) {
	sel, err := matcher.NewSelector(include, exclude)
	if err != nil {
		return nil, errors.NewConfigError("discover", "invalid file pattern", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewConfigError("discover", "cannot read data directory", errors.WrapIO("read", dir, err))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		// ~$ marks an Office lock file next to an open workbook.
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), "~$") {
			names = append(names, e.Name())
		}
	}

	selected := sel.Select(names...)
	paths := make([]string, len(selected))
	for i, name := range selected {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}
