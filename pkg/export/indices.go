package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"wikicat/pkg/codec"
)

const dirListName = "dir_list.index"

// WriteDirIndices writes a dir_list.index in the destination root listing its
// digit-named immediate entries (the shard directories), then one inside each
// subdirectory listing the numeric category-file stems it contains. Entries
// are written in ascending numeric order so index bytes are stable across
// runs and filesystems.
func WriteDirIndices(dest string) error {
	if err := writeDirList(dest); err != nil {
		return err
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return fmt.Errorf("failed to read destination directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := writeDirList(filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func writeDirList(dir string) error {
	values, err := digitStems(dir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, dirListName)
	if err := os.WriteFile(path, codec.EncodeIndex(values), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// digitStems collects the integer values of entries whose name stem (before
// the first dot) is all digits. Non-numeric entries like run_info.json or
// index.html are skipped.
func digitStems(dir string) ([]uint32, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var values []uint32
	for _, entry := range entries {
		stem, _, _ := strings.Cut(entry.Name(), ".")
		v, err := strconv.ParseUint(stem, 10, 32)
		if err != nil {
			continue
		}
		values = append(values, uint32(v))
	}

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values, nil
}
