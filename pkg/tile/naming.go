package tile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DirTimeLayout is the timestamp layout used in tile directory names
const DirTimeLayout = "2006-01-02_03;04;05"

// SplitName splits a file path into directory, base name without extension, and extension
func SplitName(path string) (dir, base, ext string) {
	dir = filepath.Dir(path)
	name := filepath.Base(path)
	ext = filepath.Ext(name)
	base = strings.TrimSuffix(name, ext)
	return dir, base, ext
}

// DirName returns the name of the directory holding the tiles of one run,
// e.g. "diagram (2024-03-01_04;05;06)"
func DirName(base string, t time.Time) string {
	return fmt.Sprintf("%s (%s)", base, t.Format(DirTimeLayout))
}

// DisambiguatedDirName appends a counter to a directory name taken by an earlier run.
// n <= 1 returns name unchanged.
func DisambiguatedDirName(name string, n int) string {
	if n <= 1 {
		return name
	}
	return fmt.Sprintf("%s #%d", name, n)
}

// FileName returns the file name of the tile with the given 1-based sequence number.
// Numbers are zero padded to the width of total so the files sort in order.
func FileName(base, ext string, seq, total int) string {
	digits := len(strconv.Itoa(total))
	return fmt.Sprintf("%s-%0*d%s", base, digits, seq, ext)
}
