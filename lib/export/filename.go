package export

import (
	"fmt"
	"path/filepath"
	"time"
)

const DefaultPrefix = "kenosha_election_results_all_wards"

// Filename builds a timestamped output path, <dir>/<prefix>_<YYYYMMDD_HHMMSS>.<ext>
func Filename(dir, prefix string, now time.Time, ext string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), ext))
}
