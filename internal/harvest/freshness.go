package harvest

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// freshnessFile holds the Unix time of the last successful fetch.
const freshnessFile = ".fetched-at"

// WriteFreshnessMarker records the current time as the last fetch time of dir.
func WriteFreshnessMarker(dir string) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(filepath.Join(dir, freshnessFile), []byte(ts), nodeschema.FilePerm)
}

// ReadFreshnessMarker returns the last fetch time of dir, or the zero time.
func ReadFreshnessMarker(dir string) time.Time {
	data, err := os.ReadFile(filepath.Join(dir, freshnessFile))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale reports whether dir was last fetched more than maxAge ago.
// A directory never fetched is stale.
func IsStale(dir string, maxAge time.Duration) bool {
	last := ReadFreshnessMarker(dir)
	if last.IsZero() {
		return true
	}
	return time.Since(last) > maxAge
}
