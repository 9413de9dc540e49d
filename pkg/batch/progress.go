package batch

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/coasterranker/coastermap/internal/fsutil"
	"github.com/coasterranker/coastermap/pkg/constants"
	"github.com/coasterranker/coastermap/pkg/errors"
)

// Progress is the checkpoint written after every save.
type Progress struct {
	RunID           string    `json:"run_id"`
	LastCompletedID string    `json:"last_completed_id"`
	CompletedCount  int       `json:"completed_count"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoadProgress reads a progress file. A missing file yields nil.
func LoadProgress(path string) (*Progress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	var progress Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return &progress, nil
}

// Save writes the progress file atomically.
func (p *Progress) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.WrapResource("encode", "progress", "", err)
	}
	if err := fsutil.AtomicWriteFile(path, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// ClearProgress removes a progress file. A missing file is not an error.
func ClearProgress(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", path, err)
	}
	return nil
}

// resumeIndex returns the position of the first id still to fetch after
// last. When last is in ids, fetching continues right after it; otherwise
// numeric ids not above last are skipped.
func resumeIndex(ids []string, last string) int {
	if last == "" {
		return 0
	}
	for i, id := range ids {
		if id == last {
			return i + 1
		}
	}
	lastN, err := strconv.Atoi(last)
	if err != nil {
		return 0
	}
	for i, id := range ids {
		if n, err := strconv.Atoi(id); err != nil || n > lastN {
			return i
		}
	}
	return len(ids)
}
