package retention

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// LocalFileArchiver writes expired complaints as JSONL files to a local
// directory. This is the default archive driver.
//
// Directory structure:
//
//	{basePath}/complaints/2026-08-27T15-04-05Z.jsonl[.gz]
type LocalFileArchiver struct {
	basePath string
	compress bool
}

// NewLocalFileArchiver creates a file-based archiver. If basePath is empty,
// it defaults to "~/.swapdesk/archive".
func NewLocalFileArchiver(basePath string, compress bool) *LocalFileArchiver {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			basePath = "/tmp/swapdesk/archive"
		} else {
			basePath = filepath.Join(home, ".swapdesk", "archive")
		}
	}
	return &LocalFileArchiver{basePath: basePath, compress: compress}
}

// Archive writes the records as one JSONL file and returns its path.
func (a *LocalFileArchiver) Archive(_ context.Context, records []ArchivedComplaint) (string, error) {
	dir := filepath.Join(a.basePath, "complaints")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	filename := time.Now().UTC().Format("2006-01-02T15-04-05Z") + ".jsonl"
	if a.compress {
		filename += ".gz"
	}
	fpath := filepath.Join(dir, filename)

	f, err := os.Create(fpath)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if a.compress {
		gw := gzip.NewWriter(f)
		defer gw.Close()
		enc = json.NewEncoder(gw)
	}

	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("encode complaint %s: %w", rec.Complaint.ID, err)
		}
	}

	log.Debug().
		Str("path", fpath).
		Int("count", len(records)).
		Msg("Archived complaints to local file")

	return fpath, nil
}
