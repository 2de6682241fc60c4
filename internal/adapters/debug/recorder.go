// Package debug stores an audit artifact of every generation on disk for
// offline inspection.
package debug

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PabloGalante/linkpitch/internal/domain"
	"github.com/PabloGalante/linkpitch/internal/metrics"
	"github.com/PabloGalante/linkpitch/internal/observability"
)

// FileRecorder writes one JSON file per generation named
// {timestamp}_{contactId}.json. Writes for the same name overwrite each other.
type FileRecorder struct {
	dir     string
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewFileRecorder(dir string, m *metrics.Metrics) *FileRecorder {
	return &FileRecorder{
		dir:     dir,
		metrics: m,
		now:     time.Now,
	}
}

// Record implements domain.DebugRecorder. Errors are logged, never returned.
func (r *FileRecorder) Record(ctx context.Context, artifact domain.GenerationArtifact) {
	log := observability.LoggerFromContext(ctx).With("contact_id", artifact.ContactID)

	path, err := r.write(artifact)
	if err != nil {
		log.Warn("failed to save generation debug file", "error", err)
		r.metrics.ObserveDebugArtifact("failed")
		return
	}

	log.Debug("saved generation debug file", "path", path)
	r.metrics.ObserveDebugArtifact("written")
}

func (r *FileRecorder) write(artifact domain.GenerationArtifact) (string, error) {
	if artifact.Timestamp == "" {
		artifact.Timestamp = domain.ArtifactTimestamp(r.now())
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}

	path := filepath.Join(r.dir, FileName(artifact))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

var unsafeName = strings.NewReplacer("/", "_", `\`, "_", "..", "_")

// FileName is the artifact key: {timestamp}_{contactId}.json.
func FileName(artifact domain.GenerationArtifact) string {
	return artifact.Timestamp + "_" + unsafeName.Replace(string(artifact.ContactID)) + ".json"
}

// Nop discards artifacts.
type Nop struct{}

func (Nop) Record(context.Context, domain.GenerationArtifact) {}
