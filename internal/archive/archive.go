package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const ext = ".json.zst"

// Archive compresses the report at srcPath into
// archiveDir/{session-id}.json.zst. Returns the archive path.
func Archive(sessionID, srcPath, archiveDir string) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("invalid session ID %q", sessionID)
	}

	destPath := ArchivePath(sessionID, archiveDir)

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Open returns a reader over the decompressed archive for sessionID.
// The caller must Close it.
func Open(sessionID, archiveDir string) (io.ReadCloser, error) {
	f, err := os.Open(ArchivePath(sessionID, archiveDir))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	decoder, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &reader{Decoder: decoder, f: f}, nil
}

type reader struct {
	*zstd.Decoder
	f *os.File
}

func (r *reader) Close() error {
	r.Decoder.Close()
	return r.f.Close()
}

// IsArchived returns true if an archive file exists for the given session ID.
func IsArchived(sessionID, archiveDir string) bool {
	_, err := os.Stat(ArchivePath(sessionID, archiveDir))
	return err == nil
}

// ArchivePath returns the deterministic archive path for a session ID.
func ArchivePath(sessionID, archiveDir string) string {
	return filepath.Join(archiveDir, sessionID+ext)
}
