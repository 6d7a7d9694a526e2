package source

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/c360studio/semindex/graph"
)

// BatchFile is a loaded batch together with where it came from.
type BatchFile struct {
	Path string
	// Hash is the sha256 of the file content, used to skip unchanged files
	Hash  string
	Batch graph.Batch
}

// LoadFile reads a batch file. Entity payloads carried as triples are decoded
// into records, so the returned batch only holds typed records.
func LoadFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes batch content read from path.
func Parse(path string, data []byte) (*BatchFile, error) {
	var batch graph.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", path, err)
	}

	return &BatchFile{
		Path:  path,
		Hash:  Hash(data),
		Batch: batch.Decoded(),
	}, nil
}

// LoadAll resolves the patterns and loads every matching file. Files that fail
// to load are reported in the returned error map and do not stop the others.
func LoadAll(patterns []string) ([]*BatchFile, map[string]error, error) {
	paths, err := ResolveFiles(patterns)
	if err != nil {
		return nil, nil, err
	}

	var files []*BatchFile
	failed := make(map[string]error)
	for _, path := range paths {
		f, err := LoadFile(path)
		if err != nil {
			failed[path] = err
			continue
		}
		files = append(files, f)
	}
	return files, failed, nil
}

// Hash returns the hex sha256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
