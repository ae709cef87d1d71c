package item

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxRecordBytes bounds a single JSONL record line.
const maxRecordBytes = 1 << 20

// LoadDataset reads canonical items for the requested tracks from
// <dir>/<version>/track<X>.jsonl files. A missing track file contributes
// zero items; a malformed record is an error.
func LoadDataset(dir, version string, tracks []Track) ([]CanonicalItem, error) {
	if len(tracks) == 0 {
		tracks = Tracks()
	}
	items := make([]CanonicalItem, 0)
	for _, track := range tracks {
		if !track.Valid() {
			return nil, fmt.Errorf("unknown track %q", track)
		}
		path := filepath.Join(dir, version, fmt.Sprintf("track%s.jsonl", track))
		trackItems, err := LoadTrackFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		items = append(items, trackItems...)
	}
	return items, nil
}

// LoadTrackFile reads one newline-delimited JSON file of canonical items.
func LoadTrackFile(path string) ([]CanonicalItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	items := make([]CanonicalItem, 0)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var it CanonicalItem
		if err := json.Unmarshal([]byte(line), &it); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", filepath.Base(path), lineNo, err)
		}
		normalize(&it)
		if err := Validate(it); err != nil {
			return nil, fmt.Errorf("invalid item at %s line %d: %w", filepath.Base(path), lineNo, err)
		}
		items = append(items, it)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// normalize fills record defaults after decoding.
func normalize(it *CanonicalItem) {
	if strings.TrimSpace(it.Version) == "" {
		it.Version = "1.0"
	}
}

// CountByTrack tallies items per track.
func CountByTrack(items []CanonicalItem) map[Track]int {
	counts := make(map[Track]int, len(Tracks()))
	for _, it := range items {
		counts[it.Track]++
	}
	return counts
}
