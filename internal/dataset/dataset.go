// Package dataset discovers benchmark recordings on disk. A dataset root
// contains one directory per track, named by its ISRC, holding the
// original audio, any separated vocal stems, and a lyrics.json file with
// the reference transcript.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	originalAudioFile = "audio.mp3"
	lyricsFile        = "lyrics.json"
)

// ErrNoRecordings is returned when a scan finds no usable track folders.
var ErrNoRecordings = errors.New("no recordings found in dataset")

// Recording is one track of the fixed benchmark dataset.
type Recording struct {
	// ISRC is the track identifier, taken from the folder name.
	ISRC string
	// Language is the reference language label, when the dataset
	// provides one; empty means the pipeline relies on detection.
	Language string
	// Dir is the absolute path of the track folder.
	Dir string
	// Reference is the ground-truth lyrics text.
	Reference string
	// DurationSeconds is the track length when known, zero otherwise.
	DurationSeconds float64
}

// AudioPath returns the audio file a pipeline stage should transcribe:
// the original audio when stem is empty, otherwise the named separated
// stem, e.g. "demucs_ft" resolving to demucs_ft.wav.
func (r Recording) AudioPath(stem string) string {
	if strings.TrimSpace(stem) == "" {
		return filepath.Join(r.Dir, originalAudioFile)
	}
	return filepath.Join(r.Dir, stem+".wav")
}

// OriginalAudioPath returns the unprocessed source audio.
func (r Recording) OriginalAudioPath() string {
	return r.AudioPath("")
}

type lyricsDocument struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Unsynced struct {
		Data string `json:"data"`
	} `json:"unsynced"`
}

// Scan walks the dataset root and returns all usable recordings, sorted
// by ISRC. Track folders missing their audio or lyrics are logged and
// skipped rather than failing the scan.
func Scan(root string, logger *zap.Logger) ([]Recording, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dataset root %s: %w", root, err)
	}

	var recordings []Recording
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		recording, err := loadRecording(entry.Name(), dir)
		if err != nil {
			logger.Warn("skipping track folder", zap.String("isrc", entry.Name()), zap.Error(err))
			continue
		}
		recordings = append(recordings, recording)
	}

	if len(recordings) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecordings, root)
	}

	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].ISRC < recordings[j].ISRC
	})
	return recordings, nil
}

func loadRecording(isrc, dir string) (Recording, error) {
	audioPath := filepath.Join(dir, originalAudioFile)
	if _, err := os.Stat(audioPath); err != nil {
		return Recording{}, fmt.Errorf("missing %s: %w", originalAudioFile, err)
	}

	lyricsPath := filepath.Join(dir, lyricsFile)
	raw, err := os.ReadFile(lyricsPath)
	if err != nil {
		return Recording{}, fmt.Errorf("missing %s: %w", lyricsFile, err)
	}

	var doc lyricsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Recording{}, fmt.Errorf("decode %s: %w", lyricsFile, err)
	}

	reference := normalizeReference(doc.Unsynced.Data)
	if reference == "" {
		return Recording{}, fmt.Errorf("%s has no unsynced lyrics", lyricsFile)
	}

	return Recording{
		ISRC:            isrc,
		Language:        strings.ToLower(strings.TrimSpace(doc.Language)),
		Dir:             dir,
		Reference:       reference,
		DurationSeconds: doc.Duration,
	}, nil
}

// normalizeReference collapses the doubled newlines lyrics providers use
// for stanza breaks, matching how hypotheses are scored.
func normalizeReference(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n\n", "\n"))
}
