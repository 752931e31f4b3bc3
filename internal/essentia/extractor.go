package essentia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultBinary is the Essentia music extractor executable.
const DefaultBinary = "essentia_streaming_extractor_music"

// Features are the extractor values the genre classification needs.
type Features struct {
	Prediction
	BPM float64
}

// HasGenre reports whether the rosamerica model produced a class.
func (f *Features) HasGenre() bool {
	return f != nil && f.Rosamerica != ""
}

// Extractor runs the Essentia music extractor on audio files.
type Extractor struct {
	// Binary defaults to DefaultBinary.
	Binary string
	// Profile is an optional extractor profile enabling the high-level
	// SVM models.
	Profile string
}

// Extract analyzes the audio file at path.
func (e *Extractor) Extract(ctx context.Context, path string) (*Features, error) {
	if path == "" {
		return nil, fmt.Errorf("extract: item has no file path")
	}
	binary := e.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	dir, err := os.MkdirTemp("", "autogenre-essentia")
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "features.json")

	args := []string{path, out}
	if e.Profile != "" {
		args = append(args, e.Profile)
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s on %q: %w: %s", binary, path, err, bytes.TrimSpace(stderr.Bytes()))
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("extract: reading output: %w", err)
	}
	defer f.Close()
	return ParseFeatures(f)
}

type classifierOutput struct {
	Value       string  `json:"value"`
	Probability float64 `json:"probability"`
}

type extractorOutput struct {
	Rhythm struct {
		BPM float64 `json:"bpm"`
	} `json:"rhythm"`
	Highlevel struct {
		GenreRosamerica *classifierOutput `json:"genre_rosamerica"`
		GenreElectronic *classifierOutput `json:"genre_electronic"`
	} `json:"highlevel"`
}

// ParseFeatures reads the JSON written by the extractor. Missing high-level
// descriptors leave the corresponding prediction empty.
func ParseFeatures(r io.Reader) (*Features, error) {
	var out extractorOutput
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing extractor output: %w", err)
	}

	f := &Features{BPM: out.Rhythm.BPM}
	if c := out.Highlevel.GenreRosamerica; c != nil {
		f.Rosamerica = c.Value
		f.RosamericaProbability = c.Probability
	}
	if c := out.Highlevel.GenreElectronic; c != nil {
		f.Electronic = c.Value
		f.ElectronicProbability = c.Probability
	}
	return f, nil
}
