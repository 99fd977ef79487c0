package wavetable

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// CacheVersion is bumped whenever the build algorithm changes in a way that
// invalidates previously cached tables.
const CacheVersion = 1

// cacheEntry is the on-disk encoding of a single waveform's table list. The
// layout is not normative (spec §4.1); gob is used for the same reason the
// retrieval pack's GameBoyEmulator save-state code does — no dedicated
// binary serialization library appears among the teacher's dependencies.
type cacheEntry struct {
	Samples [][]float64
	MaxDPhi []float64
}

// CacheFilename returns the content-addressed filename for a waveform's
// table set at a given sample rate:
// `ytterbium-v<version>-<sampleRate>hz-<waveform>.gob` inside dir.
func CacheFilename(dir string, wf Waveform, sampleRate int) string {
	name := fmt.Sprintf("ytterbium-v%d-%dhz-%s.gob", CacheVersion, sampleRate, wf)
	return filepath.Join(dir, name)
}

// BuildOrLoad builds the wavetable set for sampleRate, consulting dir as an
// on-disk cache first. A missing or unreadable cache entry falls back to
// rebuilding and writes the result back to dir. dir == "" disables caching.
func BuildOrLoad(sampleRate int, dir string) *Set {
	if dir == "" {
		return Build(sampleRate)
	}
	s := &Set{tables: make(map[Waveform][]*Table, len(allWaveforms))}
	for _, wf := range allWaveforms {
		if tables, err := loadCached(dir, wf, sampleRate); err == nil {
			s.tables[wf] = tables
			continue
		}
		tables := buildWaveform(wf, fundamentalHz, sampleRate)
		s.tables[wf] = tables
		_ = saveCached(dir, wf, sampleRate, tables)
	}
	return s
}

func loadCached(dir string, wf Waveform, sampleRate int) ([]*Table, error) {
	f, err := os.Open(CacheFilename(dir, wf, sampleRate))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(f).Decode(&entry); err != nil {
		return nil, err
	}
	tables := make([]*Table, len(entry.Samples))
	for i := range entry.Samples {
		tables[i] = &Table{samples: entry.Samples[i], maxDPhi: entry.MaxDPhi[i]}
	}
	return tables, nil
}

func saveCached(dir string, wf Waveform, sampleRate int, tables []*Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(CacheFilename(dir, wf, sampleRate))
	if err != nil {
		return err
	}
	defer f.Close()

	entry := cacheEntry{
		Samples: make([][]float64, len(tables)),
		MaxDPhi: make([]float64, len(tables)),
	}
	for i, t := range tables {
		entry.Samples[i] = t.samples
		entry.MaxDPhi[i] = t.maxDPhi
	}
	return gob.NewEncoder(f).Encode(entry)
}
