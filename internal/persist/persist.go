// Package persist serializes an inspection record to a project bundle: a
// small pointer file at the user-chosen path plus a project folder holding
// the structured state file and the deduplicated image store.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"inspectline/internal/record"
)

var (
	// ErrCorruptProject is returned when a pointer or state file cannot be
	// parsed as the structured format. The in-memory record is unchanged.
	ErrCorruptProject = errors.New("corrupt project file")

	// ErrPersistenceIO is returned for disk or permission failures during
	// save. Any previously saved bundle is left untouched.
	ErrPersistenceIO = errors.New("persistence i/o failure")
)

const (
	stateVersion    = 1
	stateFileName   = "state.json"
	imagesDirName   = "images"
	bundleDirSuffix = "_files"
)

// Engine performs saves and loads. The zero value is usable; Now and Log are
// injectable for tests.
type Engine struct {
	Now func() time.Time
	Log logrus.FieldLogger
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) log() logrus.FieldLogger {
	if e.Log != nil {
		return e.Log
	}
	return logrus.StandardLogger()
}

// BundleDir returns the project folder path for a save-file path. The folder
// sits next to the save file, named after its base name, hidden with a
// leading dot everywhere except Windows.
func BundleDir(path string) string {
	dir := filepath.Dir(path)
	name := bundleBase(path) + bundleDirSuffix
	if runtime.GOOS != "windows" {
		name = "." + name
	}
	return filepath.Join(dir, name)
}

func bundleBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// findBundleDir locates an existing project folder for a save-file path,
// accepting either the hidden or plain naming so bundles move between
// platforms.
func findBundleDir(path string) (string, error) {
	dir := filepath.Dir(path)
	name := bundleBase(path) + bundleDirSuffix
	for _, candidate := range []string{"." + name, name} {
		full := filepath.Join(dir, candidate)
		if info, err := os.Stat(full); err == nil && info.IsDir() {
			return full, nil
		}
	}
	return "", fmt.Errorf("%w: no project folder for %s", ErrCorruptProject, path)
}

// pointerFile is the small user-facing file at the chosen save path.
type pointerFile struct {
	Version    int    `json:"version"`
	Identifier string `json:"identifier"`
	Project    string `json:"project"`
	SavedAt    string `json:"saved_at"`
}

// Save writes the record to its project bundle. Image bytes are copied into
// the bundle's image store with content-based deduplication, the state file
// is written fresh and renamed into place, and the user-facing pointer file
// is replaced only after everything else succeeded.
func (e *Engine) Save(rec *record.Record, path string) error {
	bundle := BundleDir(path)
	imagesDir := filepath.Join(bundle, imagesDirName)
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return fmt.Errorf("%w: create bundle: %v", ErrPersistenceIO, err)
	}

	var imgErr error
	forEachImage(rec, func(ref *record.ImageRef) {
		if err := e.storeRef(imagesDir, ref); err != nil && imgErr == nil {
			imgErr = err
		}
	})
	if imgErr != nil {
		return imgErr
	}

	state := stateFromRecord(rec)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode state: %v", ErrPersistenceIO, err)
	}
	statePath := filepath.Join(bundle, stateFileName)
	if err := writeFileAtomic(statePath, data); err != nil {
		return fmt.Errorf("%w: write state: %v", ErrPersistenceIO, err)
	}

	ptr := pointerFile{
		Version:    stateVersion,
		Identifier: rec.Header.Identifier,
		Project:    filepath.Base(bundle),
		SavedAt:    e.now().UTC().Format(time.RFC3339),
	}
	ptrData, err := json.MarshalIndent(ptr, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode pointer: %v", ErrPersistenceIO, err)
	}
	if err := writeFileAtomic(path, ptrData); err != nil {
		return fmt.Errorf("%w: write pointer: %v", ErrPersistenceIO, err)
	}
	return nil
}

// storeRef copies one image into the store if its source still exists, and
// records the stored name on the reference.
func (e *Engine) storeRef(imagesDir string, ref *record.ImageRef) error {
	if ref.Source != "" {
		if _, err := os.Stat(ref.Source); err == nil {
			name, err := storeImage(imagesDir, ref.Source)
			if err != nil {
				return fmt.Errorf("%w: store %s: %v", ErrPersistenceIO, ref.Source, err)
			}
			ref.Stored = name
			return nil
		}
	}
	// Source gone. Keep a previously stored name if the bytes are already in
	// the store; otherwise the reference stays unstored and load skips it.
	if ref.Stored != "" {
		if _, err := os.Stat(filepath.Join(imagesDir, ref.Stored)); err == nil {
			return nil
		}
		ref.Stored = ""
	}
	e.log().WithField("source", ref.Source).Warn("image source missing; reference not stored")
	return nil
}

// Load reads a project bundle back into a new record. Image references whose
// stored file has gone missing are skipped. Loading replaces whatever record
// the caller held; unsaved state must be discarded first.
func (e *Engine) Load(path string) (*record.Record, error) {
	ptrData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistenceIO, path, err)
	}
	var ptr pointerFile
	if err := json.Unmarshal(ptrData, &ptr); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptProject, path, err)
	}
	bundle, err := findBundleDir(path)
	if err != nil {
		return nil, err
	}
	stateData, err := os.ReadFile(filepath.Join(bundle, stateFileName))
	if err != nil {
		return nil, fmt.Errorf("%w: read state: %v", ErrCorruptProject, err)
	}
	var state stateFile
	if err := json.Unmarshal(stateData, &state); err != nil {
		return nil, fmt.Errorf("%w: parse state: %v", ErrCorruptProject, err)
	}
	if state.Version != stateVersion {
		return nil, fmt.Errorf("%w: unsupported state version %d", ErrCorruptProject, state.Version)
	}
	return recordFromState(&state, filepath.Join(bundle, imagesDirName), e.log())
}

// writeFileAtomic writes to a fresh temporary file in the target directory
// and renames it over the destination, so a crash mid-write never corrupts
// the last good copy.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// forEachImage visits every image reference in the record.
func forEachImage(rec *record.Record, fn func(*record.ImageRef)) {
	for _, unit := range rec.Equipment {
		for _, sec := range unit.Sections {
			for _, ref := range sec.Images {
				fn(ref)
			}
			for _, st := range sec.Observations {
				for _, refs := range st.ObsImages {
					for _, ref := range refs {
						fn(ref)
					}
				}
				for _, ref := range st.PatternImages {
					fn(ref)
				}
			}
			for _, entry := range sec.Custom {
				for _, ref := range entry.Images {
					fn(ref)
				}
			}
			for _, refs := range sec.MetricImages {
				for _, ref := range refs {
					fn(ref)
				}
			}
		}
	}
}
