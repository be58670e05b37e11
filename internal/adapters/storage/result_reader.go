package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// ResultReader reads participant directories under a data root.
type ResultReader struct {
	root string
}

// NewResultReader creates a reader rooted at dataDir.
func NewResultReader(dataDir string) *ResultReader {
	return &ResultReader{root: dataDir}
}

// ListParticipantDirs walks the data root and returns every directory that
// contains a training or test file, sorted by path.
func (r *ResultReader) ListParticipantDirs() ([]string, error) {
	seen := make(map[string]bool)
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, TrainingSuffix) || strings.HasSuffix(name, TestSuffix) {
			seen[filepath.Dir(path)] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", r.root, err)
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadParticipant reads the participant-info record of a directory.
func (r *ResultReader) ReadParticipant(dir string) (domain.ParticipantInfo, error) {
	path, err := findFile(dir, ParticipantSuffix)
	if err != nil {
		return domain.ParticipantInfo{}, err
	}
	var info domain.ParticipantInfo
	found := false
	err = readRows(path, participantRequired, func(rw row) error {
		p, err := decodeParticipant(rw)
		if err != nil {
			return err
		}
		info, found = p, true
		return nil
	})
	if err != nil {
		return domain.ParticipantInfo{}, err
	}
	if !found {
		return domain.ParticipantInfo{}, fmt.Errorf("%s: no participant record", path)
	}
	return info, nil
}

// ReadTraining reads all training trials of a directory. A missing file
// yields no trials.
func (r *ResultReader) ReadTraining(dir string) ([]domain.TrainingTrial, error) {
	path, err := findFile(dir, TrainingSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var trials []domain.TrainingTrial
	err = readRows(path, TrainingHeader, func(rw row) error {
		t, err := decodeTraining(rw)
		if err != nil {
			return err
		}
		trials = append(trials, t)
		return nil
	})
	return trials, err
}

// ReadTest reads all test trials of a directory. A missing file yields no
// trials.
func (r *ResultReader) ReadTest(dir string) ([]domain.TestTrial, error) {
	path, err := findFile(dir, TestSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var trials []domain.TestTrial
	err = readRows(path, TestHeader, func(rw row) error {
		t, err := decodeTest(rw)
		if err != nil {
			return err
		}
		trials = append(trials, t)
		return nil
	})
	return trials, err
}

func findFile(dir, suffix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", dir, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no *%s in %s: %w", suffix, dir, fs.ErrNotExist)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("multiple *%s files in %s", suffix, dir)
}

func readRows(path string, header []string, fn func(row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: failed to read header: %w", path, err)
	}
	cols, err := newColumnIndex(head, header)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	line := 1
	for {
		values, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(row{cols: cols, values: values, line: line}); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}
