package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// ResultStore appends finalised records to the CSV files of one session.
// Every record is flushed and synced before the write returns, so a crash
// never leaves a partially written row behind a returned nil error.
type ResultStore struct {
	session *domain.Session
	files   map[string]*os.File
}

// NewResultStore prepares the session directory. It refuses a directory
// that already holds result files for the participant.
func NewResultStore(session *domain.Session) (*ResultStore, error) {
	dir := session.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &domain.WriteError{Path: dir, Op: "create directory", Err: err}
	}

	for _, path := range []string{
		ParticipantPath(dir, session.ParticipantID),
		TrainingPath(dir, session.ParticipantID),
		TestPath(dir, session.ParticipantID),
	} {
		_, err := os.Stat(path)
		if err == nil {
			return nil, &domain.WriteError{Path: path, Op: "create", Err: fs.ErrExist}
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.WriteError{Path: path, Op: "stat", Err: err}
		}
	}

	return &ResultStore{session: session, files: make(map[string]*os.File)}, nil
}

// Dir returns the session directory.
func (s *ResultStore) Dir() string { return s.session.OutputDir }

// WriteParticipant writes the participant-info record.
func (s *ResultStore) WriteParticipant(info domain.ParticipantInfo) error {
	path := ParticipantPath(s.session.OutputDir, s.session.ParticipantID)
	return s.append(path, ParticipantHeader, EncodeParticipant(info))
}

// WriteTraining writes a completed training trial.
func (s *ResultStore) WriteTraining(trial *domain.TrainingTrial) error {
	path := TrainingPath(s.session.OutputDir, s.session.ParticipantID)
	if err := trial.Validate(); err != nil {
		return &domain.WriteError{Path: path, Op: "validate", Err: err}
	}
	if !trial.FinalCorrect {
		return &domain.WriteError{Path: path, Op: "validate", Err: fmt.Errorf("trial %d is not complete", trial.TrialIndex)}
	}
	record, err := EncodeTraining(trial)
	if err != nil {
		return &domain.WriteError{Path: path, Op: "encode", Err: err}
	}
	return s.append(path, TrainingHeader, record)
}

// WriteTest writes a completed test trial.
func (s *ResultStore) WriteTest(trial domain.TestTrial) error {
	path := TestPath(s.session.OutputDir, s.session.ParticipantID)
	return s.append(path, TestHeader, EncodeTest(trial))
}

func (s *ResultStore) append(path string, header, record []string) error {
	f, ok := s.files[path]
	if !ok {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return &domain.WriteError{Path: path, Op: "open", Err: err}
		}
		s.files[path] = f

		info, err := f.Stat()
		if err != nil {
			return &domain.WriteError{Path: path, Op: "stat", Err: err}
		}
		if info.Size() == 0 {
			if err := writeRecord(f, header); err != nil {
				return &domain.WriteError{Path: path, Op: "write header", Err: err}
			}
		}
	}

	if err := writeRecord(f, record); err != nil {
		return &domain.WriteError{Path: path, Op: "write record", Err: err}
	}
	if err := f.Sync(); err != nil {
		return &domain.WriteError{Path: path, Op: "sync", Err: err}
	}
	return nil
}

func writeRecord(f *os.File, record []string) error {
	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Close closes every open file and returns the first error.
func (s *ResultStore) Close() error {
	var first error
	for path, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = &domain.WriteError{Path: path, Op: "close", Err: err}
		}
		delete(s.files, path)
	}
	return first
}
