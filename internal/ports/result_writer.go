package ports

import "github.com/emiliopalmerini/aglab/internal/domain"

// ResultWriter persists finalised records for one session. Every method
// either persists the whole record or returns a *domain.WriteError.
type ResultWriter interface {
	WriteParticipant(info domain.ParticipantInfo) error
	WriteTraining(trial *domain.TrainingTrial) error
	WriteTest(trial domain.TestTrial) error
	Close() error
}

// ResultReader reads records back using the same column schemas.
type ResultReader interface {
	ListParticipantDirs() ([]string, error)
	ReadParticipant(dir string) (domain.ParticipantInfo, error)
	ReadTraining(dir string) ([]domain.TrainingTrial, error)
	ReadTest(dir string) ([]domain.TestTrial, error)
}
