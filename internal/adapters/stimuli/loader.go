// Package stimuli reads word lists for the training and test phases.
package stimuli

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

// Sequence is an immutable, in-file-order list of stimuli.
type Sequence struct {
	path  string
	phase domain.Phase
	items []domain.StimulusItem
}

// Load reads a stimulus file. Blank lines and lines starting with '#' are
// skipped. Training lines hold one word; test lines hold a word and a
// grammaticality label separated by whitespace. Any other shape is a
// *domain.LoadError.
func Load(path string, phase domain.Phase) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		reason := "cannot open file"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "file does not exist"
		}
		return nil, &domain.LoadError{Path: path, Reason: reason, Err: err}
	}
	defer func() { _ = f.Close() }()

	seq := &Sequence{path: path, phase: phase}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		item, reason, err := parseLine(line, phase)
		if reason != "" {
			return nil, &domain.LoadError{Path: path, Line: lineNo, Reason: reason, Err: err}
		}
		seq.items = append(seq.items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.LoadError{Path: path, Line: lineNo, Reason: "read failed", Err: err}
	}

	if len(seq.items) == 0 {
		return nil, &domain.LoadError{Path: path, Reason: "file contains no stimuli"}
	}
	return seq, nil
}

// NewSequence builds a sequence from items already in memory.
func NewSequence(phase domain.Phase, items []domain.StimulusItem) *Sequence {
	return &Sequence{phase: phase, items: slices.Clone(items)}
}

func parseLine(line string, phase domain.Phase) (domain.StimulusItem, string, error) {
	fields := strings.Fields(line)
	switch phase {
	case domain.PhaseTraining:
		if len(fields) != 1 {
			return domain.StimulusItem{}, "training line must contain exactly one word", nil
		}
		return domain.NewTrainingItem(fields[0]), "", nil
	case domain.PhaseTest:
		if len(fields) != 2 {
			return domain.StimulusItem{}, "test line must contain a word and a grammaticality label", nil
		}
		g, err := domain.ParseGrammaticality(fields[1])
		if err != nil {
			return domain.StimulusItem{}, "bad grammaticality label", err
		}
		return domain.NewTestItem(fields[0], g), "", nil
	}
	return domain.StimulusItem{}, "unknown phase " + phase.String(), nil
}

// Path returns the file the sequence was loaded from.
func (s *Sequence) Path() string { return s.path }

// Phase returns the phase the sequence was loaded for.
func (s *Sequence) Phase() domain.Phase { return s.phase }

// Len returns the number of stimuli.
func (s *Sequence) Len() int { return len(s.items) }

// All yields the stimuli in order. It can be ranged over repeatedly.
func (s *Sequence) All() iter.Seq[domain.StimulusItem] {
	return func(yield func(domain.StimulusItem) bool) {
		for _, item := range s.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Shuffled returns a permuted copy; the receiver is unchanged.
func (s *Sequence) Shuffled(rng *rand.Rand) ports.StimulusList {
	items := make([]domain.StimulusItem, len(s.items))
	copy(items, s.items)
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return &Sequence{path: s.path, phase: s.phase, items: items}
}

// CountGrammatical returns how many test items are labelled grammatical.
func (s *Sequence) CountGrammatical() int {
	n := 0
	for _, item := range s.items {
		if item.IsGrammatical() {
			n++
		}
	}
	return n
}

// CheckTypeable reports training words a participant could never enter.
// With uppercase input every typed letter is uppercased, so a word holding
// lowercase letters can never match.
func (s *Sequence) CheckTypeable(uppercase bool) error {
	if !uppercase {
		return nil
	}
	var errs []error
	for _, item := range s.items {
		if strings.ToUpper(item.Text) != item.Text {
			errs = append(errs, &domain.LoadError{
				Path:   s.path,
				Reason: fmt.Sprintf("stimulus %q has lowercase letters but input is uppercased (set display.uppercase_input: false or uppercase the list)", item.Text),
			})
		}
	}
	return errors.Join(errs...)
}
