package experiment

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// CollectParticipant asks for every participant field that is still empty.
// Fields given up front are kept as they are.
func CollectParticipant(ctx context.Context, p domain.Presenter, info domain.ParticipantInfo) (domain.ParticipantInfo, error) {
	for info.ParticipantID == "" {
		id, err := p.AskText(ctx, "Participant ID")
		if err != nil {
			return info, err
		}
		id = strings.TrimSpace(id)
		if err := domain.ValidateParticipantID(id); err != nil {
			if showErr := p.Show(ctx, domain.Screen{Title: "Invalid ID", Body: err.Error()}); showErr != nil {
				return info, showErr
			}
			continue
		}
		info.ParticipantID = id
	}

	if info.ExperimentType == "" {
		v, err := p.AskChoice(ctx, domain.ChoicePrompt{Label: "Test", Options: domain.ExperimentTypeOptions})
		if err != nil {
			return info, err
		}
		t, err := domain.ParseExperimentType(v)
		if err != nil {
			return info, err
		}
		info.ExperimentType = t
	}

	if info.Age == "" {
		v, err := ask(ctx, p, "Age", domain.AgeOptions)
		if err != nil {
			return info, err
		}
		info.Age = v
	}

	if info.Gender == "" {
		v, err := ask(ctx, p, "Gender", domain.GenderOptions)
		if err != nil {
			return info, err
		}
		info.Gender = v
	}

	if info.NativeLanguage == "" {
		v, err := ask(ctx, p, "Native Language", domain.LanguageOptions)
		if err != nil {
			return info, err
		}
		info.NativeLanguage = v
	}

	for info.NativeLanguage == domain.OtherOption {
		v, err := p.AskText(ctx, "Please specify your native language")
		if err != nil {
			return info, err
		}
		if v = strings.TrimSpace(v); v != "" {
			info.NativeLanguage = v
		}
	}

	return info, info.Validate()
}

func ask(ctx context.Context, p domain.Presenter, label string, options []string) (string, error) {
	v, err := p.AskChoice(ctx, domain.ChoicePrompt{Label: label, Options: options})
	if err != nil {
		return "", err
	}
	if !slices.Contains(options, v) {
		return "", fmt.Errorf("%s: %q is not an option", strings.ToLower(label), v)
	}
	return v, nil
}
