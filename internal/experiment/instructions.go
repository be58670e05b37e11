package experiment

import (
	"fmt"
	"os"
	"strings"
)

const (
	defaultTrainingInstructions = `# Training

You will see a series of made-up words, one at a time.

Each word is shown for a few seconds and then disappears. **Type the word
exactly as you saw it** and press Enter. If your answer is not correct, the
same word will be shown again until you type it correctly.

Press the SPACE BAR when you are ready to begin.`

	defaultTestInstructions = `# Test

The words you just typed were all built according to a hidden set of
rules. You will now see new words. Some follow the same rules, others do not.

For every word, decide quickly:

- press **%s** if the word follows the rules
- press **%s** if it does not

Go with your first impression. Press the SPACE BAR to begin.`

	trainingCompleteText = "The training phase is complete.\n\nPlease press the SPACE BAR when you are ready to proceed to the next part of the experiment."

	exitText = "End of the experiment!\n\nThank you for your participation."
)

// LoadInstructions reads a markdown instruction file. An empty path
// returns fallback.
func LoadInstructions(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading instructions: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DefaultTrainingInstructions returns the built-in training instructions.
func DefaultTrainingInstructions() string {
	return defaultTrainingInstructions
}

// DefaultTestInstructions returns the built-in test instructions for the
// given response keys.
func DefaultTestInstructions(grammaticalKey, ungrammaticalKey string) string {
	return fmt.Sprintf(defaultTestInstructions, strings.ToUpper(grammaticalKey), strings.ToUpper(ungrammaticalKey))
}
