// pkg/interaction/prompt.go

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Confirmer answers yes/no questions. Quiet mode and tests inject
// implementations that never touch the terminal.
type Confirmer interface {
	Confirm(ctx context.Context, question string, defaultYes bool) bool
}

// TerminalConfirmer prompts on the controlling terminal. With Quiet set
// it returns the default answer without prompting.
type TerminalConfirmer struct {
	Quiet bool
}

func (c *TerminalConfirmer) Confirm(ctx context.Context, question string, defaultYes bool) bool {
	if c.Quiet {
		otelzap.Ctx(ctx).Info("Quiet mode, assuming default answer",
			zap.String("question", question),
			zap.Bool("default_yes", defaultYes))
		return defaultYes
	}
	return PromptYesNo(ctx, question, defaultYes)
}

// ReadLine prompts the user with a label and returns a trimmed line of input.
// Prompts go to stderr so stdout stays clean for automation.
func ReadLine(ctx context.Context, reader *bufio.Reader, label string) (string, error) {
	log := otelzap.Ctx(ctx)
	log.Debug("Prompting user for input", zap.String("label", label))

	_, _ = fmt.Fprint(os.Stderr, label+": ")

	text, err := reader.ReadString('\n')
	if err != nil {
		log.Error("Failed to read user input", zap.Error(err))
		return "", err
	}

	value := strings.TrimSpace(text)
	log.Debug("User input received", zap.String("value", value))
	return value, nil
}

// PromptYesNo asks a yes/no question and returns the answer. Falls back
// to the default when input is empty, unparseable, or no TTY exists.
func PromptYesNo(ctx context.Context, prompt string, defaultYes bool) bool {
	log := otelzap.Ctx(ctx)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Info("No TTY available, assuming default answer",
			zap.String("prompt", prompt),
			zap.Bool("default_yes", defaultYes))
		return defaultYes
	}

	defPrompt := "Y/n"
	if !defaultYes {
		defPrompt = "y/N"
	}
	label := fmt.Sprintf("%s [%s]", prompt, defPrompt)

	reader := bufio.NewReader(os.Stdin)
	input, err := ReadLine(ctx, reader, label)
	if err != nil {
		log.Error("Failed to read yes/no input", zap.Error(err))
		return defaultYes
	}

	if answer, ok := NormalizeYesNoInput(input); ok {
		log.Info("User input parsed", zap.Bool("answer", answer))
		return answer
	}

	log.Info("Default applied", zap.String("prompt", prompt), zap.Bool("default_yes", defaultYes))
	return defaultYes
}

// PromptInput asks for a free-form value with an optional default fallback.
func PromptInput(ctx context.Context, prompt, defaultVal string) string {
	reader := bufio.NewReader(os.Stdin)
	input, err := ReadLine(ctx, reader, prompt)
	if err != nil || input == "" {
		return defaultVal
	}
	return input
}

// NormalizeYesNoInput maps y/yes/n/no (any case) to a bool; the second
// return reports whether the input was recognized.
func NormalizeYesNoInput(input string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
