// Package interact asks the user whether to open the HTML report and opens it
// with the platform's default application.
package interact

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// OpenQuestion is asked after an HTML report is written.
const OpenQuestion = "Would you like to open it? Y/N [Y]"

// ErrUnsupportedPlatform is returned when no open command is known for the OS.
var ErrUnsupportedPlatform = errors.New("no open command for this platform")

// Confirmer asks a yes/no question and reports the answer.
type Confirmer func(question string) bool

// Opener opens a file with the default application.
type Opener func(ctx context.Context, path string) error

// NewConfirmer returns a Confirmer that writes the question to out and reads
// one line from in. "y", "yes" (any case) or an empty line mean yes. End of
// input before any answer means no.
func NewConfirmer(in io.Reader, out io.Writer) Confirmer {
	reader := bufio.NewReader(in)

	return func(question string) bool {
		fmt.Fprint(out, question+" ")

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return false
		}

		return Affirmative(line)
	}
}

// Affirmative reports whether answer accepts the default-yes question.
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// OpenCommand returns the command that opens path on goos.
func OpenCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris":
		return "xdg-open", []string{path}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

// OpenFile opens path with the default application for the current OS.
// It waits for the launcher, not for the application.
func OpenFile(ctx context.Context, path string) error {
	name, args, err := OpenCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, path, err, strings.TrimSpace(string(out)))
	}

	return nil
}
