package terminal_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/terminal"
)

func TestPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := terminal.NewPrinter(&buf, terminal.Options{})
	p.Step("Extracting data from Git...")
	p.Detail("%d paths", 12)
	p.Success("Report written to %s", "repo_analysis.html")
	p.Warn("could not open %s", "repo_analysis.html")

	assert.Equal(t, "==> Extracting data from Git...\n"+
		"    12 paths\n"+
		"Report written to repo_analysis.html\n"+
		"warning: could not open repo_analysis.html\n", buf.String())
}

func TestPrinterQuiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := terminal.NewPrinter(&buf, terminal.Options{Quiet: true})
	p.Step("hidden")
	p.Success("hidden")
	p.Warn("shown")

	assert.Equal(t, "warning: shown\n", buf.String())
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, terminal.IsTerminal(&bytes.Buffer{}))
}
