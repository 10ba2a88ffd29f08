package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/specdiff/internal/logging"
)

// Placeholders substituted in a LegacyConverter command.
const (
	PlaceholderSrc    = "{src}"
	PlaceholderOutDir = "{outdir}"
	PlaceholderDst    = "{dst}"
)

// LegacyConverter hands binary word-processor formats to an external office
// application. The command runs in a scratch directory; its text output is
// moved to dst only after the process succeeds.
type LegacyConverter struct {
	// Command is the argv template. {src} is the source path, {outdir} a scratch
	// directory for the output and {dst} a file path inside it.
	Command []string
	// Timeout bounds one process run. Zero means no bound beyond ctx.
	Timeout time.Duration
	// Exts overrides the handled extensions.
	Exts []string
}

func (c *LegacyConverter) Name() string {
	if len(c.Command) == 0 {
		return "legacy"
	}
	return "legacy:" + filepath.Base(c.Command[0])
}

func (c *LegacyConverter) Extensions() []string {
	if len(c.Exts) > 0 {
		return c.Exts
	}
	return []string{".doc", ".rtf", ".odt"}
}

func (c *LegacyConverter) Convert(ctx context.Context, src, dst string) error {
	if len(c.Command) == 0 {
		return fmt.Errorf("no legacy converter configured")
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "specdiff-convert-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	stem := strings.TrimSuffix(filepath.Base(absSrc), filepath.Ext(absSrc))
	scratchDst := filepath.Join(scratch, stem+".txt")

	replacer := strings.NewReplacer(
		PlaceholderSrc, absSrc,
		PlaceholderOutDir, scratch,
		PlaceholderDst, scratchDst,
	)
	argv := make([]string, len(c.Command))
	for i, a := range c.Command {
		argv[i] = replacer.Replace(a)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = scratch
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("running legacy converter", "argv", argv)
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %s", argv[0], c.Timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}

	out, err := findOutput(scratch, scratchDst)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return err
	}
	data, err = cleanText(data)
	if err != nil {
		return err
	}
	return writeText(dst, data)
}

// findOutput locates the converter's text file: the expected name, or the only
// file the process left in the scratch directory.
func findOutput(scratch, expected string) (string, error) {
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(scratch, e.Name()))
		}
	}
	if len(files) != 1 {
		return "", fmt.Errorf("converter produced %d output files, want 1", len(files))
	}
	return files[0], nil
}
