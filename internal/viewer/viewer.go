// Package viewer reveals files to the user with the desktop's default handler.
package viewer

import (
	"os/exec"
	"sync"

	"github.com/hpungsan/specdiff/internal/logging"
)

// Viewer opens a file for the user. Opening is fire-and-forget: a nil error
// means the handler was launched, not that the user saw anything.
type Viewer interface {
	Open(path string) error
}

// System launches the platform's default file handler.
type System struct{}

// Open starts the handler and does not wait for it.
func (System) Open(path string) error {
	name, args := openCommand(path)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	logging.Debug("viewer launched", "command", name, "path", path)
	// reap the child so it does not linger as a zombie
	go func() { _ = cmd.Wait() }()
	return nil
}

// Recorder collects opened paths instead of launching anything.
type Recorder struct {
	mu     sync.Mutex
	Opened []string
	// Err, when set, is returned from every Open.
	Err error
}

func (r *Recorder) Open(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Opened = append(r.Opened, path)
	return nil
}

// Paths returns a copy of the opened paths.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Opened...)
}
