//go:build !darwin && !windows

package viewer

func openCommand(path string) (string, []string) {
	return "xdg-open", []string{path}
}
