//go:build darwin

package viewer

func openCommand(path string) (string, []string) {
	return "open", []string{path}
}
