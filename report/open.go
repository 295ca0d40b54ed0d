package report

import (
	"fmt"
	"os/exec"
	"runtime"
)

// viewerCommand returns the platform command that opens path in the
// default image viewer.
func viewerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// Open shows the chart in the platform's image viewer without waiting
// for the viewer to exit. The viewer outlives the process.
func Open(path string) error {
	name, args := viewerCommand(runtime.GOOS, path)

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s with %s: %w", path, name, err)
	}

	go cmd.Wait() //nolint:errcheck

	return nil
}
