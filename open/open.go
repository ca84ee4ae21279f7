// Package open hands files to the user's editor or the system's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pitchloop/pitchloop/constant"
)

// Start opens path with the default system handler and returns without waiting.
func Start(path string) error {
	name, args, ok := handler(runtime.GOOS, path)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return exec.Command(name, args...).Start()
}

// Edit opens path in $VISUAL or $EDITOR attached to the terminal and waits for
// it to exit. Without either variable the system handler is used instead.
func Edit(path string) error {
	editor := editorFromEnv()
	if editor == "" {
		return Start(path)
	}

	// EDITOR may carry flags, e.g. "code --wait".
	fields := strings.Fields(editor)
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}

func editorFromEnv() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return ""
}

// handler returns the default-handler command line for goos.
func handler(goos, path string) (name string, args []string, ok bool) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return rundll, []string{"url.dll,FileProtocolHandler", path}, true
	case constant.Darwin:
		return "open", []string{path}, true
	case constant.Linux:
		return "xdg-open", []string{path}, true
	case constant.Android:
		return "termux-open", []string{path}, true
	default:
		return "", nil, false
	}
}
