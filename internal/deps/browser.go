package deps

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

// CheckBrowser reports which Chromium binary frame capture will launch. An
// explicit path wins; otherwise the rod launcher's system lookup is used. A
// missing system browser is optional because the launcher can download one.
func CheckBrowser(configured string) Status {
	status := Status{
		Name:        "Chromium",
		Description: "Headless renderer for frame capture",
	}
	if bin := strings.TrimSpace(configured); bin != "" {
		status.Command = bin
		info, err := os.Stat(bin)
		if err != nil {
			status.Detail = fmt.Sprintf("configured browser %q: %v", bin, err)
			return status
		}
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			status.Detail = fmt.Sprintf("configured browser %q is not executable", bin)
			return status
		}
		status.Available = true
		return status
	}

	status.Optional = true
	if path, ok := launcher.LookPath(); ok {
		status.Command = path
		status.Available = true
		return status
	}
	status.Detail = "no system browser found; one will be downloaded on first capture"
	return status
}
