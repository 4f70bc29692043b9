package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CheckFFmpegEncoder confirms the ffmpeg binary exists and was built with the
// requested video encoder (for example libx264).
func CheckFFmpegEncoder(ctx context.Context, binary, encoder string) Status {
	status := CheckBinaries([]Requirement{{
		Name:        "FFmpeg",
		Command:     binary,
		Description: fmt.Sprintf("Assembles frames with %s", encoder),
	}})[0]
	if !status.Available {
		return status
	}
	resolved := status.Command
	status.Available = false

	out, err := exec.CommandContext(ctx, resolved, "-hide_banner", "-encoders").Output()
	if err != nil {
		status.Detail = fmt.Sprintf("list encoders: %v", err)
		return status
	}
	if !hasEncoder(out, encoder) {
		status.Detail = fmt.Sprintf("encoder %q not available in this ffmpeg build", encoder)
		return status
	}
	status.Available = true
	return status
}

// hasEncoder scans `ffmpeg -encoders` output, whose rows look like
// " V....D libx264              libx264 H.264 ...".
func hasEncoder(listing []byte, encoder string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(listing))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == encoder {
			return true
		}
	}
	return false
}
