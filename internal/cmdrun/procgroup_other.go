//go:build !unix

package cmdrun

import "os/exec"

func configureProcessGroup(*exec.Cmd) {}
