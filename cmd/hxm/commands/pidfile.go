package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// pidFilePath is the single-instance marker a running hxm writes at
// startup and the trampoline (--exit/--restart/--reconfigure/--dump-stats)
// reads to find which process to signal.
func pidFilePath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "hxm.pid")
}

// WritePIDFile records the running process's pid, overwriting any
// stale file from a prior run.
func WritePIDFile() error {
	return os.WriteFile(pidFilePath(), []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// RemovePIDFile cleans up the marker on graceful shutdown.
func RemovePIDFile() {
	_ = os.Remove(pidFilePath())
}

// SignalRunningInstance reads the pid file and sends sig to it,
// reporting an error if no instance appears to be running.
func SignalRunningInstance(sig syscall.Signal) error {
	raw, err := os.ReadFile(pidFilePath())
	if err != nil {
		return fmt.Errorf("no running hxm instance found: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("corrupt pid file: %w", err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return fmt.Errorf("signaling process %d: %w", pid, err)
	}
	return nil
}
