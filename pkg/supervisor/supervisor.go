// Package supervisor runs the media signaling server as a child process of
// the gateway when no instance is already listening on its port.
package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"paracord-hq/gateway/pkg/config"
)

const (
	// DefaultWarmUp is how long Start waits after spawning. The signaling
	// server offers no readiness handshake; this only gives it time to bind.
	DefaultWarmUp = 4 * time.Second

	// probeTimeout bounds the check for an already running instance.
	probeTimeout = time.Second
)

// Options describe the process to start.
type Options struct {
	APIKey     string
	APISecret  string
	Port       int
	ExternalIP string
	BinaryName string

	// WarmUp defaults to DefaultWarmUp. A negative value disables the wait.
	WarmUp time.Duration

	// ConfigDir receives the generated configuration. Defaults to
	// os.TempDir().
	ConfigDir string

	// Sleep waits out the warm-up. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// OptionsFromConfig maps gateway configuration onto Options. externalIP is
// the configured or detected public address and may be empty.
func OptionsFromConfig(cfg *config.SignalingConfig, externalIP string) Options {
	return Options{
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		Port:       cfg.Port,
		ExternalIP: externalIP,
		BinaryName: cfg.BinaryName,
		WarmUp:     cfg.WarmUp,
	}
}

// Process is a running signaling server.
type Process struct {
	cmd        *exec.Cmd
	cancel     context.CancelFunc
	configPath string
	waitDone   chan struct{}
	waitErr    error
	stopOnce   sync.Once
}

// Start locates the binary, writes its configuration and spawns it. It
// returns (nil, nil) when there is nothing to manage: the binary is missing,
// something already listens on the port, or the configuration could not be
// written or the binary could not be executed. Those failures are logged;
// only media is affected, the rest of the gateway keeps running. The child
// is bound to ctx and is killed when ctx is cancelled. An error is returned
// only when ctx ends during the warm-up.
func Start(ctx context.Context, opts Options) (*Process, error) {
	binary := FindBinary(opts.BinaryName)
	if binary == "" {
		slog.Warn("signaling server binary not found; voice and video will not work",
			"binary", executableName(opts.BinaryName),
			"hint", "download livekit-server from https://github.com/livekit/livekit/releases and place it next to the gateway executable",
		)
		return nil, nil
	}
	slog.Info("found signaling server binary", "path", binary)

	dir := opts.ConfigDir
	if dir == "" {
		dir = os.TempDir()
	}
	configPath, err := WriteConfig(dir, opts)
	if err != nil {
		slog.Error("failed to write signaling server config; voice and video will not work", "error", err)
		return nil, nil
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(opts.Port))
	if PortInUse(addr) {
		slog.Info("signaling server already running, skipping managed start", "port", opts.Port)
		_ = os.Remove(configPath)
		return nil, nil
	}

	slog.Info("starting managed signaling server", "port", opts.Port)

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, binary, "--config", configPath)
	// Stdio stays nil, which exec connects to the null device.

	if err := cmd.Start(); err != nil {
		cancel()
		_ = os.Remove(configPath)
		slog.Error("failed to start signaling server; voice and video will not work",
			"path", binary,
			"error", err,
		)
		return nil, nil
	}

	p := &Process{
		cmd:        cmd,
		cancel:     cancel,
		configPath: configPath,
		waitDone:   make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.waitDone)
	}()

	warmUp := opts.WarmUp
	if warmUp == 0 {
		warmUp = DefaultWarmUp
	}
	if warmUp > 0 {
		sleep := opts.Sleep
		if sleep == nil {
			sleep = sleepContext
		}
		if err := sleep(ctx, warmUp); err != nil {
			p.Stop()
			return nil, err
		}
	}

	slog.Info("managed signaling server started", "pid", p.PID())
	return p, nil
}

// PID returns the child's process id.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// ConfigPath returns the generated configuration file.
func (p *Process) ConfigPath() string {
	return p.configPath
}

// Exited reports whether the child has exited.
func (p *Process) Exited() bool {
	select {
	case <-p.waitDone:
		return true
	default:
		return false
	}
}

// Stop kills the child, waits for it and removes the generated
// configuration. Removal failures are ignored. Stop is idempotent.
func (p *Process) Stop() {
	p.stopOnce.Do(func() {
		if p.cmd.Process != nil && !p.Exited() {
			if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				slog.Warn("failed to kill signaling server", "error", err)
			}
		}
		p.cancel()
		<-p.waitDone
		_ = os.Remove(p.configPath)
		slog.Info("signaling server stopped", "exit", p.waitErr)
	})
}

// PortInUse reports whether something accepts TCP connections on addr.
func PortInUse(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// FindBinary searches, in order, the directory of the running executable,
// its bin subdirectory, the working directory and PATH. It returns "" when
// the binary is not found.
func FindBinary(name string) string {
	exeName := executableName(name)

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		for _, candidate := range []string{
			filepath.Join(dir, exeName),
			filepath.Join(dir, "bin", exeName),
		} {
			if isFile(candidate) {
				return candidate
			}
		}
	}

	if wd, err := os.Getwd(); err == nil {
		if candidate := filepath.Join(wd, exeName); isFile(candidate) {
			return candidate
		}
	}

	if path, err := exec.LookPath(exeName); err == nil {
		return path
	}
	return ""
}

func executableName(name string) string {
	if name == "" {
		name = config.DefaultSignalingBinary
	}
	if runtime.GOOS == "windows" && filepath.Ext(name) != ".exe" {
		name += ".exe"
	}
	return name
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
