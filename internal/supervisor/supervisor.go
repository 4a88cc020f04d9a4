// Package supervisor implements the Engine lifecycle: create an Engine
// row, discover the host's IP address, spawn the Event and Task
// processes as child processes with their output redirected under
// ./logs/, and mark the Engine Running.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	gopsnet "github.com/shirou/gopsutil/v3/net"

	"github.com/mercadolab/workflow-engine/internal/config"
	"github.com/mercadolab/workflow-engine/internal/logger"
	"github.com/mercadolab/workflow-engine/internal/model"
	"github.com/mercadolab/workflow-engine/internal/store"
)

// ErrNoNetworkInterface is returned when no up, non-loopback interface
// with an IPv4 address can be found (mirrors cli.rs's
// get_system_ip_address "No default interface found").
var ErrNoNetworkInterface = errors.New("no usable network interface found")

// ProcessKind names which child process a spawn targets.
type ProcessKind string

const (
	EventProcess ProcessKind = "event"
	TaskProcess  ProcessKind = "task"
)

// Start runs the Engine's full bring-up sequence: run migrations,
// discover the host IP, insert an Engine row, spawn both child
// processes, and mark the Engine Running. It returns the new Engine's
// row.
func Start(ctx context.Context, cfg *config.Config, db *store.DB, engines store.EngineStore) (*model.Engine, error) {
	log := logger.WithComponent("supervisor")

	if err := store.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Msg("migrations applied")

	ip, err := discoverIPAddress()
	if err != nil {
		return nil, err
	}

	engine, err := engines.Create(ctx, cfg.Engine.Name, ip)
	if err != nil {
		return nil, fmt.Errorf("create engine entry: %w", err)
	}
	log.Info().Int32("engine_uid", engine.UID).Str("ip_address", ip).Msg("engine entry created")

	if err := spawnProcess(cfg, EventProcess, engine.UID); err != nil {
		return nil, fmt.Errorf("spawn event process: %w", err)
	}
	if err := spawnProcess(cfg, TaskProcess, engine.UID); err != nil {
		return nil, fmt.Errorf("spawn task process: %w", err)
	}

	if err := engines.SetStatus(ctx, engine.UID, model.EngineRunning); err != nil {
		return nil, fmt.Errorf("mark engine running: %w", err)
	}
	log.Info().Int32("engine_uid", engine.UID).Msg("engine started")

	return engine, nil
}

// discoverIPAddress picks the first interface that is up, not
// loopback, and carries an IPv4 address — the Go equivalent of
// cli.rs::get_system_ip_address's pnet interface scan.
func discoverIPAddress() (string, error) {
	ifaces, err := gopsnet.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list network interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		for _, addr := range iface.Addrs {
			ip := addr.Addr
			if idx := strings.Index(ip, "/"); idx != -1 {
				ip = ip[:idx]
			}
			if strings.Contains(ip, ":") {
				continue // skip IPv6, the original only considers IPv4
			}
			if ip != "" {
				return ip, nil
			}
		}
	}

	return "", ErrNoNetworkInterface
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// spawnProcess truncates the process's log files and spawns it as a
// detached child, mirroring cli.rs::start_process: in production
// (ENVIRONMENT=prod) it re-execs this same binary; otherwise it shells
// out through `go run .` for development convenience.
func spawnProcess(cfg *config.Config, kind ProcessKind, engineUID int32) error {
	if err := os.MkdirAll(cfg.Engine.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	stdoutPath := filepath.Join(cfg.Engine.LogDir, string(kind)+"_stdout.txt")
	stderrPath := filepath.Join(cfg.Engine.LogDir, string(kind)+"_stderr.txt")

	stdout, err := createAndClearLogFile(stdoutPath)
	if err != nil {
		return err
	}
	stderr, err := createAndClearLogFile(stderrPath)
	if err != nil {
		stdout.Close()
		return err
	}

	verb := "start-event-process"
	if kind == TaskProcess {
		verb = "start-task-process"
	}

	var cmd *exec.Cmd
	if cfg.Engine.Environment == "prod" {
		exePath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve executable path: %w", err)
		}
		cmd = exec.Command(exePath, verb, strconv.Itoa(int(engineUID)))
	} else {
		cmd = exec.Command("go", "run", ".", verb, strconv.Itoa(int(engineUID)))
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s process: %w", kind, err)
	}
	// Intentionally not waited on: the child outlives this call, the
	// same fire-and-forget shape as cli.rs's `let mut _child = ...`.
	return nil
}

func createAndClearLogFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file %s: %w", path, err)
	}
	return f, nil
}
