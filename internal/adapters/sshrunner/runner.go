// Package sshrunner implements the command-execution collaborator over SSH
// for NX-OS devices.
package sshrunner

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/nxfleet/profilesync/internal/core/domain"
	"github.com/nxfleet/profilesync/internal/core/services/commands"
)

// Runner dials a fresh SSH connection per operation. NX-OS handles exec
// sessions for show commands; configuration pushes go through a PTY shell
// because config mode is interactive.
type Runner struct {
	creds   domain.Credentials
	timeout time.Duration
}

// New builds a runner with the shared fleet credentials.
func New(creds domain.Credentials, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{creds: creds, timeout: timeout}
}

// CaptureConfig retrieves the running interface configuration.
func (r *Runner) CaptureConfig(ctx context.Context, dev domain.Device) (string, error) {
	return r.runShow(ctx, dev, commands.CaptureConfigCommand())
}

// CaptureMACTable retrieves the MAC address table. An empty table is a
// valid result.
func (r *Runner) CaptureMACTable(ctx context.Context, dev domain.Device) (string, error) {
	return r.runShow(ctx, dev, commands.CaptureMACTableCommand())
}

// ApplyCommands pushes a configuration command sequence inside config mode.
func (r *Runner) ApplyCommands(ctx context.Context, dev domain.Device, cmds []string) error {
	client, err := r.dial(ctx, dev)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("session to %s: %w", dev.Name, err)
	}
	defer session.Close()

	// Config mode needs an interactive shell.
	if err := session.RequestPty("vt100", 80, 40, ssh.TerminalModes{}); err != nil {
		return fmt.Errorf("request pty on %s: %w", dev.Name, err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe on %s: %w", dev.Name, err)
	}
	var output bytes.Buffer
	session.Stdout = &output
	session.Stderr = &output

	if err := session.Shell(); err != nil {
		return fmt.Errorf("start shell on %s: %w", dev.Name, err)
	}

	fmt.Fprintln(stdin, "terminal length 0")
	fmt.Fprintln(stdin, "configure terminal")
	for _, cmd := range cmds {
		fmt.Fprintln(stdin, cmd)
	}
	fmt.Fprintln(stdin, "end")
	fmt.Fprintln(stdin, "exit")

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("config session on %s: %w", dev.Name, err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	if msg, bad := rejectedCommand(output.String()); bad {
		return fmt.Errorf("device %s rejected command: %s", dev.Name, msg)
	}
	return nil
}

func (r *Runner) runShow(ctx context.Context, dev domain.Device, command string) (string, error) {
	client, err := r.dial(ctx, dev)
	if err != nil {
		return "", err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("session to %s: %w", dev.Name, err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.Output(command)
		done <- result{out, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("run %q on %s: %w", command, dev.Name, res.err)
		}
		return string(res.out), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Runner) dial(ctx context.Context, dev domain.Device) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: r.creds.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(r.creds.Password),
		},
		// Fleet switches live on a management network without a curated
		// known_hosts; host key pinning is handled at the bastion.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.timeout,
	}

	deadline, ok := ctx.Deadline()
	if ok && time.Until(deadline) < config.Timeout {
		config.Timeout = time.Until(deadline)
	}

	client, err := ssh.Dial("tcp", dev.Addr(), config)
	if err != nil {
		log.Printf("Warning: dial %s (%s) failed: %v", dev.Name, dev.Addr(), err)
		return nil, fmt.Errorf("dial %s: %w", dev.Name, err)
	}
	return client, nil
}

// rejectedCommand scans a config session transcript for NX-OS error
// markers. The shell does not propagate per-command exit codes.
func rejectedCommand(transcript string) (string, bool) {
	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "% Invalid command") ||
			strings.HasPrefix(trimmed, "ERROR:") ||
			strings.HasPrefix(trimmed, "% Permission denied") {
			return trimmed, true
		}
	}
	return "", false
}
