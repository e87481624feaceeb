//go:build linux

// Package procattach is an external collaborator in the spec.md §6
// sense: it implements rproc.MemoryReader by ptrace-attaching to a
// running process. None of this package is consumed by invariants in
// spec.md §3/§8 - the core only ever sees the MemoryReader interface.
//
// The dedicated-OS-thread-plus-channel pattern below is grounded on
// the teacher's program/server/ptrace.go, which serializes all ptrace
// syscalls onto one locked OS thread because ptrace state is
// per-thread on Linux.
package procattach

import (
	"os"
	"runtime"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/itsethra/uesdk/internal/rproc"
)

// Process is a MemoryReader backed by PTRACE_PEEKDATA against a live,
// already-running process.
type Process struct {
	pid int

	fc chan func() error
	ec chan error
}

// Attach ptrace-attaches to pid and waits for it to stop.
func Attach(pid int) (*Process, error) {
	p := &Process{
		pid: pid,
		fc:  make(chan func() error),
		ec:  make(chan error),
	}
	go p.run()

	var attachErr error
	p.fc <- func() error {
		attachErr = unix.PtraceAttach(pid)
		return attachErr
	}
	<-p.ec
	if attachErr != nil {
		return nil, errors.Wrapf(attachErr, "ptrace attach to pid %d", pid)
	}

	var ws syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &ws, 0, nil); err != nil {
		return nil, errors.Wrapf(err, "waiting for pid %d to stop", pid)
	}

	log.Info().Int("pid", pid).Msg("attached to process")
	return p, nil
}

// run pins ptrace calls to one OS thread for the lifetime of the
// attachment, same as the teacher's ptraceRun.
func (p *Process) run() {
	runtime.LockOSThread()
	for f := range p.fc {
		p.ec <- f()
	}
}

// Detach releases the ptrace attachment and lets the target continue.
func (p *Process) Detach() error {
	var err error
	p.fc <- func() error {
		err = unix.PtraceDetach(p.pid)
		return err
	}
	<-p.ec
	close(p.fc)
	return err
}

// Read implements rproc.MemoryReader using PTRACE_PEEKDATA, word at a
// time, same as the teacher's ptracePeek built on PtracePeekText.
func (p *Process) Read(address rproc.Address, out []byte) error {
	var readErr error
	p.fc <- func() error {
		n, err := syscall.PtracePeekData(p.pid, uintptr(address), out)
		if err != nil {
			readErr = &rproc.ReadError{Kind: classify(err), Addr: address, Size: len(out), Err: err}
			return readErr
		}
		if n != len(out) {
			readErr = &rproc.ReadError{Kind: rproc.ShortRead, Addr: address, Size: len(out)}
			return readErr
		}
		return nil
	}
	<-p.ec
	return readErr
}

func classify(err error) rproc.ReadErrorKind {
	switch {
	case errors.Is(err, syscall.EIO), errors.Is(err, syscall.EFAULT):
		return rproc.InvalidAddress
	case errors.Is(err, syscall.EPERM), errors.Is(err, os.ErrPermission):
		return rproc.PermissionDenied
	default:
		return rproc.InvalidAddress
	}
}
