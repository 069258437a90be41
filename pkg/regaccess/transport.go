// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Transport sends one G-code line and returns the controller's reply.
// Implementations need not be safe for concurrent use; Client serializes calls.
type Transport interface {
	Exchange(ctx context.Context, line string) (string, error)
}

// lineResult is one line (or the terminal read error) from the reader goroutine
type lineResult struct {
	line string
	err  error
}

// LineTransport speaks G-code over a line-oriented stream such as a USB
// serial port or a WebSocket bridge.
//
// A reply is every line up to and including a line equal to "ok" or one
// starting with "Error:". The terminating "ok" is not part of the reply.
type LineTransport struct {
	rw io.ReadWriter

	once  sync.Once
	lines chan lineResult
	err   error // Sticky read error once the stream has failed
}

// NewLineTransport wraps a stream. The stream is read by a background
// goroutine that exits when a read fails (for example after Close).
func NewLineTransport(rw io.ReadWriter) *LineTransport {
	return &LineTransport{rw: rw}
}

func (l *LineTransport) start() {
	l.once.Do(func() {
		l.lines = make(chan lineResult, 64)
		go func() {
			scanner := bufio.NewScanner(l.rw)
			for scanner.Scan() {
				l.lines <- lineResult{line: strings.TrimRight(scanner.Text(), "\r")}
			}
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			l.lines <- lineResult{err: err}
			close(l.lines)
		}()
	})
}

// Exchange implements Transport
func (l *LineTransport) Exchange(ctx context.Context, line string) (string, error) {
	l.start()
	if l.err != nil {
		return "", &RetryableError{Command: line, Err: l.err}
	}

	// Discard unsolicited output left over from earlier commands
	for drained := false; !drained; {
		select {
		case r, ok := <-l.lines:
			if !ok || r.err != nil {
				l.fail(r.err)
				return "", &RetryableError{Command: line, Err: l.err}
			}
		default:
			drained = true
		}
	}

	if _, err := io.WriteString(l.rw, line+"\n"); err != nil {
		return "", &RetryableError{Command: line, Err: fmt.Errorf("write failed: %w", err)}
	}

	var reply []string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case r, ok := <-l.lines:
			if !ok || r.err != nil {
				l.fail(r.err)
				return "", &RetryableError{Command: line, Err: l.err}
			}
			text := strings.TrimSpace(r.line)
			if text == "ok" {
				return strings.Join(reply, "\n"), nil
			}
			// Some firmware prefixes the reply on the ok line itself
			if rest, found := strings.CutSuffix(text, " ok"); found {
				return strings.Join(append(reply, rest), "\n"), nil
			}
			reply = append(reply, r.line)
			if strings.HasPrefix(text, "Error:") {
				return strings.Join(reply, "\n"), nil
			}
		}
	}
}

func (l *LineTransport) fail(err error) {
	if err == nil {
		err = io.EOF
	}
	l.err = fmt.Errorf("read failed: %w", err)
}
