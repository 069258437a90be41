// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Logger receives request diagnostics; *log.Logger satisfies it
type Logger interface {
	Printf(format string, v ...interface{})
}

// RetryPolicy controls how retryable failures are resent.
// MaxAttempts counts the first try; 0 retries until the context ends.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy gives up after three attempts one second apart
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: time.Second}

// Client issues register commands to one driver over a Transport
type Client struct {
	transport Transport
	driver    int
	policy    RetryPolicy
	logger    Logger

	mu    sync.Mutex
	stats *Statistics
}

// NewClient creates a client for the given driver number
func NewClient(transport Transport, driver int, policy RetryPolicy) *Client {
	return &Client{
		transport: transport,
		driver:    driver,
		policy:    policy,
		stats:     NewStatistics(),
	}
}

// SetLogger enables request logging; nil disables it
func (c *Client) SetLogger(l Logger) {
	c.logger = l
}

// Driver returns the driver number commands are addressed to
func (c *Client) Driver() int {
	return c.driver
}

// Statistics returns a snapshot of the exchange counters
func (c *Client) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.stats
}

func (c *Client) logf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}

// SendCommand sends one G-code line, retrying per the client's policy.
// A firmware "Error:" reply is returned as ErrCommandRejected and not retried.
func (c *Client) SendCommand(ctx context.Context, code string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		start := time.Now()
		reply, err := c.transport.Exchange(ctx, code)
		c.stats.Update(time.Since(start), err)

		if err == nil {
			c.logf("> %s < %q (%v)", code, reply, time.Since(start).Round(time.Millisecond))
			if rejected := checkReply(code, reply); rejected != nil {
				c.stats.Rejected++
				return reply, rejected
			}
			return reply, nil
		}

		c.logf("> %s failed (attempt %d): %v", code, attempt, err)
		if !IsRetryable(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", errors.Join(ctx.Err(), err)
		}
		if c.policy.MaxAttempts > 0 && attempt >= c.policy.MaxAttempts {
			return "", fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		c.stats.Retries++
		select {
		case <-ctx.Done():
			return "", errors.Join(ctx.Err(), err)
		case <-time.After(c.policy.Delay):
		}
	}
}

// ReadRegister reads one driver register
func (c *Client) ReadRegister(ctx context.Context, addr uint8) (uint32, error) {
	reply, err := c.SendCommand(ctx, ReadRegisterCommand(c.driver, addr))
	if err != nil {
		return 0, err
	}
	v, err := ParseRegisterValue(reply)
	if err != nil {
		return 0, fmt.Errorf("register 0x%02X: %w", addr, err)
	}
	c.logf("register[0x%02X] = 0x%08X", addr, v)
	return v, nil
}

// WriteRegister writes one driver register
func (c *Client) WriteRegister(ctx context.Context, addr uint8, value uint32) error {
	_, err := c.SendCommand(ctx, WriteRegisterCommand(c.driver, addr, value))
	if err != nil {
		return fmt.Errorf("register 0x%02X: %w", addr, err)
	}
	return nil
}
