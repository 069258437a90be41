// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"fmt"
	"time"
)

// Statistics tracks command exchanges and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalExchanges uint64
	Successful     uint64
	Failures       uint64
	Retries        uint64
	Rejected       uint64

	// Round-trip times of successful exchanges
	TotalRTT time.Duration
	MaxRTT   time.Duration

	// Rates (calculated)
	ExchangeRate float64 // exchanges/sec
	ErrorRate    float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one exchange and its outcome
func (s *Statistics) Update(rtt time.Duration, err error) {
	s.TotalExchanges++
	if err != nil {
		s.Failures++
	} else {
		s.Successful++
		s.TotalRTT += rtt
		if rtt > s.MaxRTT {
			s.MaxRTT = rtt
		}
	}
	s.LastUpdateTime = time.Now()
}

// AverageRTT returns the mean round-trip time of successful exchanges
func (s *Statistics) AverageRTT() time.Duration {
	if s.Successful == 0 {
		return 0
	}
	return s.TotalRTT / time.Duration(s.Successful)
}

// CalculateRates calculates exchange and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.ExchangeRate = float64(s.TotalExchanges) / elapsed
		s.ErrorRate = float64(s.Failures+s.Rejected) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var successPercent, failurePercent float64
	if s.TotalExchanges > 0 {
		successPercent = float64(s.Successful) * 100.0 / float64(s.TotalExchanges)
		failurePercent = float64(s.Failures) * 100.0 / float64(s.TotalExchanges)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Exchanges:       %8d\n", s.TotalExchanges)
	result += fmt.Sprintf("Successful:      %8d (%.1f%%)\n", s.Successful, successPercent)
	if s.Failures > 0 {
		result += fmt.Sprintf("Failures:        %8d (%.1f%%)\n", s.Failures, failurePercent)
	}
	if s.Retries > 0 {
		result += fmt.Sprintf("Retries:         %8d\n", s.Retries)
	}
	if s.Rejected > 0 {
		result += fmt.Sprintf("Rejected:        %8d\n", s.Rejected)
	}
	result += fmt.Sprintf("Average RTT:     %8v\n", s.AverageRTT().Round(time.Millisecond))
	result += fmt.Sprintf("Max RTT:         %8v\n", s.MaxRTT.Round(time.Millisecond))
	result += fmt.Sprintf("Exchange Rate:   %8.1f cmds/sec\n", s.ExchangeRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}
