// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package regaccess reads and writes stepper driver registers through a
// printer controller's G-code interface (M569.2).
//
// Commands travel over a Transport: a line-oriented stream (USB serial or a
// WebSocket bridge) or the Duet HTTP API. Client adds retries and
// statistics on top, and ReadTable/WriteTable move whole microstep tables.
package regaccess
