// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/Thermoquad/sinestat/pkg/regaccess"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Send raw G-code and display the replies",
	Long: `Read G-code lines from standard input, send each to the controller and print
the reply with a timestamp.

Register replies (M569.2 reads) are decoded and annotated with the register
name. Lines starting with ';' are ignored, so a saved startup configuration
can be piped in directly.

Supports serial, WebSocket and Duet HTTP connections.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	client, closer, connInfo := OpenClient()
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Sinestat - G-code Console\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+D to exit\n\n")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		reply, err := client.SendCommand(ctx, line)
		timestamp := time.Now().Format("15:04:05.000")
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("Interrupted")
				return nil
			}
			if errors.Is(err, regaccess.ErrCommandRejected) {
				fmt.Printf("[%s] \033[1;31m%s\033[0m\n", timestamp, reply)
				continue
			}
			log.Printf("Send error: %v", err)
			continue
		}

		fmt.Printf("[%s] > %s\n", timestamp, line)
		for _, l := range strings.Split(reply, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				fmt.Printf("[%s] < %s\n", timestamp, l)
			}
		}
		if note := annotateRegister(line, reply); note != "" {
			fmt.Printf("[%s]   %s\n", timestamp, note)
		}
	}

	stats := client.Statistics()
	fmt.Printf("\n%s", stats.String())
	return scanner.Err()
}

// annotateRegister names the register of an M569.2 read and decodes the
// fields sinestat knows about
func annotateRegister(line, reply string) string {
	var driver, addr int
	if n, _ := fmt.Sscanf(strings.ToUpper(line), "M569.2 P%d R%d", &driver, &addr); n != 2 || strings.Contains(strings.ToUpper(line), " V") {
		return ""
	}
	value, err := regaccess.ParseRegisterValue(reply)
	if err != nil {
		return ""
	}

	name := mslut.RegisterName(uint8(addr))
	switch uint8(addr) {
	case mslut.RegMSCNT:
		return fmt.Sprintf("%s: position %d", name, value&0x3FF)
	case mslut.RegMSCURACT:
		a, b := regaccess.DecodeCurrents(value)
		return fmt.Sprintf("%s: CUR_A=%d CUR_B=%d", name, a, b)
	case mslut.RegMSLUTSTART:
		return fmt.Sprintf("%s: START_SIN=%d START_SIN90=%d", name, value&0xFF, (value>>16)&0xFF)
	}
	return fmt.Sprintf("%s = 0x%08X", name, value)
}
