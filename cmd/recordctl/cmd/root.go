// Package cmd wires recordctl's cobra commands together. recordctl is
// a small demo/debugging harness around protocol.RecordProtocol: it
// drives a client and server instance over an in-memory pipe so the
// record layer can be exercised without a real handshake or socket.
package cmd

import (
	"github.com/spf13/cobra"
)

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordctl",
		Short: "Drive a record protocol loopback for inspection and debugging",
	}

	cmd.AddCommand(loopbackCommand())

	return cmd
}
