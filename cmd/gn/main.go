// gn generates TCP or UDP traffic against a target address and reports byte
// counts, success rates and throughput, or listens for that traffic and
// echoes received payloads to an output sink.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "gn",
		Short:         "Write data over TCP/UDP sockets, or serve as the receiving end",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newWriteCommand())
	root.AddCommand(newServeCommand())
	return root
}
