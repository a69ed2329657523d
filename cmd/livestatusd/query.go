package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cuemby/livestatus/pkg/client"
	"github.com/cuemby/livestatus/pkg/config"
	"github.com/cuemby/livestatus/pkg/livestatus"
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [REQUEST]",
	Short: "Send a request to a running server",
	Long: `Send a request to a running server and print the response body.

The request is taken from the arguments, with "\n" sequences turned into
line breaks, or read from stdin when no argument is given:

  livestatusd query 'GET hosts\nColumns: name state'
  printf 'GET services\nStats: state = 2\n' | livestatusd query`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		var request string
		if len(args) > 0 {
			request = strings.ReplaceAll(strings.Join(args, " "), `\n`, "\n")
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read request: %w", err)
			}
			request = string(data)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := client.NewClient(addr).WithTimeout(timeout).Query(ctx, request)
		if err != nil {
			return err
		}
		if !resp.OK() {
			return fmt.Errorf("request failed with status %d: %s", resp.Status, strings.TrimSpace(resp.Body))
		}
		fmt.Fprint(cmd.OutOrStdout(), resp.Body)
		return nil
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns [TABLE]",
	Short: "List tables and their columns",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := livestatus.NewEngine(store.New(), nil).Registry()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()

		if len(args) == 0 {
			fmt.Fprintln(w, "TABLE\tCOLUMNS")
			for _, t := range registry.Tables() {
				fmt.Fprintf(w, "%s\t%d\n", t.Name, len(t.Columns()))
			}
			return nil
		}

		t, ok := registry.Table(args[0])
		if !ok {
			return fmt.Errorf("no such table %q", args[0])
		}
		fmt.Fprintln(w, "NAME\tTYPE\tDESCRIPTION")
		for _, col := range t.Columns() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", col.Name, col.Type, col.Description)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().String("addr", config.DefaultListen, "Server address (host:port, or a unix socket path)")
	queryCmd.Flags().Duration("timeout", 10*time.Second, "Request timeout")
}
