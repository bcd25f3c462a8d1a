// Package main implements jqlsh, a debug CLI over the JSONDB engine: run
// one JQL query against a server/database and print its result, or run
// queries read from stdin one line at a time. It exists to make the
// engine runnable from a terminal, the way the teacher's own main.go wires
// its HTTP server.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/na2axl/jsondb-go/config"
	"github.com/na2axl/jsondb-go/engine"
	"github.com/na2axl/jsondb-go/session"
	"github.com/na2axl/jsondb-go/tools"
)

type rootFlags struct {
	root     string
	server   string
	database string
}

func main() {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "jqlsh",
		Short: "Debug shell for the JSONDB query engine",
	}
	rootCmd.PersistentFlags().StringVar(&flags.root, "root", config.Cfg.RootDir, "Root directory holding servers/<server>/<database>")
	rootCmd.PersistentFlags().StringVar(&flags.server, "server", "default", "Server directory name")
	rootCmd.PersistentFlags().StringVar(&flags.database, "database", "default", "Database directory name")

	rootCmd.AddCommand(queryCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func queryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <jql>",
		Short: "Run one query and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logStartupInfo(flags)
			s := openSession(flags)
			res, err := s.Query(args[0])
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
}

func serveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Read queries from stdin, one per line, until EOF",
		RunE: func(_ *cobra.Command, _ []string) error {
			logStartupInfo(flags)
			s := openSession(flags)
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				res, err := s.Query(line)
				if err != nil {
					tools.Logger.Error("query failed", "query", line, "error", err)
					continue
				}
				printResult(res)
			}
			return scanner.Err()
		},
	}
}

func openSession(flags *rootFlags) *session.Session {
	cfg := config.Cfg
	cfg.RootDir = flags.root
	return session.Open(cfg, flags.server, flags.database)
}

func logStartupInfo(flags *rootFlags) {
	tools.Logger.Info("jqlsh starting",
		"root", flags.root,
		"server", flags.server,
		"database", flags.database,
		"lock_timeout", config.Cfg.LockTimeout,
		"cache_enabled", config.Cfg.CacheEnabled,
	)
}

// printResult renders a query's outcome: one line per row for select/count,
// or a short mutation summary otherwise.
func printResult(res *engine.Result) {
	if res.Mutated {
		fmt.Printf("ok (last_insert_id=%d)\n", res.LastInsertID)
		return
	}
	for _, row := range res.Rows {
		parts := make([]string, len(row.Keys))
		for i, key := range row.Keys {
			cell := row.Get(key)
			if cell.Linked != nil {
				parts[i] = fmt.Sprintf("%s=%v", key, cell.Linked)
			} else {
				parts[i] = fmt.Sprintf("%s=%s", key, cell.Value.Text())
			}
		}
		fmt.Println(strings.Join(parts, " "))
	}
}
