// cmd/chordkv is the CLI client for a chordkv node, built with Cobra in the
// same shape as the teacher's cmd/client. It restores the batch put/get/
// delete and colorized/table output the original Python client.py had
// (prettytable + colorama) that a plain Go port tends to drop down to
// one-key-at-a-time, uncolored printing.
//
// Usage:
//
//	chordkv put mykey "hello world"              --server http://localhost:5000
//	chordkv put --batch a=1,b=2,c=3              --server http://localhost:5000
//	chordkv get mykey                            --table
//	chordkv get --batch a,b,c                    --json
//	chordkv delete mykey
//	chordkv cluster nodes                        --table
//	chordkv cluster join 127.0.0.1:6000
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chordkv/internal/client"
)

var (
	serverAddr string
	timeout    time.Duration
	asJSON     bool
	asTable    bool
)

func main() {
	root := &cobra.Command{
		Use:   "chordkv",
		Short: "CLI client for a chordkv ring node",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"http://localhost:5000", "chordkv node address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"HTTP request timeout")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print output as JSON")
	root.PersistentFlags().BoolVar(&asTable, "table", false, "print output as an aligned table")

	root.AddCommand(putCmd(), getCmd(), deleteCmd(), clusterCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ─── put ──────────────────────────────────────────────────────────────────────

func putCmd() *cobra.Command {
	var batch string

	cmd := &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Store a key-value pair, or a batch with --batch k1=v1,k2=v2",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			ctx := context.Background()

			var results []*client.PutResult
			if batch != "" {
				pairs, err := parsePairs(batch)
				if err != nil {
					return err
				}
				for _, p := range pairs {
					r, err := c.Put(ctx, p.key, p.value)
					if err != nil {
						return fmt.Errorf("put %q: %w", p.key, err)
					}
					results = append(results, r)
				}
			} else {
				if len(args) != 2 {
					return fmt.Errorf("put requires <key> <value>, or --batch k1=v1,k2=v2")
				}
				r, err := c.Put(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				results = append(results, r)
			}

			printPutResults(results)
			return nil
		},
	}
	cmd.Flags().StringVar(&batch, "batch", "", "comma-separated key=value pairs")
	return cmd
}

// ─── get ──────────────────────────────────────────────────────────────────────

func getCmd() *cobra.Command {
	var batch string

	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Retrieve a value by key, or a batch with --batch k1,k2,k3",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			ctx := context.Background()

			var keys []string
			if batch != "" {
				keys = splitNonEmpty(batch)
			} else {
				if len(args) != 1 {
					return fmt.Errorf("get requires <key>, or --batch k1,k2,k3")
				}
				keys = args
			}

			var results []*client.GetResult
			for _, k := range keys {
				r, err := c.Get(ctx, k)
				if err != nil {
					return fmt.Errorf("get %q: %w", k, err)
				}
				results = append(results, r)
			}

			printGetResults(results)
			return nil
		},
	}
	cmd.Flags().StringVar(&batch, "batch", "", "comma-separated keys")
	return cmd
}

// ─── delete ───────────────────────────────────────────────────────────────────

func deleteCmd() *cobra.Command {
	var batch string

	cmd := &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a key, or a batch with --batch k1,k2,k3",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			ctx := context.Background()

			var keys []string
			if batch != "" {
				keys = splitNonEmpty(batch)
			} else {
				if len(args) != 1 {
					return fmt.Errorf("delete requires <key>, or --batch k1,k2,k3")
				}
				keys = args
			}

			var results []*client.DeleteResult
			for _, k := range keys {
				r, err := c.Delete(ctx, k)
				if err != nil {
					return fmt.Errorf("delete %q: %w", k, err)
				}
				results = append(results, r)
			}

			printDeleteResults(results)
			return nil
		},
	}
	cmd.Flags().StringVar(&batch, "batch", "", "comma-separated keys")
	return cmd
}

// ─── cluster ──────────────────────────────────────────────────────────────────

func clusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster introspection and join",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "nodes",
		Short: "List every node the target knows about",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			nodes, err := c.ClusterNodes(context.Background())
			if err != nil {
				return err
			}
			printNodes(nodes)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "join <seed_host:seed_port>",
		Short: "Trigger the join handshake against a seed node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			if err := c.ClusterJoin(context.Background(), args[0]); err != nil {
				return err
			}
			color.Green("joined via seed %s", args[0])
			return nil
		},
	})

	return cmd
}

// ─── batch parsing ────────────────────────────────────────────────────────────

type kv struct{ key, value string }

func parsePairs(batch string) ([]kv, error) {
	var pairs []kv
	for _, entry := range splitNonEmpty(batch) {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid batch entry %q: expected key=value", entry)
		}
		pairs = append(pairs, kv{key: parts[0], value: parts[1]})
	}
	return pairs, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ─── output formatting ────────────────────────────────────────────────────────

func printPutResults(results []*client.PutResult) {
	if asJSON {
		printJSON(results)
		return
	}
	if asTable {
		tw := newTable("STATUS", "KEY", "MESSAGE")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Status, r.Key, r.Message)
		}
		tw.Flush()
		return
	}
	for _, r := range results {
		if r.Status == "error" {
			color.Red("put %s: %s", r.Key, r.Message)
			continue
		}
		color.Green("stored %s", r.Key)
	}
}

func printGetResults(results []*client.GetResult) {
	if asJSON {
		printJSON(results)
		return
	}
	if asTable {
		tw := newTable("STATUS", "KEY", "VALUE")
		for _, r := range results {
			tw.Write([]byte(r.Status + "\t" + r.Key + "\t" + r.Value + "\n"))
		}
		tw.Flush()
		return
	}
	for _, r := range results {
		if r.Status == "error" {
			color.Yellow("%s: %s", r.Key, r.Message)
			continue
		}
		fmt.Printf("%s = %s\n", color.CyanString(r.Key), r.Value)
	}
}

func printDeleteResults(results []*client.DeleteResult) {
	if asJSON {
		printJSON(results)
		return
	}
	if asTable {
		tw := newTable("STATUS", "KEY", "MESSAGE")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Status, r.Key, r.Message)
		}
		tw.Flush()
		return
	}
	for _, r := range results {
		if r.Status == "error" {
			color.Red("delete %s: %s", r.Key, r.Message)
			continue
		}
		color.Green("deleted %s", r.Key)
	}
}

func printNodes(nodes []client.NodeInfo) {
	if asJSON {
		printJSON(nodes)
		return
	}
	tw := newTable("NODE_ID", "HOST", "PORT")
	for _, n := range nodes {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", n.ID, n.Host, n.Port)
	}
	tw.Flush()
}

func newTable(headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}
