package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/authlog"
	"mercator-hq/ganymede/pkg/authlog/storage"
	"mercator-hq/ganymede/pkg/config"
)

var auditFlags struct {
	limit  int
	format string
	output string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Export the audit trail",
	Long: `Read the audit trail from the configured storage backend and export it.

The audit command works against the stored trail directly, so it can be
run while the server is down or from a copy of the database file.

Examples:
  # Print the most recent entries
  ganymede audit --limit 20

  # Export the full trail to a JSON file
  ganymede audit --format json --output audit.json

  # Export as CSV
  ganymede audit --format csv --output audit.csv`,
	RunE: exportAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().IntVar(&auditFlags.limit, "limit", 0, "max entries (0 = all)")
	auditCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")
	auditCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
}

func exportAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := storage.NewBackend(cfg.AuthLog.Audit)
	if err != nil {
		return fmt.Errorf("failed to open audit storage: %w", err)
	}
	defer backend.Close()

	entries, err := backend.List(context.Background(), auditFlags.limit)
	if err != nil {
		return fmt.Errorf("failed to read audit trail: %w", err)
	}

	var out io.Writer = os.Stdout
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch auditFlags.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "csv":
		return writeAuditCSV(out, entries)
	case "text", "":
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-20s  success=%-5t  %s  %s\n",
				e.Timestamp.UTC().Format(time.RFC3339), e.Event, e.Success, e.KeyHash, e.ToolName)
		}
		fmt.Fprintf(out, "\n%d entries\n", len(entries))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", auditFlags.format)
	}
}

func writeAuditCSV(out io.Writer, entries []*authlog.AuditEntry) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"timestamp", "event", "keyHash", "requestId", "toolName", "success"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			e.Event,
			e.KeyHash,
			e.RequestID,
			e.ToolName,
			strconv.FormatBool(e.Success),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
