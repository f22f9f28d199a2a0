package cmd

import (
	"fmt"
	"strings"

	"github.com/capsulecli/capsule/internal/audit"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logOperation string
)

// LogCmd shows the audit trail.
var LogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")

		result, err := workflows.ShowLog(cmd.Context(), workflows.ShowLogOptions{
			Limit:     logLimit,
			Operation: logOperation,
		})
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read the audit log: %v", err)
		}

		if len(result.Entries) == 0 {
			fmt.Println(ui.Muted.Sprint("the audit log is empty"))
			return nil
		}

		var b strings.Builder
		for _, entry := range result.Entries {
			b.WriteString(ui.Muted.Sprint(entry.Timestamp) + " " + ui.Highlight.Sprint(entry.Operation))
			b.WriteString(describeEntry(entry))
			b.WriteString("\n")
		}
		fmt.Print(ui.EnsureNewline(b.String()))
		return nil
	},
}

func describeEntry(entry audit.Entry) string {
	var parts []string
	if entry.KeyName != "" {
		parts = append(parts, entry.KeyName)
	}
	if entry.Recipient != "" {
		parts = append(parts, "for "+entry.Recipient)
	}
	if entry.Service != "" {
		parts = append(parts, entry.Service+"/"+entry.Handle)
	}
	if entry.Version != 0 {
		parts = append(parts, fmt.Sprintf("v%d", entry.Version))
	}
	if entry.OutputPath != "" {
		parts = append(parts, "→ "+entry.OutputPath)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func init() {
	registerCommon(LogCmd)

	LogCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "show only the most recent N entries")
	LogCmd.Flags().StringVar(&logOperation, "op", "", "filter by operation name")
}
