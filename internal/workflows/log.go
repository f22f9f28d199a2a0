package workflows

import (
	"context"

	"github.com/capsulecli/capsule/internal/audit"
)

// ShowLogOptions configures the log workflow.
type ShowLogOptions struct {
	// Limit caps the number of entries returned, newest last. Zero means all.
	Limit int

	// Operation filters entries to one operation name. Empty means all.
	Operation string
}

// ShowLogResult contains audit log entries for display.
type ShowLogResult struct {
	Entries []audit.Entry
}

// ShowLog reads the audit log and applies the requested filters. A missing
// log yields an empty result.
func ShowLog(ctx context.Context, opts ShowLogOptions) (*ShowLogResult, error) {
	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, err
	}

	if opts.Operation != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.Operation == opts.Operation {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[len(entries)-opts.Limit:]
	}

	return &ShowLogResult{Entries: entries}, nil
}
