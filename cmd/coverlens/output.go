package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/coverlens/internal/shs"
)

// maxBodyInNotice bounds the upstream body echoed in JSON notices.
const maxBodyInNotice = 2048

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type noticeOutput struct {
	Notice  string          `json:"notice"`
	Outcome shs.OutcomeInfo `json:"outcome"`
}

// printNotice reports a non-success outcome without failing the command.
// With --json the notice goes to stdout; otherwise to stderr.
func printNotice[T any](cmd *cobra.Command, ctx *commandContext, o shs.Outcome[T], notice string) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, noticeOutput{Notice: notice, Outcome: o.Info(maxBodyInNotice)})
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "notice:", notice)
	return nil
}

func printTable(cmd *cobra.Command, headers []string, rows [][]string, aligns []columnAlignment) {
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), headers, rows, aligns))
}
