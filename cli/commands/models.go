package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/fernlabs/puterai/puter"
)

func (a *App) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Long: `List the models available from the Puter AI service.

When the live catalog cannot be fetched, a built-in catalog is shown instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runModels(cmd.Context())
		},
	}
}

func (a *App) runModels(ctx context.Context) error {
	provider, err := a.createProvider()
	if err != nil {
		return a.failSetup(err)
	}

	models := provider.Models(ctx)

	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}

	// Effective default: --model flag or config, else the client default.
	defaultModel := a.model
	if defaultModel == "" {
		defaultModel = string(puter.DefaultModel)
	}

	headers := []string{"ID", "NAME", "PROVIDER", "CONTEXT", "MAX OUT", "TOOLS", "VISION"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}

	marked := false
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		id := string(m.ID)
		if id == defaultModel {
			id += " *"
			marked = true
		}
		rows = append(rows, []string{
			id,
			m.Name,
			m.Provider,
			strconv.Itoa(m.ContextWindow),
			strconv.Itoa(m.MaxOutputTokens),
			yesNo(m.SupportsTools),
			yesNo(m.SupportsVision),
		})
	}

	fmt.Fprintln(a.stdout, renderTable(headers, rows, aligns))
	if marked {
		fmt.Fprintln(a.stdout, "* default model")
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
