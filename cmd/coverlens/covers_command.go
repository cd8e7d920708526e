package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sydlexius/coverlens/internal/aggregate"
	"github.com/sydlexius/coverlens/internal/analysis"
	"github.com/sydlexius/coverlens/internal/chart"
	"github.com/sydlexius/coverlens/internal/covers"
	"github.com/sydlexius/coverlens/internal/filesystem"
)

func newCoversCommand(ctx *commandContext) *cobra.Command {
	var target analysis.Target

	cmd := &cobra.Command{
		Use:     "covers",
		Short:   "List covers of an artist's songs",
		Args:    cobra.NoArgs,
		Example: "  coverlens covers --uri https://secondhandsongs.com/artist/11578 --name \"Nina Simone\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := ctx.services(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			report, err := svc.Analyze(cmd.Context(), target)
			if err != nil {
				return err
			}
			if !report.Outcome.OK() {
				return printNotice(cmd, ctx, report.Outcome, report.Notice())
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"artist": report.Artist,
					"data":   report.Outcome.Payload,
				})
			}
			printTable(cmd, []string{"Title", "Performer", "Year", "Genre"},
				coverRows(report.Outcome.Payload),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().StringVar(&target.Ref, "uri", "", "Artist profile URI (required)")
	cmd.Flags().StringVar(&target.Name, "name", "", "Artist name (looked up when omitted)")
	_ = cmd.MarkFlagRequired("uri")
	return cmd
}

func coverRows(records []covers.CoverRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		year := ""
		if r.Year != nil {
			year = strconv.Itoa(*r.Year)
		}
		rows = append(rows, []string{r.Title, r.Performer, year, r.Genre})
	}
	return rows
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var uris, names []string
	var graphTarget, chartView, chartOut string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Aggregate covers of one or more artists by performer, genre and year",
		Long: "Resolve the covers of every --uri independently and aggregate the\n" +
			"successful ones. --name values pair with --uri values by position.",
		Args: cobra.NoArgs,
		Example: "  coverlens analyze --uri https://secondhandsongs.com/artist/11578\n" +
			"  coverlens analyze --uri URI1 --uri URI2 --chart genre --out genre.png",
		RunE: func(cmd *cobra.Command, args []string) error {
			var view chart.View
			if chartView != "" {
				v, err := chart.ParseView(chartView)
				if err != nil {
					return err
				}
				view = v
			}

			targets := make([]analysis.Target, len(uris))
			for i, ref := range uris {
				targets[i] = analysis.Target{Ref: ref}
				if i < len(names) {
					targets[i].Name = names[i]
				}
			}

			svc, _, err := ctx.services(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			combined, err := svc.AnalyzeMany(cmd.Context(), targets)
			if err != nil {
				return err
			}
			if first := firstFailure(combined); first != nil {
				return printNotice(cmd, ctx, first.Outcome, first.Notice())
			}

			if view != "" {
				if err := writeChart(cmd, view, chartOut, combined.Summary); err != nil {
					return err
				}
			}
			return printAnalysis(cmd, ctx, combined, graphTarget)
		},
	}

	cmd.Flags().StringArrayVar(&uris, "uri", nil, "Artist profile URI (repeatable, required)")
	cmd.Flags().StringArrayVar(&names, "name", nil, "Artist name for the --uri at the same position")
	cmd.Flags().StringVar(&graphTarget, "target", aggregate.DefaultTarget, "Label of the influence graph target")
	cmd.Flags().StringVar(&chartView, "chart", "", "Also render a PNG chart: genre, years or influence")
	cmd.Flags().StringVar(&chartOut, "out", "", "Chart output path (default <view>.png)")
	_ = cmd.MarkFlagRequired("uri")
	return cmd
}

// firstFailure returns the first report when no artist resolved, else nil.
func firstFailure(c *analysis.Combined) *analysis.Report {
	for _, rep := range c.Reports {
		if rep.Outcome.OK() {
			return nil
		}
	}
	return c.Reports[0]
}

func writeChart(cmd *cobra.Command, view chart.View, path string, s aggregate.Summary) error {
	if path == "" {
		path = string(view) + ".png"
	}
	err := filesystem.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return chart.Render(w, view, s)
	})
	if err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s chart to %s\n", view, path)
	return nil
}

func printAnalysis(cmd *cobra.Command, ctx *commandContext, c *analysis.Combined, target string) error {
	if ctx.jsonOutput() {
		artists := make([]map[string]any, len(c.Reports))
		for i, rep := range c.Reports {
			artists[i] = map[string]any{
				"artist":  rep.Artist,
				"outcome": rep.Outcome.Info(maxBodyInNotice),
				"records": len(rep.Outcome.Payload),
				"notice":  rep.Notice(),
			}
		}
		return writeJSON(cmd, map[string]any{
			"artists": artists,
			"data": map[string]any{
				"influence": c.Summary.TopInfluences(),
				"genres":    c.Summary.Genres(),
				"years":     c.Summary.Years(),
				"graph":     c.Summary.Graph(target),
			},
		})
	}

	artistRows := make([][]string, 0, len(c.Reports))
	for _, rep := range c.Reports {
		artistRows = append(artistRows, []string{
			rep.Artist.Name, rep.Outcome.Tag.String(),
			strconv.Itoa(len(rep.Outcome.Payload)), rep.Notice(),
		})
	}
	printTable(cmd, []string{"Artist", "Outcome", "Records", "Notice"}, artistRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nTop influential artists")
	printTable(cmd, []string{"Performer", "Covers"}, countRows(c.Summary.TopInfluences()),
		[]columnAlignment{alignLeft, alignRight})

	fmt.Fprintln(out, "\nGenre distribution")
	printTable(cmd, []string{"Genre", "Covers"}, countRows(c.Summary.Genres()),
		[]columnAlignment{alignLeft, alignRight})

	fmt.Fprintln(out, "\nCovers over time")
	years := c.Summary.Years()
	yearRows := make([][]string, 0, len(years))
	for _, y := range years {
		yearRows = append(yearRows, []string{strconv.Itoa(y.Year), strconv.Itoa(y.Count)})
	}
	printTable(cmd, []string{"Year", "Covers"}, yearRows, []columnAlignment{alignRight, alignRight})

	fmt.Fprintln(out, "\nInfluence graph")
	edges := c.Summary.Graph(target)
	edgeRows := make([][]string, 0, len(edges))
	for _, e := range edges {
		edgeRows = append(edgeRows, []string{e.From, e.To, strconv.Itoa(e.Weight)})
	}
	printTable(cmd, []string{"From", "To", "Weight"}, edgeRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight})
	return nil
}

func countRows(counts []aggregate.Count) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	return rows
}
