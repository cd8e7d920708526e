package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sydlexius/coverlens/internal/shs"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var q shs.SearchQuery
	var kind string

	cmd := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Search artists, performances or works",
		Long: "Search SecondHandSongs. Positional terms are used as the artist name\n" +
			"for --kind artist and as the title for the other kinds.",
		Example: "  coverlens search Nina Simone\n" +
			"  coverlens search --kind performance --title \"Feeling Good\" --performer Muse",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Kind = shs.EntityKind(kind)
			if terms := strings.TrimSpace(strings.Join(args, " ")); terms != "" {
				if q.Kind == shs.EntityArtist && q.Name == "" {
					q.Name = terms
				} else if q.Title == "" {
					q.Title = terms
				}
			}

			_, client, err := ctx.services(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out, err := client.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			if !out.OK() {
				return printNotice(cmd, ctx, out, out.Notice(string(q.Kind)+" search"))
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"outcome":   out.Info(0),
					"data":      out.Payload,
					"page":      q.EffectivePage(),
					"page_size": q.EffectivePageSize(),
				})
			}
			rows := make([][]string, 0, len(out.Payload))
			for _, rec := range out.Payload {
				rows = append(rows, []string{rec.Name, rec.Subtype, rec.ProfileRef})
			}
			printTable(cmd, []string{"Name", "Type", "URI"}, rows, nil)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(shs.EntityArtist), "Entity kind: artist, performance or work")
	cmd.Flags().StringVar(&q.Name, "name", "", "Artist name (artist)")
	cmd.Flags().StringVar(&q.Title, "title", "", "Title (performance, work)")
	cmd.Flags().StringVar(&q.Performer, "performer", "", "Performer name (performance)")
	cmd.Flags().StringVar(&q.Date, "date", "", "Date (performance)")
	cmd.Flags().StringVar(&q.Credits, "credits", "", "Credited writers (work)")
	cmd.Flags().IntVar(&q.Page, "page", 1, "Result page, starting at 1")
	cmd.Flags().IntVar(&q.PageSize, "page-size", shs.DefaultPageSize, "Results per page (1-100)")
	return cmd
}
