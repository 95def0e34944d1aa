package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vcrobe/lazydom/internal/demo"
	"github.com/vcrobe/lazydom/runtime"
)

var renderCmd = &cobra.Command{
	Use:   "render <component>",
	Short: "Render a component to HTML",
	Long: `Renders a component into an in-memory document and prints the HTML.
Known components: ` + strings.Join(demo.Components, ", ") + `, plus any registered tag.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		rawProps, _ := cmd.Flags().GetStringArray("prop")
		clicks, _ := cmd.Flags().GetStringArray("click")
		save, _ := cmd.Flags().GetBool("snapshot")

		props := runtime.Props{}
		for _, kv := range rawProps {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("prop %q is not key=value", kv)
			}
			props[k] = demo.ParseValue(v)
		}

		ctx := cmd.Context()
		page, err := demo.NewPage(ctx, args[0], props,
			runtime.WithLogger(e.logger),
			runtime.WithResolver(e.resolver),
			runtime.WithMaxFlushPasses(e.cfg.MaxFlushPasses),
		)
		if err != nil {
			return err
		}
		defer page.Close()

		for _, sel := range clicks {
			if err := page.Click(ctx, sel); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), page.HTML())
		e.logger.Debug("rendered", "component", args[0], "clicks", len(clicks), "chunk_loads", e.loader.ChunkLoads())

		if !save {
			return nil
		}
		repo, closeRepo := e.repository()
		defer closeRepo()
		snap, err := page.Snapshot()
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "snapshot %s saved with %d references\n", snap.ID, len(snap.Refs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringArrayP("prop", "p", nil, "Component prop as key=value; values are YAML scalars")
	renderCmd.Flags().StringArray("click", nil, "Selector to click before printing, may repeat")
	renderCmd.Flags().Bool("snapshot", false, "Save a snapshot of the bound references")
}
