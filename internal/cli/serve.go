package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/zeeguu/internal/entrypoint"
)

func addServe(topLevel *cobra.Command, g *GlobalOptions, version string) {
	var port int32

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP bridge.",
		Example: `
zeeguu serve --port 8189
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(g)
			if port != 0 {
				cfg.HTTP.Port = port
			}
			return entrypoint.Serve(cfg, version)
		},
	}

	cmd.Flags().Int32Var(&port, "port", 0, "Port to listen on.")
	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command, version string) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the zeeguu version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	topLevel.AddCommand(cmd)
}
