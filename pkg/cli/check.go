package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	db "github.com/TechXTT/dbload"
)

// NewCheckCmd builds `check`, which reports whether the database answers
// SELECT 1. The command succeeds either way unless --strict is set.
func NewCheckCmd(g *globals) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the configured database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, done, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer done()

			p := db.NewProvider(*cfg, db.WithLogger(logger), db.WithOutput(cmd.OutOrStdout()))
			engine, err := p.GetEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res := p.InitializeDatabase(cmd.Context(), engine)
			if strict && !res.OK {
				return fmt.Errorf("database unreachable: %w", res.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the database is unreachable")
	return cmd
}
