package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"akreditasi-jurnal/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, revert or list database migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Migrations directory (default: embedded migrations)")

	withMigrator := func(fn func(cmd *cobra.Command, m *database.MigrationExecutor) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()
			if dir == "" {
				dir = e.cfg.Database.MigrationsPath
			}
			return fn(cmd, database.NewMigrationExecutor(e.db.DB))
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *database.MigrationExecutor) error {
				if err := m.RunMigrations(database.MigrationsFS(dir)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *database.MigrationExecutor) error {
				reverted, err := m.Rollback(database.MigrationsFS(dir))
				if err != nil {
					return err
				}
				if reverted == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to revert")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reverted %s %s\n", reverted.Version, reverted.Title)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *database.MigrationExecutor) error {
				statuses, err := m.Status(database.MigrationsFS(dir))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tTITLE\tAPPLIED")
				for _, st := range statuses {
					applied := "no"
					if st.AppliedAt != nil {
						applied = st.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", st.Version, st.Title, applied)
				}
				return tw.Flush()
			}),
		},
	)
	return cmd
}
