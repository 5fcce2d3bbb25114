package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/garyjia/billed/internal/application/bills"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// fixtureFile is the layout of a seed file
type fixtureFile struct {
	Bills []entity.Bill `yaml:"bills"`
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load bills into the local database",
		Long:  "Insert the bills of a YAML fixture file, or the built-in fixture set, into the local database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := bills.Fixtures()
			if file != "" {
				loaded, err := loadFixtures(file)
				if err != nil {
					return err
				}
				records = loaded
			}

			c, err := startContainer(cmd, opts)
			if err != nil {
				return err
			}
			defer shutdown(c)

			store := c.Store()
			err = store.Tx.WithTransaction(cmd.Context(), func(ctx context.Context) error {
				for i := range records {
					if err := store.Bills.Create(ctx, &records[i]); err != nil {
						return fmt.Errorf("seeding bill %s: %w", records[i].ID, err)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			c.Logger().Info("Bills seeded", zap.Int("count", len(records)))
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("%d notes de frais ajoutées", len(records))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file (defaults to the built-in set)")
	return cmd
}

func loadFixtures(path string) ([]entity.Bill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}

	var parsed fixtureFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	for i, bill := range parsed.Bills {
		if bill.ID == "" {
			return nil, fmt.Errorf("fixture %d has no id", i)
		}
	}
	return parsed.Bills, nil
}
