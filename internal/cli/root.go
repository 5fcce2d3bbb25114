// Package cli implements the billed command line.
package cli

import (
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/container"
	"github.com/garyjia/billed/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "billed",
		Short:         "Employee expense reports",
		Long:          "billed lists, submits and serves employee expense reports (notes de frais).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newSubmitCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// startContainer loads the configuration, applies overrides and starts a container.
// Callers must release it with shutdown.
func startContainer(cmd *cobra.Command, opts *rootOptions, overrides ...func(*config.Config)) (*container.Container, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, err
	}

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(cmd.Context()); err != nil {
		return nil, err
	}
	return c, nil
}

func shutdown(c *container.Container) {
	_ = c.Close()
	_ = c.Logger().Sync()
}
