package main

import (
	"fmt"
	"os"

	"github.com/kwv/kpalette/palette"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

func newRootCmd() *cobra.Command {
	var opts AppOptions

	cmd := &cobra.Command{
		Use:           "kpalette",
		Short:         "Reduce an image to k representative colors with parallel k-means",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := palette.ResolveConfig()
			if err != nil {
				return err
			}

			app, err := NewApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = app.Run(opts, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.InputPath, "input", "i", "", "Input image (png, jpeg, gif, bmp, tiff, webp)")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Output image (png, jpeg, gif, bmp, tiff)")
	cmd.Flags().IntVarP(&opts.K, "k", "k", palette.DefaultK, "Number of palette colors")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
