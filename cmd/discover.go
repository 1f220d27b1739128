package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jad7/imouapi/imou"
)

var _discoverCmdOpts struct {
	maxConcurrent int
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover the devices registered to the account",

	RunE: func(cmd *cobra.Command, args []string) error {
		return doDiscover(cmd.Context())
	},

	PreRunE: requireCredentials,
}

func init() {
	discoverCmd.Flags().IntVar(&_discoverCmdOpts.maxConcurrent, "max-concurrent", 4, "devices initialized in parallel")
	errPanic(viper.GetViper().BindPFlag("discover.max-concurrent", discoverCmd.Flags().Lookup("max-concurrent")))

	rootCmd.AddCommand(discoverCmd)
}

func doDiscover(ctx context.Context) error {
	client := newAPIClient()
	defer client.Close()

	devices, err := imou.DiscoverWithConcurrency(ctx, client, viper.GetInt("discover.max-concurrent"))
	if err != nil {
		return err
	}

	fmt.Printf("%d devices discovered:\n", len(devices))
	for _, device := range devices {
		fmt.Println(device.Dump())
	}

	return nil
}
