package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jad7/imouapi/imou"
	"github.com/jad7/imouapi/internal/pkg/logging"
)

var _rootCmdOpts struct {
	cfgFile    string
	debug      bool
	appID      string
	appSecret  string
	baseURL    string
	apiTimeout time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "imouctl",
	Short: "Control Imou Life devices through the vendor cloud API",

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _rootCmdOpts.debug {
			logrus.SetLevel(logrus.DebugLevel)
		}

		return logging.Configure(viper.GetViper())
	},

	SilenceUsage: true,
}

// Execute runs the top level command processing
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&_rootCmdOpts.cfgFile, "config", "", "config file (default $HOME/.imouctl.yaml)")
	rootCmd.PersistentFlags().BoolVar(&_rootCmdOpts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&_rootCmdOpts.appID, "app-id", "", "application ID from the Imou Life open platform")
	rootCmd.PersistentFlags().StringVar(&_rootCmdOpts.appSecret, "app-secret", "", "application secret from the Imou Life open platform")
	rootCmd.PersistentFlags().StringVar(&_rootCmdOpts.baseURL, "base-url", imou.DefaultBaseURL, "API endpoint")
	rootCmd.PersistentFlags().DurationVar(&_rootCmdOpts.apiTimeout, "api-timeout", time.Second*10, "maximum duration of an API call, eg. 1m or 10s")

	errPanic(viper.GetViper().BindPFlag("app-id", rootCmd.PersistentFlags().Lookup("app-id")))
	errPanic(viper.GetViper().BindPFlag("app-secret", rootCmd.PersistentFlags().Lookup("app-secret")))
	errPanic(viper.GetViper().BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url")))
	errPanic(viper.GetViper().BindPFlag("api-timeout", rootCmd.PersistentFlags().Lookup("api-timeout")))
}

func initConfig() {
	if _rootCmdOpts.cfgFile != "" {
		viper.SetConfigFile(_rootCmdOpts.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config"))
		viper.SetConfigName(".imouctl")
	}

	viper.SetEnvPrefix("imou")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logging.Logger(nil).Debugf("Using config file %s", viper.ConfigFileUsed())
	}
}

func errPanic(err error) {
	if err != nil {
		panic(err)
	}
}

func checkRequiredFlags(needFlags ...string) error {
	missingFlags := []string{}

	for _, f := range needFlags {
		if viper.GetString(f) == "" {
			missingFlags = append(missingFlags, f)
		}
	}

	if len(missingFlags) > 0 {
		itemPlural := "item"
		if len(missingFlags) > 1 {
			itemPlural = "items"
		}
		return fmt.Errorf("required config %s `%s` not set", itemPlural, strings.Join(missingFlags, "`, `"))
	}

	return nil
}

// newAPIClient builds the library client from the resolved configuration.
func newAPIClient() *imou.Client {
	return imou.New(
		viper.GetString("app-id"),
		viper.GetString("app-secret"),
		imou.WithBaseURL(viper.GetString("base-url")),
		imou.WithTimeout(viper.GetDuration("api-timeout")),
		imou.WithLogger(logging.Logger(nil).WithField("component", "imou-client")),
	)
}

// credentialFlags are required by every command that talks to the API.
func requireCredentials(cmd *cobra.Command, args []string) error {
	return checkRequiredFlags("app-id", "app-secret")
}
