package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jad7/imouapi/internal/pkg/callback"
	"github.com/jad7/imouapi/internal/pkg/logging"
)

var _callbackCmdOpts struct {
	listenAddr      string
	registerURL     string
	gracefulTimeout time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	logRequests     bool
}

var callbackCmd = &cobra.Command{
	Use:   "callback",
	Short: "Manage and receive push notifications",
}

var callbackShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the registered callback URL",

	RunE: func(cmd *cobra.Command, args []string) error {
		return doCallbackShow(cmd.Context())
	},

	PreRunE: requireCredentials,
}

var callbackEnableCmd = &cobra.Command{
	Use:   "enable <url>",
	Short: "Register a URL to receive alarm and device status notifications",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doCallbackEnable(cmd.Context(), args[0])
	},

	PreRunE: requireCredentials,
}

var callbackDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable push notifications",

	RunE: func(cmd *cobra.Command, args []string) error {
		return doCallbackDisable(cmd.Context())
	},

	PreRunE: requireCredentials,
}

var callbackServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the push notification receiver",
	Long: `Run an HTTP server accepting push notifications from the Imou cloud on
POST /imou/callback and streaming them to WebSocket subscribers of
GET /imou/events. With --register-url the callback registration is
updated before serving.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return doCallbackServe(cmd.Context())
	},

	PreRunE: requireCredentials,
}

func init() {
	callbackServeCmd.Flags().StringVar(&_callbackCmdOpts.listenAddr, "listen", ":8750", "listen address")
	callbackServeCmd.Flags().StringVar(&_callbackCmdOpts.registerURL, "register-url", "", "public URL to register with the vendor before serving")
	callbackServeCmd.Flags().DurationVar(&_callbackCmdOpts.gracefulTimeout, "graceful-timeout", time.Second*15, "duration to wait for server to finish, eg. 1m or 10s")
	callbackServeCmd.Flags().DurationVar(&_callbackCmdOpts.readTimeout, "read-timeout", time.Second*15, "duration to wait for request read, eg. 1m or 10s")
	callbackServeCmd.Flags().DurationVar(&_callbackCmdOpts.writeTimeout, "write-timeout", time.Second*60, "duration to wait for request write, eg. 1m or 10s")
	callbackServeCmd.Flags().BoolVar(&_callbackCmdOpts.logRequests, "log-requests", false, "log requests and responses (only in debug mode)")

	errPanic(viper.GetViper().BindPFlag("callback.listen", callbackServeCmd.Flags().Lookup("listen")))
	errPanic(viper.GetViper().BindPFlag("callback.register-url", callbackServeCmd.Flags().Lookup("register-url")))
	errPanic(viper.GetViper().BindPFlag("callback.graceful-timeout", callbackServeCmd.Flags().Lookup("graceful-timeout")))
	errPanic(viper.GetViper().BindPFlag("callback.read-timeout", callbackServeCmd.Flags().Lookup("read-timeout")))
	errPanic(viper.GetViper().BindPFlag("callback.write-timeout", callbackServeCmd.Flags().Lookup("write-timeout")))
	errPanic(viper.GetViper().BindPFlag("logging.log-requests", callbackServeCmd.Flags().Lookup("log-requests")))

	callbackCmd.AddCommand(callbackShowCmd)
	callbackCmd.AddCommand(callbackEnableCmd)
	callbackCmd.AddCommand(callbackDisableCmd)
	callbackCmd.AddCommand(callbackServeCmd)
	rootCmd.AddCommand(callbackCmd)
}

func doCallbackShow(ctx context.Context) error {
	client := newAPIClient()
	defer client.Close()

	cb, err := client.MessageCallback(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("status: %s\ncallbackUrl: %s\n", cb.Status, cb.CallbackURL)
	return nil
}

func doCallbackEnable(ctx context.Context, url string) error {
	client := newAPIClient()
	defer client.Close()

	if err := client.SetMessageCallbackOn(ctx, url); err != nil {
		return err
	}

	fmt.Printf("push notifications enabled, callbackUrl: %s\n", url)
	return nil
}

func doCallbackDisable(ctx context.Context) error {
	client := newAPIClient()
	defer client.Close()

	if err := client.SetMessageCallbackOff(ctx); err != nil {
		return err
	}

	fmt.Println("push notifications disabled")
	return nil
}

func doCallbackServe(ctx context.Context) error {
	var logRequests bool
	if viper.GetBool("logging.log-requests") {
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logRequests = true
		} else {
			logging.Logger(nil).Warn("log-requests ignored when not in debug mode")
		}
	}

	if registerURL := viper.GetString("callback.register-url"); registerURL != "" {
		client := newAPIClient()
		if err := client.SetMessageCallbackOn(ctx, registerURL); err != nil {
			client.Close()
			return err
		}
		client.Close()
		logging.Logger(nil).Infof("registered callback URL %s", registerURL)
	}

	server := callback.NewServer(callback.Config{
		Addr:         viper.GetString("callback.listen"),
		ReadTimeout:  viper.GetDuration("callback.read-timeout"),
		WriteTimeout: viper.GetDuration("callback.write-timeout"),
		LogRequests:  logRequests,
	})

	// serve until interrupted
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		cancel()
	}()

	return server.Run(runCtx, viper.GetDuration("callback.graceful-timeout"))
}
