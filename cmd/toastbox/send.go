package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastbox/internal/adapter/input"
	"github.com/jmylchreest/toastbox/internal/dbus"
	"github.com/jmylchreest/toastbox/internal/form"
	"github.com/jmylchreest/toastbox/internal/toast"
)

var sendOpts struct {
	level       string
	position    string
	expiry      string
	noExpiry    bool
	dismissable bool
	progress    bool
	wait        bool
	stdin       bool
}

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one toast to the desktop notification daemon",
	Long: `Build a toast from flags and deliver it through the desktop
notification daemon (org.freedesktop.Notifications).

Unset flags take their values from the [defaults] config section. An empty
message uses the default message text.

Examples:
  toastbox send "Build finished" --level success
  toastbox send "Disk almost full" --level error --no-expiry
  toastbox send "Deploying" --expiry 5000 --wait
  make 2>&1 | tail -n 3 | toastbox send --stdin --level warn

With --stdin, each input line is one toast: either a plain message or a
JSON object such as {"message":"Done","level":"success","expiry_ms":1000}.
A JSON array of such objects is also accepted. Flags set the defaults for
every line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	addSendFlags(sendCmd)
}

func addSendFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sendOpts.level, "level", "l", "",
		"Severity level (info, success, warn, error)")
	cmd.Flags().StringVarP(&sendOpts.position, "position", "p", "",
		"Screen position (top_left, top_right, bottom_right, bottom_left)")
	cmd.Flags().StringVarP(&sendOpts.expiry, "expiry", "e", "",
		"Expiry in milliseconds")
	cmd.Flags().BoolVar(&sendOpts.noExpiry, "no-expiry", false,
		"Never expire")
	cmd.Flags().BoolVar(&sendOpts.dismissable, "dismissable", true,
		"Allow the user to dismiss the toast")
	cmd.Flags().BoolVar(&sendOpts.progress, "progress", true,
		"Show a progress bar")
	cmd.Flags().BoolVarP(&sendOpts.wait, "wait", "w", false,
		"Wait until the toast expires or is dismissed")
	cmd.Flags().BoolVar(&sendOpts.stdin, "stdin", false,
		"Read one toast per line from standard input")
}

func runSend(cmd *cobra.Command, args []string) error {
	state := form.New(cfg.FormDefaults())
	if len(args) > 0 {
		state.Message.Set(args[0])
	}
	if err := applySendFlags(cmd, state); err != nil {
		return err
	}

	if sendOpts.stdin {
		if len(args) > 0 {
			return errors.New("a message argument cannot be combined with --stdin")
		}
		if sendOpts.wait {
			return errors.New("--wait cannot be combined with --stdin")
		}
		return sendBatch(cmd, state)
	}

	toaster := toast.New(logger)
	cleanup, err := attachSinks(toaster, sinkOptions{source: "send", dbus: true, requireDBus: true})
	if err != nil {
		return fmt.Errorf("failed to reach notification daemon: %w", err)
	}
	defer cleanup()

	dismissed := make(chan struct{}, 1)
	toaster.AddSink(closeNotifier(dismissed))

	t := state.Submit(toaster)
	fmt.Fprintln(cmd.OutOrStdout(), t.ID)

	if !sendOpts.wait {
		return nil
	}
	if t.Expiry == nil {
		<-dismissed
		return nil
	}

	select {
	case <-dismissed:
	case <-time.After(time.Until(t.ExpiresAt())):
		toaster.Tick(time.Now())
	}
	return nil
}

// sendBatch raises one toast per request read from standard input.
func sendBatch(cmd *cobra.Command, state *form.State) error {
	adapter := input.NewStdinAdapterWithReader(cmd.InOrStdin())
	requests, err := adapter.Import(cmd.Context())
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return errors.New("no toasts on standard input")
	}

	// Build every toast first so a bad line sends nothing.
	base := state.Request()
	builders := make([]toast.Builder, 0, len(requests))
	for i, r := range requests {
		b, err := r.Apply(base)
		if err != nil {
			return fmt.Errorf("request %d: %w", i+1, err)
		}
		builders = append(builders, b)
	}

	toaster := toast.New(logger)
	// The desktop daemon lays the batch out, so none may replace another.
	toaster.SetStacked(true)
	toaster.SetMaxVisible(len(builders))

	cleanup, err := attachSinks(toaster, sinkOptions{source: "send", dbus: true, requireDBus: true})
	if err != nil {
		return fmt.Errorf("failed to reach notification daemon: %w", err)
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	for _, b := range builders {
		fmt.Fprintln(out, toaster.Toast(b).ID)
	}
	logger.Debug("sent batch", "count", len(builders), "source", adapter.Name())
	return nil
}

// applySendFlags writes the explicitly set flags to the form.
func applySendFlags(cmd *cobra.Command, state *form.State) error {
	flags := cmd.Flags()
	if flags.Changed("level") {
		if err := state.SetLevelToken(sendOpts.level); err != nil {
			return err
		}
	}
	if flags.Changed("position") {
		if err := state.SetPositionToken(sendOpts.position); err != nil {
			return err
		}
	}
	if flags.Changed("expiry") {
		if !state.SetExpiryText(sendOpts.expiry) {
			return fmt.Errorf("invalid expiry %q: want milliseconds between 0 and 4294967295", sendOpts.expiry)
		}
		state.ExpiryEnabled.Set(true)
	}
	if sendOpts.noExpiry {
		if flags.Changed("expiry") {
			return errors.New("--expiry and --no-expiry are mutually exclusive")
		}
		state.ExpiryEnabled.Set(false)
	}
	if flags.Changed("dismissable") {
		state.Dismissable.Set(sendOpts.dismissable)
	}
	if flags.Changed("progress") {
		state.ProgressEnabled.Set(sendOpts.progress)
	}
	return nil
}

// closeNotifier signals ch when a toast closes for any reason.
type closeNotifier chan<- struct{}

func (c closeNotifier) Show(toast.Toast) {}

func (c closeNotifier) Close(toast.Toast) {
	select {
	case c <- struct{}{}:
	default:
	}
}

var _ toast.Sink = closeNotifier(nil)

// serverInfoCmd reports the desktop notification daemon.
var serverInfoCmd = &cobra.Command{
	Use:   "server-info",
	Short: "Show the desktop notification daemon in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := dbus.NewForwarder(cfg.DBus.AppName, logger)
		if err := f.Connect(); err != nil {
			return err
		}
		defer func() { _ = f.Disconnect() }()

		info, err := f.ServerInformation()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s), spec %s\n", info.Name, info.Version, info.Vendor, info.SpecVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverInfoCmd)
}
