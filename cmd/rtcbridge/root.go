package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thesyncim/rtcbridge/internal/ffi"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v   *viper.Viper
	out io.Writer
	log *logrus.Entry

	// openTransport returns the native transport; tests replace it.
	openTransport func(log *logrus.Logger) (rtc.Transport, error)
}

func newApp(v *viper.Viper, out io.Writer) *app {
	return &app{
		v:   v,
		out: out,
		openTransport: func(log *logrus.Logger) (rtc.Transport, error) {
			if err := applyLibraryPath(v); err != nil {
				return nil, err
			}
			return ffi.NewTransport(log)
		},
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rtcbridge",
		Short: "Drive the native RTC engine through the bridge",
		Long: `rtcbridge loads the native bridge library, performs engine API calls by
name with JSON parameters and streams the engine's events as structured logs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(a.v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log = log.WithField("session", uuid.NewString())
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text or json)")
	flags.String("library", "", "Path to the native bridge library")
	flags.String("app-id", "", "Application id passed to RtcEngine_initialize")
	flags.Int("channel-profile", int(rtc.ChannelProfileLiveBroadcasting), "Channel profile passed to RtcEngine_initialize")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("library", flags.Lookup("library"))
	_ = a.v.BindPFlag("app_id", flags.Lookup("app-id"))
	_ = a.v.BindPFlag("channel_profile", flags.Lookup("channel-profile"))

	_ = cmd.RegisterFlagCompletionFunc("log-format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "text"}, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newCallCommand(a))
	cmd.AddCommand(newListenCommand(a))
	cmd.AddCommand(newVersionCommand(a))
	return cmd
}

// openEngine opens the transport and wraps it in an engine. The engine is
// not initialized.
func (a *app) openEngine() (*rtc.RtcEngine, error) {
	logger := a.log.Logger
	t, err := a.openTransport(logger)
	if err != nil {
		return nil, fmt.Errorf("open transport: %w", err)
	}
	return rtc.NewRtcEngine(t, rtc.WithLogger(logger)), nil
}

func (a *app) engineContext() rtc.RtcEngineContext {
	return rtc.RtcEngineContext{
		AppID:          a.v.GetString("app_id"),
		ChannelProfile: rtc.ChannelProfileType(a.v.GetInt("channel_profile")),
		AreaCode:       a.v.GetUint32("area_code"),
	}
}

// initialize opens and initializes an engine. The returned release func
// tears the engine down and logs any failure.
func (a *app) initialize() (*rtc.RtcEngine, func(), error) {
	engine, err := a.openEngine()
	if err != nil {
		return nil, nil, err
	}
	if err := engine.Initialize(a.engineContext()); err != nil {
		_ = engine.Release(true)
		return nil, nil, fmt.Errorf("initialize: %w", err)
	}
	release := func() {
		if err := engine.Release(true); err != nil {
			a.log.WithError(err).Warn("Release failed")
		}
	}
	return engine, release, nil
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the native engine and bridge versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, release, err := a.initialize()
			if err != nil {
				return err
			}
			defer release()

			version, build, err := engine.GetVersion()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "engine %s (build %d), bridge ABI %s\n", version, build, ffi.BridgeVersion())
			return err
		},
	}
}
