package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

type listenOptions struct {
	Channel  string
	Token    string
	UID      uint32
	Duration time.Duration
	Spectrum int
}

func newListenCommand(a *app) *cobra.Command {
	opts := &listenOptions{}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Stream engine events as structured logs",
		Long: `Initialize the engine, optionally join a channel, and log every event the
engine emits until interrupted or --duration elapses.`,
		Example: `  rtcbridge listen --app-id $APP_ID --channel demo
  RTCBRIDGE_LOG_FORMAT=json rtcbridge listen --channel demo --duration 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runListen(ctx, a, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Channel, "channel", "", "Channel to join")
	flags.StringVar(&opts.Token, "token", "", "Token for the channel")
	flags.Uint32Var(&opts.UID, "uid", 0, "Local user id (0 lets the engine assign one)")
	flags.DurationVar(&opts.Duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	flags.IntVar(&opts.Spectrum, "spectrum", 0, "Enable audio spectrum events every N ms")

	return cmd
}

// eventLogger returns a router tap that logs each classified event.
func eventLogger(log *logrus.Entry) rtc.EventTap {
	return func(route rtc.Route, event string, data []byte) {
		entry := log.WithFields(logrus.Fields{
			"event":    event,
			"category": route.Category.String(),
			"callback": route.Callback,
			"bytes":    len(data),
		})
		if entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
			entry = entry.WithField("data", string(data))
		}
		entry.Info("Event")
	}
}

func runListen(ctx context.Context, a *app, opts *listenOptions) error {
	engine, release, err := a.initialize()
	if err != nil {
		return err
	}
	defer release()

	engine.Router().SetTap(eventLogger(a.log))
	defer engine.Router().SetTap(nil)

	// The engine only emits channel events to a registered handler.
	handler := &rtc.BaseRtcEngineEventHandler{}
	if err := engine.RegisterEventHandler(handler); err != nil {
		return err
	}
	defer func() { _ = engine.UnregisterEventHandler(handler) }()

	if opts.Spectrum > 0 {
		spectrum := &rtc.BaseAudioSpectrumObserver{}
		if err := engine.RegisterAudioSpectrumObserver(spectrum); err != nil {
			return err
		}
		defer func() { _ = engine.UnregisterAudioSpectrumObserver(spectrum) }()
		if err := engine.EnableAudioSpectrumMonitor(opts.Spectrum); err != nil {
			return err
		}
	}

	if opts.Channel != "" {
		role := rtc.ClientRoleBroadcaster
		if err := engine.JoinChannel(opts.Token, opts.Channel, opts.UID, rtc.ChannelMediaOptions{ClientRoleType: &role}); err != nil {
			return err
		}
		defer func() {
			if err := engine.LeaveChannel(); err != nil {
				a.log.WithError(err).Warn("LeaveChannel failed")
			}
		}()
		a.log.WithFields(logrus.Fields{"channel": opts.Channel, "uid": opts.UID}).Info("Joining channel")
	}

	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	a.log.Info("Listening for events")
	<-ctx.Done()
	a.log.Info("Stopping")
	return nil
}
