package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

var errNoReply = errors.New("engine did not reply")

type callOptions struct {
	PlayerID int
	NoInit   bool
}

func newCallCommand(a *app) *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call <funcName> [params]",
		Short: "Perform one engine API call and print its reply",
		Long: `Perform one engine API call by its bridge name. params is a JSON object;
binary fields are given as base64 text and are moved into the buffer list
the same way the library does for typed calls.`,
		Example: `  rtcbridge call RtcEngine_getVersion
  rtcbridge call RtcEngine_enableAudioSpectrumMonitor '{"intervalInMS":100}'
  rtcbridge call MediaPlayer_open --player 1 '{"url":"https://example.com/a.mp4","startPos":0}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 2 {
				raw = args[1]
			}
			return runCall(a, opts, args[0], raw)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.PlayerID, "player", -1, "Media player id for MediaPlayer_ calls")
	flags.BoolVar(&opts.NoInit, "no-init", false, "Skip RtcEngine_initialize before the call")

	return cmd
}

// parseParams validates a JSON object argument. Empty input yields nil,
// which the dispatcher sends as {}.
func parseParams(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return nil, fmt.Errorf("params must be a JSON object: %s", raw)
	}
	return json.RawMessage(raw), nil
}

func runCall(a *app, opts *callOptions, funcName, rawParams string) error {
	params, err := parseParams(rawParams)
	if err != nil {
		return err
	}
	isPlayerCall := strings.HasPrefix(funcName, "MediaPlayer_")
	if isPlayerCall && opts.PlayerID < 0 {
		return fmt.Errorf("%s needs --player", funcName)
	}

	var engine *rtc.RtcEngine
	switch {
	case opts.NoInit || funcName == "RtcEngine_initialize" || funcName == "RtcEngine_release":
		engine, err = a.openEngine()
	default:
		var release func()
		engine, release, err = a.initialize()
		if err == nil {
			defer release()
		}
	}
	if err != nil {
		return err
	}

	var res *rtc.CallResult
	if isPlayerCall {
		res = engine.InvokePlayer(opts.PlayerID, funcName, params)
	} else {
		res = engine.Invoke(funcName, params)
	}

	log := a.log.WithField("api", funcName)
	if res == nil {
		if funcName == "RtcEngine_release" {
			return nil
		}
		return fmt.Errorf("%s: %w", funcName, errNoReply)
	}
	if _, err := fmt.Fprintln(a.out, res.Raw); err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	log.Debug("Call succeeded")
	return nil
}
