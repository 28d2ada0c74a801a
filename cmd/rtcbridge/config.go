package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/thesyncim/rtcbridge/internal/ffi"
)

const envPrefix = "RTCBRIDGE"

// newConfig returns the CLI configuration. Values come from flags bound
// later, RTCBRIDGE_* environment variables and an optional rtcbridge.yaml.
func newConfig() (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("library", "")
	v.SetDefault("app_id", "")
	v.SetDefault("channel_profile", 1)
	v.SetDefault("area_code", 0)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("rtcbridge")
	v.SetConfigType("yaml")
	for _, path := range []string{".", "$HOME/.rtcbridge", "/etc/rtcbridge"} {
		v.AddConfigPath(os.ExpandEnv(path))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// newLogger builds the process logger from log.level and log.format.
func newLogger(v *viper.Viper, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	switch format := v.GetString("log.format"); format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return log, nil
}

// applyLibraryPath points the native loader at an explicit library file.
func applyLibraryPath(v *viper.Viper) error {
	path := v.GetString("library")
	if path == "" {
		return nil
	}
	return os.Setenv(ffi.LibraryPathEnv, path)
}
