// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Engines lists the accepted values of audio.engine.
var Engines = []string{"mpv"}

// Setup loads defaults, binds PITCHLOOP_* variables and reads the config file
// from where.Config(), if there is one.
func Setup() error {
	viper.SetConfigName(constant.Pitchloop)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Pitchloop)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return Validate()
}

// Validate rejects settings the player cannot start with.
func Validate() error {
	if engine := viper.GetString(key.AudioEngine); !lo.Contains(Engines, engine) {
		return fmt.Errorf("%s: unknown audio engine %q, expected one of %s", key.AudioEngine, engine, strings.Join(Engines, ", "))
	}

	for _, k := range []string{key.AudioInitTimeout, key.PlayerTickInterval} {
		if viper.GetDuration(k) <= 0 {
			return fmt.Errorf("%s must be a positive duration", k)
		}
	}

	return nil
}
