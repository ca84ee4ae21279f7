package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Pitchloop + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
	})
}

// TypeName returns the string representation of the field's underlying value type.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	default:
		return "unknown"
	}
}

// Parse converts a raw CLI value into the field's type.
func (f *Field) Parse(raw string) (any, error) {
	switch f.Value.(type) {
	case string:
		return raw, nil
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", raw)
		}
		return v, nil
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value: %s", raw)
		}
		return v, nil
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", raw)
		}
		return v, nil
	case time.Duration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %s", raw)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported field type %T", f.Value)
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.AudioInitTimeout, 10*time.Second, "Deadline for the whole audio initialization sequence")
	register(key.AudioRetryDelay, time.Second, "Delay before re-running a failed audio initialization")
	register(key.AudioEngine, "mpv", "Audio graph engine.\nAvailable options are: mpv")
	register(key.PlayerBinary, "mpv", "Path or name of the mpv executable")
	register(key.PlayerTickInterval, 250*time.Millisecond, "How often the playback position is reported to the loop controller")
	register(key.FilesRememberRecent, true, "Remember opened videos and suggest them in the file field")
	register(key.FilesMaxSuggestions, 5, "Maximum number of path suggestions shown under the file field")
	register(key.TUISliderWidth, 40, "Width of the parameter sliders in cells")
	register(key.TUIPitchStep, 1.0, "Semitones added or removed by one slider step")
	register(key.TUIRateStep, 5.0, "Playback rate percent added or removed by one slider step")
	register(key.TUIVolumeStep, 5.0, "Volume added or removed by one slider step")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when help or version is shown")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
