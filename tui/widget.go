package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/loop"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/style"
	"github.com/pitchloop/pitchloop/timecode"
	"github.com/spf13/viper"
)

// parameterWidget is a slider with a numeric text box next to it.
type parameterWidget struct {
	name    params.Name
	label   string
	unit    string
	stepKey string
	value   float64
	invalid bool

	sliderC progress.Model
	inputC  textinput.Model
}

func newParameterWidget(name params.Name, label, unit, stepKey string) *parameterWidget {
	w := &parameterWidget{
		name:    name,
		label:   label,
		unit:    unit,
		stepKey: stepKey,
		value:   params.Defaults[name],
	}

	w.sliderC = progress.New(
		progress.WithSolidFill(string(style.AccentColor)),
		progress.WithoutPercentage(),
	)
	w.sliderC.EmptyColor = string(style.SliderEmptyColor)
	w.inputC = textinput.New()
	w.inputC.Prompt = ""
	w.inputC.CharLimit = 8
	w.inputC.Width = 8
	w.inputC.SetValue(formatValue(w.value))
	return w
}

// show mirrors an applied value unless the user is typing into the box.
func (w *parameterWidget) show(value float64) {
	w.value = value
	if !w.inputC.Focused() {
		w.inputC.SetValue(formatValue(value))
		w.invalid = false
	}
}

// check flags the box while its text would be rejected.
func (w *parameterWidget) check() {
	w.invalid = params.Check(w.name, w.inputC.Value()) != nil
}

// revert drops typed text in favor of the applied value.
func (w *parameterWidget) revert() {
	w.inputC.Blur()
	w.inputC.SetValue(formatValue(w.value))
	w.invalid = false
}

// fraction is the slider fill for the applied value.
func (w *parameterWidget) fraction() float64 {
	r := params.Ranges[w.name]
	return (w.value - r.Min) / (r.Max - r.Min)
}

func (w *parameterWidget) step() float64 {
	if s := viper.GetFloat64(w.stepKey); s > 0 {
		return s
	}
	return defaultSteps[w.name]
}

var defaultSteps = map[params.Name]float64{
	params.Pitch:        1,
	params.PlaybackRate: 5,
	params.Volume:       5,
}

func newParameterWidgets() map[params.Name]*parameterWidget {
	return map[params.Name]*parameterWidget{
		params.Pitch:        newParameterWidget(params.Pitch, "Pitch", "st", key.TUIPitchStep),
		params.PlaybackRate: newParameterWidget(params.PlaybackRate, "Speed", "%", key.TUIRateStep),
		params.Volume:       newParameterWidget(params.Volume, "Volume", "", key.TUIVolumeStep),
	}
}

// boundWidget is a loop bound: its committed label and an entry box.
type boundWidget struct {
	field   loop.Field
	label   string
	entry   string
	invalid bool

	inputC textinput.Model
}

func newBoundWidget(field loop.Field) *boundWidget {
	w := &boundWidget{
		field: field,
		label: timecode.Placeholder,
	}
	w.inputC = textinput.New()
	w.inputC.Prompt = ""
	w.inputC.Placeholder = "m:ss"
	w.inputC.CharLimit = 12
	w.inputC.Width = 10
	return w
}

func (w *boundWidget) showEntry(text string) {
	w.entry = text
	if !w.inputC.Focused() {
		w.inputC.SetValue(text)
	}
}

// check flags text that cannot be read as a time while it is typed.
// Ordering against the other bound is checked on commit.
func (w *boundWidget) check() {
	text := w.inputC.Value()
	w.invalid = text != "" && timecode.Parse(text).IsAbsent()
}

func (w *boundWidget) revert() {
	w.inputC.Blur()
	w.inputC.SetValue(w.entry)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
