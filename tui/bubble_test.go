package tui

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pitchloop/pitchloop/audio"
	"github.com/pitchloop/pitchloop/coordinator"
	"github.com/pitchloop/pitchloop/files"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/internal/ui"
	"github.com/pitchloop/pitchloop/loop"
	"github.com/pitchloop/pitchloop/params"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeController struct {
	loaded   []string
	loadErr  error
	set      map[params.Name]string
	nudges   []float64
	bounds   map[loop.Field]string
	accept   bool
	marks    int
	toggles  int
	seeks    []float64
	canceled int
	retried  int
	ready    bool
}

func newFakeController() *fakeController {
	return &fakeController{
		set:    map[params.Name]string{},
		bounds: map[loop.Field]string{},
		accept: true,
		ready:  true,
	}
}

func (c *fakeController) Load(raw string) error {
	c.loaded = append(c.loaded, raw)
	return c.loadErr
}

func (c *fakeController) SetParameter(name params.Name, raw string) mo.Option[float64] {
	c.set[name] = raw
	if err := params.Check(name, raw); err != nil || raw == "" || !c.ready {
		return mo.None[float64]()
	}
	return mo.Some(0.0)
}

func (c *fakeController) NudgeParameter(_ params.Name, delta float64) mo.Option[float64] {
	c.nudges = append(c.nudges, delta)
	return mo.TupleToOption(delta, c.ready)
}

func (c *fakeController) MarkStart() { c.marks++ }
func (c *fakeController) MarkStop()  { c.marks++ }

func (c *fakeController) EnterBound(field loop.Field, text string) bool {
	c.bounds[field] = text
	return c.accept
}

func (c *fakeController) ResetLoop()               {}
func (c *fakeController) TogglePlay() error        { c.toggles++; return nil }
func (c *fakeController) Seek(delta float64) error { c.seeks = append(c.seeks, delta); return nil }
func (c *fakeController) CancelAudio()             { c.canceled++ }
func (c *fakeController) RetryAudio() bool         { c.retried++; return true }

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	right = tea.KeyMsg{Type: tea.KeyRight}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func update(b *statefulBubble, msg tea.Msg) tea.Cmd {
	_, cmd := b.Update(msg)
	return cmd
}

// deliver runs cmd and feeds its messages back. It must not contain timers.
func deliver(b *statefulBubble, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			deliver(b, c)
		}
		return
	}
	update(b, msg)
}

func TestBubble(t *testing.T) {
	Convey("Given the interface", t, func() {
		controller := newFakeController()
		b := newBubble(&Options{Controller: controller, Display: NewDisplay()})
		b.resize(120, 40)

		Convey("it starts on the file screen", func() {
			So(b.state, ShouldEqual, fileState)
			So(b.View(), ShouldContainSubstring, "Open Video")
		})

		Convey("a dropped file is opened straight away", func() {
			cmd := update(b, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'/clips/take.mp4'"), Paste: true})
			So(cmd, ShouldNotBeNil)
			So(b.fileC.Value(), ShouldEqual, "'/clips/take.mp4'")

			msg := b.loadFile(b.fileC.Value())()
			So(controller.loaded, ShouldResemble, []string{"'/clips/take.mp4'"})
			So(msg.(loadResultMsg).err, ShouldBeNil)
		})

		Convey("a rejected file shows a notification and keeps the screen", func() {
			controller.loadErr = fmt.Errorf("%w: notes.txt", files.ErrNotVideo)
			msg := b.loadFile("/clips/notes.txt")()

			notify := b.onLoadResult(msg.(loadResultMsg))
			update(b, notify())

			So(b.state, ShouldEqual, fileState)
			So(b.notifier.Text(), ShouldEqual, "notes.txt is not a video file")
			So(b.fileC.Value(), ShouldEqual, "/clips/notes.txt")
		})

		Convey("suggestions for stale input are dropped", func() {
			b.fileC.SetValue("/clips/ta")
			update(b, suggestionsMsg{query: "/clips/t", suggestions: []string{"/clips/other.mp4"}})
			So(b.suggestions, ShouldBeEmpty)

			update(b, suggestionsMsg{query: "/clips/ta", suggestions: []string{"/clips/take.mp4"}})
			So(b.suggestions, ShouldResemble, []string{"/clips/take.mp4"})

			update(b, tab)
			So(b.fileC.Value(), ShouldEqual, "/clips/take.mp4")
		})

		Convey("once a session starts", func() {
			update(b, sessionMsg{session: coordinator.Session{ID: "id", SourceURL: "/clips/take.mp4"}})

			Convey("the player screen is shown", func() {
				So(b.state, ShouldEqual, playerState)
				So(b.View(), ShouldContainSubstring, "take.mp4")
			})

			Convey("parameter updates move the sliders and text boxes", func() {
				update(b, parameterMsg{name: params.Volume, value: 80})
				So(b.paramC[params.Volume].value, ShouldEqual, 80)
				So(b.paramC[params.Volume].inputC.Value(), ShouldEqual, "80")
				So(b.paramC[params.Volume].fraction(), ShouldAlmostEqual, 0.8)
			})

			Convey("transport keys reach the controller", func() {
				update(b, space)
				update(b, keyRunes(","))
				update(b, keyRunes("["))
				update(b, keyRunes("]"))
				So(controller.toggles, ShouldEqual, 1)
				So(controller.seeks, ShouldResemble, []float64{-seekStep})
				So(controller.marks, ShouldEqual, 2)
			})

			Convey("arrows nudge the focused parameter by its step", func() {
				update(b, tab)
				So(b.focus, ShouldEqual, focusRate)
				update(b, right)
				So(controller.nudges, ShouldResemble, []float64{5})
			})

			Convey("nudging before audio is ready explains why nothing moved", func() {
				controller.ready = false
				deliver(b, update(b, right))
				So(b.notifier.Text(), ShouldEqual, "Pitch can be changed once audio is ready")
			})

			Convey("typing into a parameter box validates as it goes", func() {
				update(b, enter)
				So(b.editing, ShouldBeTrue)

				update(b, keyRunes("x"))
				So(b.paramC[params.Pitch].invalid, ShouldBeTrue)

				update(b, enter)
				So(b.editing, ShouldBeFalse)
				So(controller.set[params.Pitch], ShouldEqual, "0x")
				So(b.paramC[params.Pitch].inputC.Value(), ShouldEqual, "0")
				So(b.paramC[params.Pitch].invalid, ShouldBeFalse)
			})

			Convey("a valid parameter value is applied", func() {
				update(b, enter)
				b.paramC[params.Pitch].inputC.SetValue("7")
				update(b, enter)
				So(controller.set[params.Pitch], ShouldEqual, "7")
				So(b.editing, ShouldBeFalse)
			})

			Convey("escape abandons an edit", func() {
				update(b, enter)
				update(b, keyRunes("5"))
				update(b, esc)
				So(b.editing, ShouldBeFalse)
				So(controller.set, ShouldBeEmpty)
				So(b.paramC[params.Pitch].inputC.Value(), ShouldEqual, "0")
			})

			Convey("loop bounds are entered through their boxes", func() {
				b.focus = focusStart
				update(b, enter)
				update(b, keyRunes("abc"))
				So(b.boundC[loop.Start].invalid, ShouldBeTrue)

				b.boundC[loop.Start].inputC.SetValue("1:30")
				update(b, keyRunes(""))
				So(b.boundC[loop.Start].invalid, ShouldBeFalse)

				update(b, enter)
				So(controller.bounds[loop.Start], ShouldEqual, "1:30")
				So(b.editing, ShouldBeFalse)
			})

			Convey("a rejected bound stays open for correcting", func() {
				controller.accept = false
				b.focus = focusStop
				update(b, enter)
				b.boundC[loop.Stop].inputC.SetValue("0:01")
				update(b, enter)
				So(b.editing, ShouldBeTrue)
				So(b.boundC[loop.Stop].invalid, ShouldBeTrue)
			})

			Convey("bound labels follow the loop controller", func() {
				update(b, boundMsg{field: loop.Start, label: "00:05"})
				update(b, boundMsg{field: loop.Stop, label: "00:10"})
				So(b.viewLoop(), ShouldContainSubstring, "00:05")
				So(b.viewLoop(), ShouldContainSubstring, "00:10")
			})

			Convey("audio initialization shows the loading overlay", func() {
				update(b, stageMsg{stage: audio.Loading})
				So(b.state, ShouldEqual, loadingState)
				So(b.View(), ShouldContainSubstring, audio.Loading.Text())

				Convey("escape cancels it", func() {
					update(b, esc)
					So(controller.canceled, ShouldEqual, 1)

					update(b, audioCanceledMsg{})
					So(b.state, ShouldEqual, playerState)
				})

				Convey("success returns to the player", func() {
					update(b, audioReadyMsg{})
					So(b.state, ShouldEqual, playerState)
					So(b.session.MustGet().AudioReady, ShouldBeTrue)
				})

				Convey("a failure opens the error dialog", func() {
					update(b, audioFailedMsg{err: &audio.InitError{Kind: audio.DecodeError}})
					So(b.state, ShouldEqual, audioErrorState)
					So(b.View(), ShouldContainSubstring, "not supported")

					Convey("which can retry", func() {
						update(b, keyRunes("r"))
						So(controller.retried, ShouldEqual, 1)
						So(b.state, ShouldEqual, loadingState)

						update(b, audioReadyMsg{})
						So(b.state, ShouldEqual, playerState)
					})

					Convey("or be dismissed", func() {
						update(b, esc)
						So(b.state, ShouldEqual, playerState)
					})
				})
			})

			Convey("a media error is shown until dismissed", func() {
				update(b, mediaFailedMsg{err: errors.New("load video: corrupt")})
				So(b.state, ShouldEqual, errorState)
				So(b.View(), ShouldContainSubstring, "corrupt")

				update(b, esc)
				So(b.state, ShouldEqual, fileState)
			})

			Convey("o opens the file screen and escape returns", func() {
				update(b, keyRunes("o"))
				So(b.state, ShouldEqual, fileState)
				update(b, esc)
				So(b.state, ShouldEqual, playerState)
			})

			Convey("a notification can be shown over the player", func() {
				update(b, ui.Notification{Text: "hello"})
				So(b.View(), ShouldContainSubstring, "hello")
			})
		})
	})
}
