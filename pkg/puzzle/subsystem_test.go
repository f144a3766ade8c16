package puzzle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/casefile/pkg/scheduler"
)

// fakeLedger 记录谜题写入的标记和完成的任务
type fakeLedger struct {
	flags     map[string]any
	completed []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{flags: make(map[string]any)}
}

func (l *fakeLedger) SetFlag(name string, value any) { l.flags[name] = value }
func (l *fakeLedger) CompleteQuest(id string) bool {
	l.completed = append(l.completed, id)
	return true
}

// recordingOverlay 记录覆盖层调用
type recordingOverlay struct {
	shown   []View
	updates []View
	hidden  int
}

func (o *recordingOverlay) ShowPuzzle(v View)   { o.shown = append(o.shown, v) }
func (o *recordingOverlay) UpdatePuzzle(v View) { o.updates = append(o.updates, v) }
func (o *recordingOverlay) HidePuzzle()         { o.hidden++ }

func (o *recordingOverlay) last() View {
	if len(o.updates) == 0 {
		return o.shown[len(o.shown)-1]
	}
	return o.updates[len(o.updates)-1]
}

func newTestSubsystem() (*Subsystem, *scheduler.Scheduler, *recordingOverlay, *fakeLedger) {
	sched := scheduler.New()
	overlay := &recordingOverlay{}
	ledger := newFakeLedger()
	return NewSubsystem(sched, overlay, ledger), sched, overlay, ledger
}

func TestFrequencyPuzzleScenario(t *testing.T) {
	sub, _, overlay, ledger := newTestSubsystem()
	var failures []int
	solved := false

	require.NoError(t, sub.Start(&Config{
		ID:          "radio",
		Type:        TypeFrequency,
		Target:      243.0,
		Tolerance:   0.5,
		Min:         200,
		Max:         300,
		Initial:     220,
		MaxAttempts: 3,
		OnFailure:   func(remaining int) { failures = append(failures, remaining) },
		OnSuccess:   func() { solved = true },
	}))

	ok, err := sub.Submit("240.0")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, sub.Remaining())
	assert.Equal(t, []int{2}, failures)
	assert.True(t, sub.Active())

	ok, err = sub.Submit("243.3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, solved)
	assert.False(t, sub.Active())
	assert.Equal(t, true, ledger.flags[SolvedFlag("radio")])
	assert.Equal(t, 1, overlay.hidden)
}

func TestMaxAttemptsCallbackFiresOnceOnFifthFailure(t *testing.T) {
	sub, _, _, _ := newTestSubsystem()
	maxCalls := 0
	failuresWhenMaxFired := -1
	failures := 0

	require.NoError(t, sub.Start(&Config{
		ID:          "safe",
		Type:        TypePassword,
		Answers:     []string{"1947"},
		MaxAttempts: 5,
		OnFailure:   func(int) { failures++ },
		OnMaxAttempts: func() {
			maxCalls++
			failuresWhenMaxFired = failures
		},
	}))

	for i := 1; i <= 4; i++ {
		_, _ = sub.Submit("0000")
		assert.Equal(t, 0, maxCalls, "max attempts callback fired early at failure %d", i)
	}
	_, _ = sub.Submit("0000")
	assert.Equal(t, 1, maxCalls)
	assert.Equal(t, 5, failuresWhenMaxFired)

	// 用尽后继续提交不会再次触发
	_, _ = sub.Submit("0000")
	_, _ = sub.Submit("1947")
	assert.Equal(t, 1, maxCalls)
	assert.Equal(t, 5, failures)

	v, ok := sub.View()
	require.True(t, ok)
	assert.True(t, v.Exhausted)
}

func TestTextPuzzleNormalization(t *testing.T) {
	tests := []struct {
		name      string
		answers   []string
		minPrefix int
		input     string
		want      bool
	}{
		{"Exact", []string{"Lighthouse"}, 0, "Lighthouse", true},
		{"Case insensitive", []string{"Lighthouse"}, 0, "LIGHTHOUSE", true},
		{"Accent insensitive", []string{"cafe noir"}, 0, "Café  Noir", true},
		{"Second answer", []string{"north", "nord"}, 0, "Nord", true},
		{"Prefix accepted", []string{"lighthouse"}, 5, "light", true},
		{"Prefix too short", []string{"lighthouse"}, 5, "lig", false},
		{"Prefix disabled", []string{"lighthouse"}, 0, "light", false},
		{"Wrong", []string{"lighthouse"}, 0, "harbor", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewTextPresenter(&Config{ID: "t", Type: TypePassword, Answers: tt.answers, MinPrefix: tt.minPrefix})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Check(tt.input).Solved)
		})
	}
}

func TestTextPuzzleBlankInputDoesNotCount(t *testing.T) {
	sub, _, overlay, _ := newTestSubsystem()
	require.NoError(t, sub.Start(&Config{ID: "c", Type: TypeCipher, Answers: []string{"abc"}, MaxAttempts: 2}))

	ok, err := sub.Submit("   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, sub.Remaining())
	assert.NotEmpty(t, overlay.last().Message)
}

func TestCipherPromptShowsEncodedText(t *testing.T) {
	sub, _, overlay, _ := newTestSubsystem()
	require.NoError(t, sub.Start(&Config{
		ID:      "note",
		Type:    TypeCipher,
		Answers: []string{"Meet at dawn"},
		Params:  map[string]string{"shift": "1"},
	}))
	assert.Equal(t, "Nffu bu ebxo", overlay.shown[0].Prompt)
}

func TestCaesarShift(t *testing.T) {
	assert.Equal(t, "Khoor, Zruog!", CaesarShift("Hello, World!", 3))
	assert.Equal(t, "Hello, World!", CaesarShift("Khoor, Zruog!", -3))
	assert.Equal(t, "abc", CaesarShift("abc", 26))
}

func TestUnknownPuzzleTypeDoesNotOpen(t *testing.T) {
	sub, _, overlay, _ := newTestSubsystem()
	err := sub.Start(&Config{ID: "x", Type: "jigsaw"})
	assert.True(t, errors.Is(err, ErrUnknownPuzzleType))
	assert.False(t, sub.Active())
	assert.Empty(t, overlay.shown)
}

func TestStartValidatesConfig(t *testing.T) {
	sub, _, _, _ := newTestSubsystem()
	assert.ErrorIs(t, sub.Start(nil), ErrInvalidConfig)
	assert.ErrorIs(t, sub.Start(&Config{Type: TypeCipher}), ErrInvalidConfig)
	assert.ErrorIs(t, sub.Start(&Config{ID: "p", Type: TypePassword}), ErrInvalidConfig)
}

func TestSuccessCompletesQuest(t *testing.T) {
	sub, _, _, ledger := newTestSubsystem()
	require.NoError(t, sub.Start(&Config{ID: "p", Type: TypePassword, Answers: []string{"open"}, QuestID: "vault"}))
	ok, _ := sub.Submit("open")
	assert.True(t, ok)
	assert.Equal(t, []string{"vault"}, ledger.completed)
}

func TestHintToggleIsIndependentOfAttempts(t *testing.T) {
	sub, _, overlay, _ := newTestSubsystem()
	require.NoError(t, sub.Start(&Config{ID: "p", Type: TypePassword, Answers: []string{"x"}, Hint: "It's one letter", MaxAttempts: 3}))

	assert.True(t, sub.ToggleHint())
	assert.Equal(t, "It's one letter", overlay.last().Hint)
	assert.Equal(t, 3, sub.Remaining())

	assert.False(t, sub.ToggleHint())
	assert.Equal(t, "", overlay.last().Hint)
	assert.Equal(t, 3, sub.Remaining())
}

func TestContinuousAdjustClampsAndPolls(t *testing.T) {
	sub, sched, overlay, _ := newTestSubsystem()
	require.NoError(t, sub.Start(&Config{ID: "dial", Type: TypeFrequency, Target: 90, Min: 80, Max: 100, Initial: 85}))

	require.NoError(t, sub.Adjust(50))
	v, _ := sub.View()
	assert.Equal(t, 100.0, v.Value)

	updatesBefore := len(overlay.updates)
	sched.Advance(DefaultPollInterval)
	assert.Equal(t, updatesBefore+1, len(overlay.updates), "poll should push changed signal")

	sched.Advance(DefaultPollInterval)
	assert.Equal(t, updatesBefore+1, len(overlay.updates), "unchanged signal should not be pushed")

	require.NoError(t, sub.SetValue(90))
	sched.Advance(DefaultPollInterval)
	assert.InDelta(t, 1.0, overlay.last().Signal, 1e-9)

	sub.Cancel()
	assert.Equal(t, 0, sched.Pending(), "polling must stop after close")
}

func TestSignalDecreasesWithDistance(t *testing.T) {
	p, err := NewContinuousPresenter(&Config{ID: "f", Type: TypeFrequency, Target: 100})
	require.NoError(t, err)
	c := p.(Continuous)

	prev := 2.0
	for _, v := range []float64{100, 100.5, 101, 105, 150} {
		c.Set(v)
		sig := c.Signal()
		assert.Less(t, sig, prev+1e-12)
		assert.Greater(t, sig, 0.0)
		prev = sig
	}
}

func TestAdjustOnTextPuzzleFails(t *testing.T) {
	sub, _, _, _ := newTestSubsystem()
	assert.ErrorIs(t, sub.Adjust(1), ErrNoActivePuzzle)
	require.NoError(t, sub.Start(&Config{ID: "p", Type: TypePassword, Answers: []string{"x"}}))
	assert.ErrorIs(t, sub.Adjust(1), ErrNotContinuous)
}

func TestSubmitWithoutActivePuzzle(t *testing.T) {
	sub, _, _, _ := newTestSubsystem()
	_, err := sub.Submit("x")
	assert.ErrorIs(t, err, ErrNoActivePuzzle)
}

func TestStartReplacesActivePuzzleWithoutCallbacks(t *testing.T) {
	sub, _, _, _ := newTestSubsystem()
	closed := 0
	sub.OnClose(func(string, bool) { closed++ })

	require.NoError(t, sub.Start(&Config{ID: "a", Type: TypePassword, Answers: []string{"x"}}))
	require.NoError(t, sub.Start(&Config{ID: "b", Type: TypePassword, Answers: []string{"y"}}))
	assert.Equal(t, "b", sub.ActiveID())
	assert.Equal(t, 0, closed)

	sub.Cancel()
	assert.Equal(t, 1, closed)
}

func TestSuccessCallbackMayOpenNextPuzzle(t *testing.T) {
	sub, _, _, _ := newTestSubsystem()
	next := &Config{ID: "second", Type: TypePassword, Answers: []string{"two"}}
	require.NoError(t, sub.Start(&Config{
		ID:        "first",
		Type:      TypePassword,
		Answers:   []string{"one"},
		OnSuccess: func() { _ = sub.Start(next) },
	}))

	ok, _ := sub.Submit("one")
	assert.True(t, ok)
	assert.Equal(t, "second", sub.ActiveID())
}

func TestPollingStopsWhenDisabled(t *testing.T) {
	sub, sched, _, _ := newTestSubsystem()
	sub.SetPollInterval(0)
	require.NoError(t, sub.Start(&Config{ID: "f", Type: TypeFrequency, Target: 1}))
	assert.Equal(t, 0, sched.Pending())
	sched.Advance(time.Second)
}

type mapStrings map[string]string

func (m mapStrings) Get(key string) string { return m[key] }

func TestMessagesUseStringSource(t *testing.T) {
	sub, _, overlay, _ := newTestSubsystem()
	require.NoError(t, sub.Start(&Config{ID: "door", Type: TypePassword, Answers: []string{"1947"}, MaxAttempts: 2}))

	_, err := sub.Submit("0000")
	require.NoError(t, err)
	assert.Equal(t, "Access denied. 1 attempts left.", overlay.last().Message)

	sub.SetStrings(mapStrings{
		MsgAccessDenied: "Zugriff verweigert.",
		MsgNoAttempts:   "Keine Versuche mehr.",
		MsgEmptyInput:   "Bitte etwas eingeben.",
	})
	_, err = sub.Submit("")
	require.NoError(t, err)
	assert.Equal(t, "Bitte etwas eingeben.", overlay.last().Message)

	_, err = sub.Submit("1111")
	require.NoError(t, err)
	assert.Equal(t, "Zugriff verweigert. Keine Versuche mehr.", overlay.last().Message)
}

func TestCustomPresenterMessageShownVerbatim(t *testing.T) {
	sub, _, overlay, _ := newTestSubsystem()
	sub.Register("dial", func(*Config) (Presenter, error) { return literalPresenter{}, nil })
	require.NoError(t, sub.Start(&Config{ID: "dial", Type: "dial", Answers: []string{"x"}}))

	_, err := sub.Submit("y")
	require.NoError(t, err)
	assert.Equal(t, "The dial clicks back.", overlay.last().Message)
}

type literalPresenter struct{}

func (literalPresenter) Check(string) Result {
	return Result{Counted: true, Message: "The dial clicks back."}
}

func (literalPresenter) Fill(*View) {}
