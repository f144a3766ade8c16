package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/casefile/pkg/scheduler"
)

// recordingSurface 记录对话显示面调用
type recordingSurface struct {
	shown   []Line
	texts   []string
	visible bool
	hides   int
}

func (r *recordingSurface) ShowDialogue(line Line) {
	r.shown = append(r.shown, line)
	r.visible = true
}

func (r *recordingSurface) SetDialogueText(text string) {
	r.texts = append(r.texts, text)
}

func (r *recordingSurface) HideDialogue() {
	r.visible = false
	r.hides++
}

func (r *recordingSurface) lastText() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

// recordingVoice 记录语音调用
type recordingVoice struct {
	spoken []string
	stops  int
}

func (v *recordingVoice) Speak(text, speaker string) { v.spoken = append(v.spoken, speaker+": "+text) }
func (v *recordingVoice) Stop()                      { v.stops++ }

func newTestSequencer() (*Sequencer, *scheduler.Scheduler, *recordingSurface, *recordingVoice) {
	sched := scheduler.New()
	surface := &recordingSurface{}
	voice := &recordingVoice{}
	seq := NewSequencer(sched, surface, voice)
	seq.SetCharDelay(10 * time.Millisecond)
	return seq, sched, surface, voice
}

func TestSequencerRevealsCharacterByCharacter(t *testing.T) {
	seq, sched, surface, voice := newTestSequencer()

	require.True(t, seq.Start([]Line{{Speaker: "Mara", Text: "Hey"}}))
	assert.Equal(t, StateShowing, seq.State())
	assert.True(t, surface.visible)
	assert.Equal(t, "", surface.lastText())
	assert.Equal(t, []string{"Mara: Hey"}, voice.spoken)

	sched.Advance(10 * time.Millisecond)
	assert.Equal(t, "H", surface.lastText())
	assert.True(t, seq.Revealing())

	sched.Advance(20 * time.Millisecond)
	assert.Equal(t, "Hey", surface.lastText())
	assert.False(t, seq.Revealing())
	assert.Equal(t, "Hey", seq.Revealed())
	assert.Equal(t, 0, sched.Pending())
}

func TestSequencerAdvanceNTimesEndsSession(t *testing.T) {
	seq, _, surface, _ := newTestSequencer()
	lines := []Line{{Text: "one"}, {Text: "two"}, {Text: "three"}}
	ended := 0
	seq.OnEnd(func() { ended++ })

	seq.Start(lines)
	for i := 0; i < len(lines); i++ {
		require.True(t, seq.Active(), "session should be active before advance %d", i+1)
		seq.Advance()
	}

	assert.False(t, seq.Active())
	assert.Equal(t, StateIdle, seq.State())
	assert.Equal(t, 1, ended)
	assert.False(t, surface.visible)

	// 额外的 Advance 是空操作
	seq.Advance()
	assert.Equal(t, StateIdle, seq.State())
	assert.Equal(t, 1, ended)
	assert.Equal(t, 1, surface.hides)
}

func TestSequencerAdvanceCancelsRevealAndVoice(t *testing.T) {
	seq, sched, surface, voice := newTestSequencer()

	seq.Start([]Line{{Speaker: "A", Text: "abcdef"}, {Speaker: "B", Text: "xy"}})
	sched.Advance(20 * time.Millisecond)
	require.Equal(t, "ab", surface.lastText())

	seq.Advance()
	assert.Equal(t, 1, voice.stops, "voice must be stopped before the next line")
	assert.Equal(t, "", surface.lastText())

	// 旧行的剩余步骤不会再写入文本
	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, "xy", surface.lastText())
	for _, text := range surface.texts {
		assert.NotEqual(t, "abc", text, "cancelled reveal must not continue")
	}
	assert.Equal(t, []string{"A: abcdef", "B: xy"}, voice.spoken)
}

func TestSequencerStartReplacesQueue(t *testing.T) {
	seq, sched, surface, _ := newTestSequencer()

	seq.Start([]Line{{Text: "old-1"}, {Text: "old-2"}})
	sched.Advance(10 * time.Millisecond)

	seq.Start([]Line{{Text: "new"}})
	assert.Equal(t, 1, seq.Remaining())
	current, ok := seq.Current()
	require.True(t, ok)
	assert.Equal(t, "new", current.Text)

	sched.Advance(time.Second)
	assert.Equal(t, "new", surface.lastText())

	seq.Advance()
	assert.False(t, seq.Active())
}

func TestSequencerStartWithNoLines(t *testing.T) {
	seq, _, _, _ := newTestSequencer()
	assert.False(t, seq.Start(nil))
	assert.False(t, seq.Active())
}

func TestSequencerCompleteRevealsRest(t *testing.T) {
	seq, sched, surface, _ := newTestSequencer()
	seq.Start([]Line{{Text: "hello"}})
	sched.Advance(10 * time.Millisecond)

	seq.Complete()
	assert.Equal(t, "hello", surface.lastText())
	assert.False(t, seq.Revealing())
	assert.Equal(t, 0, sched.Pending())
	assert.True(t, seq.Active(), "Complete must not pop the line")
}

func TestSequencerOnShowRunsPerLine(t *testing.T) {
	seq, _, _, _ := newTestSequencer()
	var fired []string
	seq.Start([]Line{
		{Text: "a", OnShow: func() { fired = append(fired, "a") }},
		{Text: "b", OnShow: func() { fired = append(fired, "b") }},
	})
	assert.Equal(t, []string{"a"}, fired)
	seq.Advance()
	assert.Equal(t, []string{"a", "b"}, fired)
}

func TestSequencerOnShowMayEndSession(t *testing.T) {
	seq, sched, _, _ := newTestSequencer()
	seq.Start([]Line{{Text: "bye", OnShow: func() { seq.End() }}})
	assert.False(t, seq.Active())
	sched.Advance(time.Second)
	assert.Equal(t, 0, sched.Pending())
}

func TestSequencerWithoutVoiceOrSurface(t *testing.T) {
	sched := scheduler.New()
	seq := NewSequencer(sched, nil, nil)
	seq.SetCharDelay(0)

	seq.Start([]Line{{Text: "silent"}})
	assert.Equal(t, "silent", seq.Revealed())
	seq.Advance()
	assert.False(t, seq.Active())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "Showing", StateShowing.String())
	assert.Equal(t, "Advancing", StateAdvancing.String())
	assert.Equal(t, "Unknown", State(42).String())
}
