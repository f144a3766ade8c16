package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/persistence"
	"github.com/decker502/casefile/pkg/puzzle"
)

type recordingDisplay struct {
	panels []Panel
	hidden []string
}

func (d *recordingDisplay) ShowPanel(p Panel)       { d.panels = append(d.panels, p) }
func (d *recordingDisplay) HidePanel(module string) { d.hidden = append(d.hidden, module) }

func newEngine(store persistence.Store) *game.Engine {
	settings := game.DefaultSettings()
	settings.TextSpeedMs = 0
	return game.NewEngine(game.Options{Renderer: game.NopRenderer{}, Settings: settings, Store: store})
}

func TestEvidenceViewerMarksViewed(t *testing.T) {
	e := newEngine(nil)
	d := &recordingDisplay{}
	set := Install(e, d)
	set.Evidence.Register(Document{ID: "letter", Title: "Anonymous letter", Body: "Pier 9."})

	assert.False(t, set.Evidence.HasViewed("letter"))
	require.NoError(t, e.ShowFeature(EvidenceModule, map[string]string{"id": "letter"}))
	assert.True(t, set.Evidence.HasViewed("letter"))
	require.Len(t, d.panels, 1)
	assert.Equal(t, "Anonymous letter", d.panels[0].Title)
	assert.Equal(t, "Pier 9.", d.panels[0].Body)

	// 目录中没有时使用 cfg 中的内容
	require.NoError(t, set.Evidence.Show(map[string]string{"id": "note", "title": "Napkin"}))
	assert.Equal(t, []string{"letter", "note"}, set.Evidence.Viewed())

	assert.Error(t, set.Evidence.Show(map[string]string{"id": "ghost"}))
	assert.Error(t, set.Evidence.Show(map[string]string{}))

	set.Evidence.Hide()
	assert.Equal(t, []string{EvidenceModule}, d.hidden)
}

func TestEvidenceViewedSurvivesSaveLoad(t *testing.T) {
	store := persistence.NewMemoryStore()
	first := newEngine(store)
	Install(first, &recordingDisplay{}).Evidence.Show(map[string]string{"id": "photo", "title": "Photo"})
	require.NoError(t, first.Save())

	second := newEngine(store)
	set := Install(second, &recordingDisplay{})
	require.NoError(t, second.Load())
	assert.True(t, set.Evidence.HasViewed("photo"))
}

func TestEvidenceWithoutDisplayFails(t *testing.T) {
	e := newEngine(nil)
	set := Install(e, nil)
	set.Evidence.Register(Document{ID: "letter", Title: "Letter"})
	assert.Error(t, e.ShowFeature(EvidenceModule, map[string]string{"id": "letter"}))
	assert.False(t, set.Evidence.HasViewed("letter"))
}

func TestChatTranscript(t *testing.T) {
	e := newEngine(nil)
	d := &recordingDisplay{}
	set := Install(e, d)
	set.Chat.AddMessage("informant", ChatMessage{From: "Rosa", Text: "Pier 9.", At: "23:02"})
	set.Chat.AddMessage("informant", ChatMessage{From: "Me", Text: "When?"})

	require.NoError(t, e.ShowFeature(ChatModule, map[string]string{"thread": "informant"}))
	require.Len(t, d.panels, 1)
	assert.Equal(t, []string{"[23:02] Rosa: Pier 9.", "Me: When?"}, d.panels[0].Lines)
	assert.Equal(t, "informant", d.panels[0].Title)
	assert.True(t, set.Chat.HasRead("informant"))

	assert.Error(t, set.Chat.Show(map[string]string{"thread": "nobody"}))
	assert.Len(t, set.Chat.Messages("informant"), 2)
}

func TestPasswordModuleOpensPuzzle(t *testing.T) {
	e := newEngine(nil)
	set := Install(e, nil)
	set.Password.Register(
		puzzle.Config{ID: "gate", Type: puzzle.TypePassword, Answers: []string{"1947"}},
		puzzle.Config{ID: "radio", Type: puzzle.TypeFrequency, Target: 5},
	)

	require.NoError(t, e.ShowFeature(PasswordModule, map[string]string{"id": "gate", "attempts": "2"}))
	assert.Equal(t, game.ModePuzzle, e.Mode())
	v, ok := e.Puzzles().View()
	require.True(t, ok)
	assert.Equal(t, 2, v.Remaining)

	solved, err := e.SubmitPuzzle("1947")
	require.NoError(t, err)
	assert.True(t, solved)
	assert.True(t, set.Password.IsSolved("gate"))

	// frequency 谜题不进入密码目录
	assert.Error(t, set.Password.Show(map[string]string{"id": "radio"}))
}

func TestPasswordModuleInlineAnswers(t *testing.T) {
	e := newEngine(nil)
	set := Install(e, nil)

	require.NoError(t, set.Password.Show(map[string]string{"id": "door", "answers": "open sesame, sesame"}))
	solved, err := e.SubmitPuzzle("Sesame")
	require.NoError(t, err)
	assert.True(t, solved)

	assert.Error(t, set.Password.Show(map[string]string{"id": "x", "answers": " , "}))
	assert.Error(t, set.Password.Show(map[string]string{"id": "y", "answers": "a", "attempts": "many"}))
}

func TestMissingModuleNotifies(t *testing.T) {
	e := newEngine(nil)
	err := e.ShowFeature("map", nil)
	assert.ErrorIs(t, err, game.ErrMissingCollaborator)
	assert.Len(t, e.Notifier().Active(), 1)
	assert.Equal(t, "map unavailable", e.Notifier().Active()[0].Message)
}
