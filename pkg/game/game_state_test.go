package game

import (
	"strings"
	"testing"
)

// TestFlagTruthiness 测试标记真值判定
func TestFlagTruthiness(t *testing.T) {
	gs := NewGameState()

	tests := []struct {
		value any
		want  bool
	}{
		{true, true},
		{false, false},
		{"", false},
		{"yes", true},
		{0, false},
		{1, true},
		{0.0, false},
		{2.5, true},
		{nil, false},
	}

	for _, tt := range tests {
		gs.SetFlag("f", tt.value)
		if got := gs.FlagTrue("f"); got != tt.want {
			t.Errorf("FlagTrue(%#v): got %v, want %v", tt.value, got, tt.want)
		}
	}

	gs.ClearFlag("f")
	if _, ok := gs.Flag("f"); ok {
		t.Error("ClearFlag did not remove flag")
	}
}

// TestClockAdvance 测试时钟推进与跨天
func TestClockAdvance(t *testing.T) {
	c := NewClock(1, 23, 30)
	if c.String() != "23:30" {
		t.Fatalf("NewClock: got %s, want 23:30", c.String())
	}

	c.Advance(45)
	if c.Day != 2 || c.String() != "00:15" {
		t.Errorf("Advance across midnight: got day %d %s, want day 2 00:15", c.Day, c.String())
	}

	c.Advance(-10)
	if c.String() != "00:15" {
		t.Errorf("negative Advance changed clock to %s", c.String())
	}
	if c.Hour() != 0 {
		t.Errorf("Hour: got %d, want 0", c.Hour())
	}
}

// TestParseClock 测试存档时间解析
func TestParseClock(t *testing.T) {
	c, err := ParseClock(3, "07:05")
	if err != nil {
		t.Fatalf("ParseClock error: %v", err)
	}
	if c.Day != 3 || c.Minutes != 7*60+5 {
		t.Errorf("ParseClock: got %+v", c)
	}

	for _, bad := range []string{"", "7", "25:00", "10:60", "aa:bb"} {
		if _, err := ParseClock(1, bad); err == nil {
			t.Errorf("ParseClock(%q): expected error", bad)
		}
	}

	c, _ = ParseClock(0, "12:00")
	if c.Day != 1 {
		t.Errorf("ParseClock day 0: got %d, want 1", c.Day)
	}
}

// TestParseCondition 测试条件表达式解析
func TestParseCondition(t *testing.T) {
	te := newTestEngine()
	te.SetFlag("door_open", true)
	te.AddItem(InventoryItem{ID: "key"})
	te.ActivateQuest(&Quest{ID: "case1"})
	te.ActivateQuest(&Quest{ID: "case0"})
	te.CompleteQuest("case0")

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"true", true},
		{"false", false},
		{"door_open", true},
		{"!door_open", false},
		{"!window_open", true},
		{"item:key", true},
		{"item:lamp", false},
		{"quest:case1", true},
		{"done:case0", true},
		{"done:case1", false},
		{"door_open && item:key && quest:case1", true},
		{"door_open && item:lamp", false},
	}

	for _, tt := range tests {
		p, err := ParseCondition(tt.expr)
		if err != nil {
			t.Errorf("ParseCondition(%q) error: %v", tt.expr, err)
			continue
		}
		if got := p.Eval(te.Engine); got != tt.want {
			t.Errorf("ParseCondition(%q).Eval: got %v, want %v", tt.expr, got, tt.want)
		}
	}

	for _, bad := range []string{"weird:thing", "!", "item:", "a && "} {
		if _, err := ParseCondition(bad); err == nil {
			t.Errorf("ParseCondition(%q): expected error", bad)
		}
	}
}

// TestFuncPredicatePanicIsFalse 测试自定义条件 panic 时按假处理
func TestFuncPredicatePanicIsFalse(t *testing.T) {
	te := newTestEngine()
	p := Func(func(*Engine) bool { panic("bad predicate") })
	if p.Eval(te.Engine) {
		t.Error("panicking predicate evaluated to true")
	}
}

// TestQuestPredicates 测试任务谓词与任务状态
func TestQuestPredicates(t *testing.T) {
	te := newTestEngine()
	te.ActivateQuest(&Quest{ID: "case1"})

	if !IsQuestActive("case1").Eval(te.Engine) {
		t.Error("IsQuestActive(case1) should be true after activation")
	}
	if QuestDone("case1").Eval(te.Engine) {
		t.Error("QuestDone(case1) should be false before completion")
	}
	if q := te.state.activeQuest("case1"); q == nil || q.Status != QuestActive {
		t.Errorf("case1 should be stored with status %v", QuestActive)
	}

	te.CompleteQuest("case1")
	if IsQuestActive("case1").Eval(te.Engine) {
		t.Error("IsQuestActive(case1) should be false after completion")
	}
	if !QuestDone("case1").Eval(te.Engine) {
		t.Error("QuestDone(case1) should be true after completion")
	}
}

// TestStringTable 测试文本表解析与回退
func TestStringTable(t *testing.T) {
	st, err := ParseStringTable(strings.NewReader("[NO_SAVE_FOUND]\nNothing saved yet\n\n[CUSTOM]\nHello %s\n"))
	if err != nil {
		t.Fatalf("ParseStringTable error: %v", err)
	}
	if st.Len() != 2 {
		t.Errorf("Len: got %d, want 2", st.Len())
	}
	if got := st.Get(StrNoSave); got != "Nothing saved yet" {
		t.Errorf("override: got %q", got)
	}
	if got := st.Get(StrGameSaved); got != "Game saved" {
		t.Errorf("fallback to default: got %q", got)
	}
	if got := st.Format("CUSTOM", "Ada"); got != "Hello Ada" {
		t.Errorf("Format: got %q", got)
	}
	if got := st.Get("MISSING"); got != "[MISSING]" {
		t.Errorf("missing key: got %q", got)
	}

	if !st.Has(StrNoSave) || st.Has(StrGameSaved) {
		t.Errorf("Has: only loaded keys should count")
	}
	for _, key := range RequiredStrings() {
		if !DefaultStringTable().Has(key) {
			t.Errorf("default table missing %s", key)
		}
	}

	if got := DefaultStringTable().Format(StrUITuner, 1.5, 50.0); got != "Value: 1.5   Signal: 50%" {
		t.Errorf("tuner label: got %q", got)
	}

	var nilTable *StringTable
	if got := nilTable.Get(StrNoSave); got != "No save file found" {
		t.Errorf("nil table: got %q", got)
	}
	if nilTable.Has(StrNoSave) {
		t.Errorf("nil table Has should be false")
	}
}
