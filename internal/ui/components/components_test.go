package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestChoice_NumberKeyPicks(t *testing.T) {
	c := NewChoice("Which?", []string{"a", "b", "c"})
	if c.Answered() {
		t.Fatal("new choice should be unanswered")
	}

	c, _ = c.Update(key('2'))
	if c.Selected != 1 || c.Cursor != 1 {
		t.Errorf("Selected=%d Cursor=%d, want 1 1", c.Selected, c.Cursor)
	}

	c, _ = c.Update(key('9'))
	if c.Selected != 1 {
		t.Errorf("out of range key changed selection to %d", c.Selected)
	}
}

func TestChoice_CursorAndSpace(t *testing.T) {
	c := NewChoice("Which?", []string{"a", "b"})
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if c.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1 (clamped)", c.Cursor)
	}
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if c.Selected != 1 {
		t.Errorf("Selected = %d, want 1", c.Selected)
	}
}

func TestChoice_LockedIgnoresKeys(t *testing.T) {
	c := NewChoice("Which?", []string{"a", "b"})
	c.Locked = true
	c, _ = c.Update(key('1'))
	if c.Answered() {
		t.Error("locked choice accepted a pick")
	}
}

func TestChoice_ViewReveal(t *testing.T) {
	c := NewChoice("Which?", []string{"alpha", "beta"})
	c.Selected = 0
	c.Reveal = 1
	v := c.View(40, true)
	for _, want := range []string{"Which?", "alpha", "beta", "(•)"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "one", Disabled: true},
		{Label: "two"},
		{Label: "three", Disabled: true},
		{Label: "four"},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Errorf("Selected = %d, want 3", m.Selected)
	}
}

func TestMenu_EnterRunsAction(t *testing.T) {
	ran := false
	m := NewMenu([]MenuItem{{Label: "go", Action: func() tea.Cmd {
		ran = true
		return nil
	}}})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !ran {
		t.Error("expected action to run")
	}
}

func TestMenu_Wraps(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a"}, {Label: "b", Disabled: true}, {Label: "c"}})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 2 {
		t.Fatalf("up from top: Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 0 {
		t.Errorf("down from bottom: Selected = %d, want 0", m.Selected)
	}
}

func TestMenu_DigitActivates(t *testing.T) {
	var picked string
	pick := func(s string) func() tea.Cmd {
		return func() tea.Cmd { picked = s; return nil }
	}
	m := NewMenu([]MenuItem{
		{Label: "a", Action: pick("a")},
		{Label: "b", Action: pick("b"), Disabled: true},
		{Label: "c", Action: pick("c")},
	})

	m, _ = m.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if picked != "c" || m.Selected != 2 {
		t.Errorf("picked %q at %d, want c at 2", picked, m.Selected)
	}
	picked = ""
	m.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	if picked != "" {
		t.Error("disabled item must not activate")
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	p := ProgressBar{Done: 7, Total: 5, Width: 20}
	if f := p.fraction(); f != 1 {
		t.Errorf("fraction = %v, want 1", f)
	}
	p = ProgressBar{Done: 1, Total: 0, Width: 20}
	if f := p.fraction(); f != 0 {
		t.Errorf("fraction = %v, want 0", f)
	}
	if !strings.Contains(NewStepProgress(1, 4, 40).View(), "Step 2/4") {
		t.Error("step label missing")
	}
}

func TestAnswerBox_Counter(t *testing.T) {
	a := NewAnswerBox("type", 10, nil)
	a.Model.SetValue("hello")
	if !strings.Contains(a.View(), "5/10") {
		t.Errorf("counter missing from %q", a.View())
	}
}
