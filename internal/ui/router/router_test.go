package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type stubScreen struct {
	name      string
	initCalls int
	width     int
	height    int
	lastMsg   tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initCalls++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.lastMsg = msg
	return s, nil
}

func (s *stubScreen) View() string { return s.name }

func (s *stubScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func TestPushPopRestoresPreviousScreen(t *testing.T) {
	home := &stubScreen{name: "home"}
	detail := &stubScreen{name: "detail"}

	r := New(home)
	r.Push(detail)

	if r.Current() != detail {
		t.Fatalf("Expected detail on top after push, got %v", r.Current())
	}
	if r.Depth() != 2 {
		t.Errorf("Expected depth 2, got %d", r.Depth())
	}

	r.Pop()

	if r.Current() != home {
		t.Fatalf("Expected home on top after pop, got %v", r.Current())
	}
	if home.initCalls != 1 {
		t.Errorf("Expected home re-initialized once on pop, got %d init calls", home.initCalls)
	}
}

func TestPopKeepsLastScreen(t *testing.T) {
	home := &stubScreen{name: "home"}
	r := New(home)

	if cmd := r.Pop(); cmd != nil {
		t.Error("Expected no command when popping the last screen")
	}
	if r.Current() != home {
		t.Error("Expected the last screen to survive a pop")
	}
	if r.Depth() != 1 {
		t.Errorf("Expected depth 1, got %d", r.Depth())
	}
}

func TestReplaceSwapsTopOnly(t *testing.T) {
	home := &stubScreen{name: "home"}
	first := &stubScreen{name: "first"}
	second := &stubScreen{name: "second"}

	r := New(home)
	r.Push(first)
	r.Replace(second)

	if r.Current() != second {
		t.Fatalf("Expected second on top after replace, got %v", r.Current())
	}
	if r.Depth() != 2 {
		t.Errorf("Expected replace to keep depth 2, got %d", r.Depth())
	}

	r.Pop()
	if r.Current() != home {
		t.Error("Expected home under the replaced screen")
	}
}

func TestResetToCollapsesStack(t *testing.T) {
	r := New(&stubScreen{name: "home"})
	r.Push(&stubScreen{name: "dashboard"})
	r.Push(&stubScreen{name: "setup"})

	fresh := &stubScreen{name: "fresh"}
	r.ResetTo(fresh)

	if r.Depth() != 1 {
		t.Fatalf("Expected depth 1 after reset, got %d", r.Depth())
	}
	if r.Current() != fresh {
		t.Error("Expected the reset target on top")
	}
	if fresh.initCalls != 1 {
		t.Errorf("Expected reset target initialized once, got %d", fresh.initCalls)
	}
}

func TestPushedScreenGetsCurrentSize(t *testing.T) {
	home := &stubScreen{name: "home"}
	r := New(home)
	r.SetSize(120, 40)

	pushed := &stubScreen{name: "pushed"}
	r.Push(pushed)

	if pushed.width != 120 || pushed.height != 40 {
		t.Errorf("Expected pushed screen sized 120x40, got %dx%d", pushed.width, pushed.height)
	}
}

func TestWindowSizeAppliedOnce(t *testing.T) {
	home := &stubScreen{name: "home"}
	r := New(home)

	r.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if home.width != 100 || home.height != 30 {
		t.Errorf("Expected size applied through SetSize, got %dx%d", home.width, home.height)
	}
	if home.lastMsg != nil {
		t.Errorf("Expected size message not forwarded to Update, got %T", home.lastMsg)
	}
}

func TestUpdateForwardsToTopScreen(t *testing.T) {
	home := &stubScreen{name: "home"}
	top := &stubScreen{name: "top"}

	r := New(home)
	r.Push(top)

	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}
	r.Update(key)

	if top.lastMsg == nil {
		t.Fatal("Expected the top screen to receive the message")
	}
	if home.lastMsg != nil {
		t.Error("Expected screens below the top to stay untouched")
	}
}
