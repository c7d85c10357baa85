package components

import (
	"strings"
	"testing"

	"github.com/nika-tui/nika/pkg/data"
)

func comics(n int) []data.Comic {
	out := make([]data.Comic, n)
	for i := range out {
		out[i] = data.Comic{Name: "Comic " + string(rune('A'+i))}
	}
	return out
}

func TestCursorClampsAtBothEnds(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7} {
		c := Cursor{Len: n}
		for i := 0; i < n+5; i++ {
			c.Next()
			if n > 0 && c.Index >= n {
				t.Fatalf("len %d: cursor ran past the end: %d", n, c.Index)
			}
		}
		if n > 0 && c.Index != n-1 {
			t.Errorf("len %d: Expected cursor at %d, got %d", n, n-1, c.Index)
		}
		if n == 0 && c.Index != 0 {
			t.Errorf("len 0: Expected cursor to stay at 0, got %d", c.Index)
		}

		for i := 0; i < n+5; i++ {
			c.Prev()
		}
		if c.Index != 0 {
			t.Errorf("len %d: Expected cursor at 0, got %d", n, c.Index)
		}
	}
}

func TestSetLenPullsCursorBack(t *testing.T) {
	c := Cursor{Index: 4, Len: 5}
	c.SetLen(2)
	if c.Index != 1 {
		t.Errorf("Expected cursor 1, got %d", c.Index)
	}
	c.SetLen(0)
	if c.Index != 0 {
		t.Errorf("Expected cursor 0, got %d", c.Index)
	}
}

func TestComicListSelected(t *testing.T) {
	list := NewComicList()
	if _, ok := list.Selected(); ok {
		t.Error("Expected no selection on an empty list")
	}

	list.SetItems(comics(3))
	list.Cursor.Next()
	got, ok := list.Selected()
	if !ok || got.Name != "Comic B" {
		t.Errorf("Expected Comic B, got %+v", got)
	}

	list.SetItems(comics(1))
	got, ok = list.Selected()
	if !ok || got.Name != "Comic A" {
		t.Errorf("Expected Comic A after shrinking, got %+v", got)
	}
}

func TestComicListView(t *testing.T) {
	list := NewComicList()
	if !strings.Contains(list.View(true), "No results") {
		t.Error("Expected empty message")
	}

	list.SetItems(comics(2))
	view := list.View(true)
	if !strings.Contains(view, "> Comic A") {
		t.Errorf("Expected cursor on first item, got %q", view)
	}
	if !strings.Contains(view, "Comic B") {
		t.Error("Expected second item in view")
	}
}

func TestWindowKeepsCursorVisible(t *testing.T) {
	start, end := window(0, 100, 10)
	if start != 0 || end != 10 {
		t.Errorf("Expected [0,10), got [%d,%d)", start, end)
	}
	start, end = window(99, 100, 10)
	if start != 90 || end != 100 {
		t.Errorf("Expected [90,100), got [%d,%d)", start, end)
	}
	start, end = window(50, 100, 10)
	if 50 < start || 50 >= end {
		t.Errorf("cursor 50 not in [%d,%d)", start, end)
	}
}
