package ui

import "testing"

func TestDetermineLayoutMode(t *testing.T) {
	if got := DetermineLayoutMode(140, 30, 20, 30); got != LayoutWide {
		t.Fatalf("expected wide, got %v", got)
	}
	if got := DetermineLayoutMode(70, 40, 20, 30); got != LayoutStacked {
		t.Fatalf("expected stacked, got %v", got)
	}
	if got := DetermineLayoutMode(60, 40, 20, 30); got != LayoutTooSmall {
		t.Fatalf("expected too-small by width, got %v", got)
	}
	if got := DetermineLayoutMode(140, 20, 20, 30); got != LayoutTooSmall {
		t.Fatalf("expected too-small by height, got %v", got)
	}
}

func TestBoardSizeCountsBorder(t *testing.T) {
	w, h := BoardSize(10, 12)
	if w != 26 || h != 12 {
		t.Fatalf("expected 26x12, got %dx%d", w, h)
	}
}
