package batch

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeLister struct {
	items []string
	err   error
	calls int
}

func (f *fakeLister) name() string { return "fake" }

func (f *fakeLister) list(_ context.Context, _ string, count int, _ string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > count {
		return f.items[:count], nil
	}
	return f.items, nil
}

func TestListItems_SeriesSemanticsReversesPageOrder(t *testing.T) {
	// Page delivers newest-first [A,B,C,D]; oldest-first callers get
	// the reversal.
	primary := &fakeLister{items: []string{"A", "B", "C", "D"}}
	e := NewExtractor(primary, nil, nil)

	got := e.ListItems(context.Background(), "someuser", 4, "", false)
	want := []string{"D", "C", "B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("oldest-first = %v, want %v", got, want)
	}
}

func TestListItems_LastNSemanticsKeepsPageOrder(t *testing.T) {
	primary := &fakeLister{items: []string{"A", "B", "C", "D"}}
	e := NewExtractor(primary, nil, nil)

	got := e.ListItems(context.Background(), "someuser", 4, "", true)
	want := []string{"A", "B", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("newest-first = %v, want %v", got, want)
	}
}

func TestListItems_FallbackNeverReorders(t *testing.T) {
	primary := &fakeLister{err: errors.New("browser missing")}
	fallback := &fakeLister{items: []string{"x", "y", "z"}}
	e := NewExtractor(primary, fallback, nil)

	// Library order is preserved for both ordering requests: the
	// asymmetry between strategies is intentional.
	for _, newestFirst := range []bool{true, false} {
		got := e.ListItems(context.Background(), "someuser", 3, "", newestFirst)
		want := []string{"x", "y", "z"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("newestFirst=%v: fallback = %v, want %v", newestFirst, got, want)
		}
	}
}

func TestListItems_NilPrimaryGoesStraightToFallback(t *testing.T) {
	fallback := &fakeLister{items: []string{"x"}}
	e := NewExtractor(nil, fallback, nil)

	got := e.ListItems(context.Background(), "someuser", 1, "", true)
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("got %v", got)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d", fallback.calls)
	}
}

func TestListItems_BothFailingYieldsEmpty(t *testing.T) {
	primary := &fakeLister{err: errors.New("browser crashed")}
	fallback := &fakeLister{err: errors.New("page unreachable")}
	e := NewExtractor(primary, fallback, nil)

	got := e.ListItems(context.Background(), "someuser", 5, "", true)
	if len(got) != 0 {
		t.Errorf("want empty result, got %v", got)
	}
}

func TestListItems_CountTruncates(t *testing.T) {
	primary := &fakeLister{items: []string{"A", "B", "C", "D"}}
	e := NewExtractor(primary, nil, nil)

	got := e.ListItems(context.Background(), "someuser", 2, "", false)
	want := []string{"B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestListItems_ZeroCount(t *testing.T) {
	primary := &fakeLister{items: []string{"A"}}
	e := NewExtractor(primary, nil, nil)

	if got := e.ListItems(context.Background(), "someuser", 0, "", true); got != nil {
		t.Errorf("zero count should return nil, got %v", got)
	}
	if primary.calls != 0 {
		t.Error("no strategy should run for zero count")
	}
}

func TestCollectionURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/@chan/videos", "https://www.youtube.com/@chan/videos"},
		{"someuser", "https://www.instagram.com/someuser/"},
		{"@someuser", "https://www.instagram.com/someuser/"},
	}
	for _, tt := range tests {
		if got := collectionURL(tt.in); got != tt.want {
			t.Errorf("collectionURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchesFilter(t *testing.T) {
	if !matchesFilter("Episode 12: The Finale", "episode") {
		t.Error("filter should be case-insensitive")
	}
	if matchesFilter("unrelated", "episode") {
		t.Error("non-matching text should be filtered out")
	}
	if !matchesFilter("anything", "") {
		t.Error("empty filter matches everything")
	}
}
