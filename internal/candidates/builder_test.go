package candidates

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
)

// fakeSource records how it was queried and serves canned rows.
type fakeSource struct {
	rows       []index.NodeRow
	err        error
	byMtime    bool
	queryCount int
}

func (f *fakeSource) QueryNodes(byMtimeDesc bool) ([]index.NodeRow, error) {
	f.byMtime = byMtimeDesc
	f.queryCount++
	return f.rows, f.err
}

func titles(cs []models.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Node.Title
	}
	return out
}

func TestList_MtimePushDown(t *testing.T) {
	src := &fakeSource{}
	b := NewBuilder(src)

	if _, err := b.List(context.Background(), Options{SortField: SortMTime}); err != nil {
		t.Fatal(err)
	}
	if !src.byMtime {
		t.Error("mtime sort should be pushed into the query when no comparator is set")
	}

	if _, err := b.List(context.Background(), Options{
		SortField: SortMTime,
		Less:      func(a, b models.Candidate) bool { return a.Label < b.Label },
	}); err != nil {
		t.Fatal(err)
	}
	if src.byMtime {
		t.Error("an explicit comparator must disable the push-down")
	}
}

func TestList_PushDownOrderPreserved(t *testing.T) {
	// Rows arrive already mtime-sorted from the query; the builder must not
	// reorder them.
	src := &fakeSource{rows: []index.NodeRow{
		{ID: "c", Title: "Third", MTime: 300},
		{ID: "b", Title: "Second", MTime: 200},
		{ID: "a", Title: "First", MTime: 100},
	}}
	got, err := NewBuilder(src).List(context.Background(), Options{SortField: SortMTime})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Third", "Second", "First"}
	for i, w := range want {
		if got[i].Node.Title != w {
			t.Fatalf("order = %v, want %v", titles(got), want)
		}
	}
}

func TestList_FilterPreservesOrder(t *testing.T) {
	src := &fakeSource{rows: []index.NodeRow{
		{ID: "1", Title: "Keep One", Tags: "x"},
		{ID: "2", Title: "Drop"},
		{ID: "3", Title: "Keep Two", Tags: "x"},
	}}
	got, err := NewBuilder(src).List(context.Background(), Options{
		Filter: func(n models.Node) bool { return len(n.Tags) > 0 },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Node.Title != "Keep One" || got[1].Node.Title != "Keep Two" {
		t.Errorf("candidates = %v", titles(got))
	}
}

func TestList_ComparatorSort(t *testing.T) {
	src := &fakeSource{rows: []index.NodeRow{
		{ID: "1", Title: "Banana"},
		{ID: "2", Title: "Apple"},
		{ID: "3", Title: "Cherry"},
	}}
	got, err := NewBuilder(src).List(context.Background(), Options{
		Less: func(a, b models.Candidate) bool { return a.Node.Title < b.Node.Title },
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Apple", "Banana", "Cherry"}
	for i, w := range want {
		if got[i].Node.Title != w {
			t.Fatalf("order = %v, want %v", titles(got), want)
		}
	}
}

func TestList_SortFieldTitle(t *testing.T) {
	src := &fakeSource{rows: []index.NodeRow{
		{ID: "1", Title: "zeta"},
		{ID: "2", Title: "alpha"},
	}}
	got, err := NewBuilder(src).List(context.Background(), Options{SortField: "title"})
	if err != nil {
		t.Fatal(err)
	}
	if src.byMtime {
		t.Error("title sort must not be pushed down")
	}
	if got[0].Node.Title != "alpha" {
		t.Errorf("order = %v", titles(got))
	}
}

func TestList_ExpandsAliases(t *testing.T) {
	src := &fakeSource{rows: []index.NodeRow{
		{ID: "n1", Title: "Main", Aliases: strings.Join([]string{"Alt A", "Alt B"}, index.ListSep)},
	}}
	got, err := NewBuilder(src).List(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for _, c := range got {
		if c.Node.ID != "n1" {
			t.Errorf("variant lost node identity: %q", c.Node.ID)
		}
	}
}

func TestList_WrapsSourceError(t *testing.T) {
	dbErr := errors.New("database is locked")
	src := &fakeSource{err: dbErr}
	_, err := NewBuilder(src).List(context.Background(), Options{})

	var re *apperr.RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if !errors.Is(err, dbErr) {
		t.Error("cause not preserved through the wrap")
	}
}

func TestList_FormatErrorAborts(t *testing.T) {
	src := &fakeSource{rows: []index.NodeRow{
		{ID: "ok", Title: "Fine"},
		{ID: "bad", Title: "Explodes"},
	}}
	got, err := NewBuilder(src).List(context.Background(), Options{
		Formatter: NewFunc(func(n models.Node) (string, error) {
			if n.ID == "bad" {
				return "", errors.New("render failure")
			}
			return n.Title, nil
		}),
	})

	var fe *apperr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.NodeID != "bad" {
		t.Errorf("NodeID = %q", fe.NodeID)
	}
	if got != nil {
		t.Error("partial list returned alongside error")
	}
}

func TestList_DecodeErrorAborts(t *testing.T) {
	src := &fakeSource{rows: []index.NodeRow{{ID: "bad", Properties: "{nope"}}}
	_, err := NewBuilder(src).List(context.Background(), Options{})

	var de *apperr.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestList_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{}
	if _, err := NewBuilder(src).List(ctx, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if src.queryCount != 0 {
		t.Error("query ran despite canceled context")
	}
}
