package report

import (
	"reflect"
	"testing"

	"github.com/kapu/influencer-insight-go/internal/domain"
)

func TestDedupeSources(t *testing.T) {
	in := []domain.GroundingSource{
		{Title: "A", URI: "https://a.example"},
		{Title: "B", URI: "https://b.example"},
		{Title: "A again", URI: "https://a.example"},
		{Title: "", URI: "https://c.example"},
		{Title: "empty", URI: "  "},
		{Title: "B again", URI: " https://b.example "},
	}

	got := DedupeSources(in)
	want := []domain.GroundingSource{
		{Title: "A", URI: "https://a.example"},
		{Title: "B", URI: "https://b.example"},
		{Title: DefaultSourceTitle, URI: "https://c.example"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sources:\n got %+v\nwant %+v", got, want)
	}
}

func TestDedupeSourcesEmpty(t *testing.T) {
	got := DedupeSources(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
