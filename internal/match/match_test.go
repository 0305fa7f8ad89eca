package match

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore(t *testing.T) {
	cases := []struct {
		query, candidate string
		want             float64
	}{
		{"Write spec", "write SPEC", 1.0},
		{"login", "Implement Login Flow", 0.9},
		{"Implement Login Flow extended", "Login Flow", 0.9},
		{"login page", "Implement Login Flow", 0.7},
		{"login flow", "Implement the Flow for Login", 0.9},
		{"logn", "Implement Login Flow", 0.45},
		{"best", "test suite", 0.45},
		{"login tset", "Implement Login Flow", 0.7},
		{"database", "Implement Login Flow", 0},
		{"", "anything", 0},
		{"cat", "bat", 0},
	}
	for _, tc := range cases {
		got := Score(tc.query, tc.candidate)
		if !approx(got, tc.want) {
			t.Errorf("Score(%q, %q) = %v, want %v", tc.query, tc.candidate, got, tc.want)
		}
	}
}

func TestScore_ShortWordsNeedContainment(t *testing.T) {
	// "api" and "app" are one edit apart but too short for typo tolerance.
	if got := Score("api", "Mobile app"); got != 0 {
		t.Fatalf("Score = %v, want 0", got)
	}
}

func TestScore_TyposRankBelowOverlap(t *testing.T) {
	tasks := []task{
		{"1", "Test suite"},
		{"2", "Best practices"},
	}
	got, score, ok := Best("best", tasks, title)
	if !ok || got.id != "2" {
		t.Fatalf("best = %+v, want task 2", got)
	}
	if !approx(score, 0.9) {
		t.Fatalf("score = %v, want 0.9", score)
	}
	if s := Score("best", "Test suite"); s >= 0.5 {
		t.Fatalf("typo score = %v, want below the word overlap tier", s)
	}
}

func TestScore_TypoCountsRunes(t *testing.T) {
	// Three letters but six bytes: too short for typo tolerance.
	if got := Score("äöü", "äöx list"); got != 0 {
		t.Fatalf("Score = %v, want 0", got)
	}
	if got := Score("grüße", "grüsse memo"); got != 0 {
		t.Fatalf("Score = %v, want 0 (two edits)", got)
	}
	if got := Score("grüße", "grüte memo"); !approx(got, 0.45) {
		t.Fatalf("Score = %v, want 0.45", got)
	}
}

type task struct {
	id, title string
}

func title(t task) string { return t.title }

func TestBest_TypoScenario(t *testing.T) {
	tasks := []task{
		{"1", "Write spec"},
		{"2", "Implement Login Flow"},
		{"3", "Deploy staging"},
	}
	got, score, ok := Best("logn", tasks, title)
	if !ok {
		t.Fatal("no match")
	}
	if got.id != "2" {
		t.Fatalf("best = %q, want task 2", got.id)
	}
	if score <= Threshold {
		t.Fatalf("score = %v, want > %v", score, Threshold)
	}
}

func TestRank_OrderAndTies(t *testing.T) {
	tasks := []task{
		{"a", "Design review notes"},
		{"b", "Design"},
		{"c", "Review design"},
		{"d", "Unrelated"},
		{"e", "design"},
	}
	ranked := Rank("design", tasks, title)
	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.Item.id)
	}
	want := []string{"b", "e", "a", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ranked = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ranked = %v, want %v", ids, want)
		}
	}
}

func TestBest_NoMatch(t *testing.T) {
	_, _, ok := Best("zzz", []task{{"1", "Write spec"}}, title)
	if ok {
		t.Fatal("expected no match")
	}
}

func TestNearest(t *testing.T) {
	tasks := []task{
		{"1", "Alpha"},
		{"2", "Beta release"},
		{"3", "Gamma"},
		{"4", "Release notes"},
	}
	got := Nearest("release", tasks, title, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].id != "2" || got[1].id != "4" || got[2].id != "1" {
		t.Fatalf("nearest = %+v", got)
	}
}
