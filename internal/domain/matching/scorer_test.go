package matching

import (
	"math"
	"reflect"
	"testing"
	"time"

	"workboard/internal/domain"
	"workboard/internal/domain/job"
	"workboard/internal/domain/match"
	"workboard/internal/domain/worker"
	"workboard/internal/skill"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(Weights{Skill: 0.7, Location: 0.3})
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	return s
}

func TestScore_SkillAndLocation(t *testing.T) {
	s := newTestScorer(t)

	w := worker.Profile{ID: "w1", Skills: skill.NewSet("python", "sql"), Location: domain.Location{Region: "NYC"}}
	j := job.Posting{ID: "j1", RequiredSkills: skill.NewSet("python", "sql", "docker"), Location: domain.Location{Region: "nyc "}}

	res := s.Score(w, j)

	want := (2.0/3.0)*0.7 + 0.3
	if math.Abs(res.Score-want) > 1e-12 {
		t.Fatalf("expected score %v, got %v", want, res.Score)
	}
	if math.Abs(res.Score-0.767) > 1e-3 {
		t.Fatalf("expected score ~0.767, got %v", res.Score)
	}
	if res.SkillOverlap != 2 {
		t.Fatalf("expected overlap 2, got %d", res.SkillOverlap)
	}
	if !res.LocationBonus {
		t.Fatalf("expected location bonus")
	}
	if !reflect.DeepEqual(res.MissingSkills, []string{"docker"}) {
		t.Fatalf("unexpected missing skills %v", res.MissingSkills)
	}
}

func TestScore_EmptyRequiredSkills(t *testing.T) {
	s := newTestScorer(t)

	w := worker.Profile{ID: "w1", Skills: skill.NewSet("python"), Location: domain.Location{Region: "Pune"}}
	j := job.Posting{ID: "j1", RequiredSkills: skill.Set{}, Location: domain.Location{Region: "Mumbai"}}

	res := s.Score(w, j)
	if res.Score != 0 {
		t.Fatalf("expected 0, got %v", res.Score)
	}
	if res.SkillOverlap != 0 || res.LocationBonus {
		t.Fatalf("unexpected result %+v", res)
	}

	j.Location.Region = "pune"
	res = s.Score(w, j)
	if math.Abs(res.Score-0.3) > 1e-12 {
		t.Fatalf("expected location-only score 0.3, got %v", res.Score)
	}
}

func TestScore_MissingRegionGivesNoBonus(t *testing.T) {
	s := newTestScorer(t)
	w := worker.Profile{ID: "w1", Skills: skill.NewSet("go")}
	j := job.Posting{ID: "j1", RequiredSkills: skill.NewSet("go")}

	res := s.Score(w, j)
	if res.LocationBonus {
		t.Fatalf("empty regions must not match")
	}
	if math.Abs(res.Score-0.7) > 1e-12 {
		t.Fatalf("expected 0.7, got %v", res.Score)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := newTestScorer(t)
	w := worker.Profile{ID: "w1", Skills: skill.NewSet("python", "sql", "aws"), Location: domain.Location{Region: "Delhi"}}
	j := job.Posting{ID: "j1", RequiredSkills: skill.NewSet("aws", "docker", "kubernetes", "python"), Location: domain.Location{Region: "delhi"}}

	a := s.Score(w, j)
	b := s.Score(w, j)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
	if math.Float64bits(a.Score) != math.Float64bits(b.Score) {
		t.Fatalf("scores not bit-identical")
	}
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       Weights
		wantErr bool
	}{
		{name: "default", w: DefaultWeights()},
		{name: "skill only", w: Weights{Skill: 1}},
		{name: "sum too large", w: Weights{Skill: 0.8, Location: 0.3}, wantErr: true},
		{name: "negative", w: Weights{Skill: 1.2, Location: -0.2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestRank_TieBreak(t *testing.T) {
	older := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	cands := []Candidate{
		{Result: match.Result{JobID: "b", Score: 0.5}, PostedAt: older},
		{Result: match.Result{JobID: "c", Score: 0.5}, PostedAt: newer},
		{Result: match.Result{JobID: "a", Score: 0.5}, PostedAt: older},
		{Result: match.Result{JobID: "z", Score: 0.9}, PostedAt: older},
	}
	Rank(cands)

	got := make([]string, 0, len(cands))
	for _, c := range cands {
		got = append(got, c.Result.JobID)
	}
	want := []string{"z", "c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPaginate(t *testing.T) {
	cands := make([]Candidate, 5)
	for i := range cands {
		cands[i] = Candidate{Result: match.Result{JobID: string(rune('a' + i))}}
	}

	if got := Paginate(cands, 0, 2); len(got) != 2 || got[0].JobID != "a" {
		t.Fatalf("unexpected first page %v", got)
	}
	if got := Paginate(cands, 2, 2); len(got) != 1 || got[0].JobID != "e" {
		t.Fatalf("unexpected last page %v", got)
	}
	if got := Paginate(cands, 3, 2); len(got) != 0 {
		t.Fatalf("expected empty page, got %v", got)
	}
	for _, page := range []int{math.MaxInt64 / 3, 1 << 62, math.MaxInt} {
		if got := Paginate(cands, page, 5); len(got) != 0 {
			t.Fatalf("page %d: expected empty page, got %v", page, got)
		}
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct{ total, size, want int }{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{math.MaxInt, 100, math.MaxInt/100 + 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.size); got != tt.want {
			t.Fatalf("PageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}
