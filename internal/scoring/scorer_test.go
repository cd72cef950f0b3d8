package scoring

import (
	"testing"
	"time"

	"github.com/huenthong/spacifychat/internal/catalog"
)

var _ Strategy = (*Scorer)(nil)

// testNow pins the timeline criterion's reference date.
var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func testScorer() *Scorer {
	s := NewScorer()
	s.now = func() time.Time { return testNow }
	return s
}

func daysOut(n int) time.Time {
	return testNow.AddDate(0, 0, n)
}

func TestScoreScenarioHot(t *testing.T) {
	s := testScorer()
	attrs := LeadAttributes{
		BudgetBand:  catalog.BudgetBand1200Plus,
		MoveInDate:  daysOut(5),
		Nationality: "Singapore",
		Area:        "Mont Kiara",
	}
	res := s.Score(attrs)
	if res.Total != 98 {
		t.Errorf("expected 98, got %d", res.Total)
	}
}

func TestScoreScenarioCold(t *testing.T) {
	s := testScorer()
	attrs := LeadAttributes{
		BudgetBand:  catalog.BudgetBand500To700,
		MoveInDate:  daysOut(45),
		Nationality: "Malaysia",
		Area:        "somewhere else",
	}
	res := s.Score(attrs)
	if res.Total != 45 {
		t.Errorf("expected 45, got %d", res.Total)
	}
}

func TestScoreScenarioUpperWarmBand(t *testing.T) {
	s := testScorer()
	attrs := LeadAttributes{
		BudgetBand:  catalog.BudgetBand700To900,
		MoveInDate:  daysOut(10),
		Nationality: "China",
		Area:        "Others",
	}
	res := s.Score(attrs)
	if res.Total != 81 {
		t.Errorf("expected 81, got %d", res.Total)
	}
}

func TestScoreDeterminism(t *testing.T) {
	s := testScorer()
	attrs := LeadAttributes{
		BudgetBand:  catalog.BudgetBand900To1200,
		MoveInDate:  daysOut(12),
		Nationality: "India",
		Area:        "Cheras",
		Source:      "Social Media",
	}
	first := s.Score(attrs)
	second := s.Score(attrs)
	if first.Total != second.Total {
		t.Fatalf("totals differ: %d vs %d", first.Total, second.Total)
	}
	for i := range first.Criteria {
		if first.Criteria[i] != second.Criteria[i] {
			t.Errorf("criterion %d differs: %+v vs %+v", i, first.Criteria[i], second.Criteria[i])
		}
	}
}

func TestScoreBoundsAndSum(t *testing.T) {
	s := testScorer()
	cases := []LeadAttributes{
		{},
		{BudgetBand: catalog.BudgetBand1200Plus, MoveInDate: daysOut(1), Nationality: "Singapore", Area: "KL City Center", Source: "Friends/Family"},
		{BudgetBand: "nonsense", MoveInDate: daysOut(200), Nationality: "Mars", Area: "nowhere", Source: "carrier pigeon"},
		{BudgetBand: catalog.BudgetBand700To900, Nationality: "Indonesia", Area: "Setapak"},
	}
	for i, attrs := range cases {
		res := s.Score(attrs)
		if res.Total < 0 || res.Total > 100 {
			t.Errorf("case %d: total %d outside [0,100]", i, res.Total)
		}
		sum := 0
		for _, c := range res.Criteria {
			sum += c.Points
			if c.Points < 0 || c.Points > c.Max {
				t.Errorf("case %d: criterion %s points %d outside [0,%d]", i, c.Name, c.Points, c.Max)
			}
		}
		if sum != res.Total {
			t.Errorf("case %d: breakdown sums to %d, total is %d", i, sum, res.Total)
		}
	}
}

func TestCriteriaOrder(t *testing.T) {
	s := testScorer()
	res := s.Score(LeadAttributes{})
	want := []string{"timeline", "budget", "nationality", "source", "location", "convenience"}
	if len(res.Criteria) != len(want) {
		t.Fatalf("expected %d criteria, got %d", len(want), len(res.Criteria))
	}
	for i, name := range want {
		if res.Criteria[i].Name != name {
			t.Errorf("criterion %d: expected %s, got %s", i, name, res.Criteria[i].Name)
		}
	}
}

func TestTimelineBrackets(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"same day", daysOut(0), 35},
		{"seven days", daysOut(7), 35},
		{"eight days", daysOut(8), 30},
		{"fourteen days", daysOut(14), 30},
		{"fifteen days", daysOut(15), 20},
		{"thirty days", daysOut(30), 20},
		{"thirty one days", daysOut(31), 10},
		{"past date", daysOut(-3), 35},
		{"not provided", time.Time{}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimelineCriterion(LeadAttributes{MoveInDate: tt.date}, testNow)
			if got.Points != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got.Points)
			}
		})
	}
}

func TestTimelineIgnoresTimeOfDay(t *testing.T) {
	// 23:50 now vs 00:10 seven calendar days later must still be 7 days.
	now := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	moveIn := time.Date(2025, 3, 17, 0, 10, 0, 0, time.UTC)
	got := TimelineCriterion(LeadAttributes{MoveInDate: moveIn}, now)
	if got.Points != 35 {
		t.Errorf("expected 35, got %d", got.Points)
	}
}

func TestBudgetTable(t *testing.T) {
	tests := []struct {
		band string
		want int
	}{
		{catalog.BudgetBand500To700, 10},
		{catalog.BudgetBand700To900, 18},
		{catalog.BudgetBand900To1200, 22},
		{catalog.BudgetBand1200Plus, 25},
		{"", 15},
		{"RM 9999", 15},
	}
	for _, tt := range tests {
		got := BudgetCriterion(LeadAttributes{BudgetBand: tt.band})
		if got.Points != tt.want {
			t.Errorf("band %q: expected %d, got %d", tt.band, tt.want, got.Points)
		}
	}
}

func TestNationalityTable(t *testing.T) {
	tests := []struct {
		nationality string
		want        int
	}{
		{"Malaysia", 10},
		{"malaysia", 10},
		{"China", 18},
		{"India", 16},
		{"Singapore", 20},
		{"Indonesia", 17},
		{"France", 15},
		{"", 15},
	}
	for _, tt := range tests {
		got := NationalityCriterion(LeadAttributes{Nationality: tt.nationality})
		if got.Points != tt.want {
			t.Errorf("nationality %q: expected %d, got %d", tt.nationality, tt.want, got.Points)
		}
	}
}

func TestSourceTable(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{"Friends/Family", 10},
		{"Walk-in", 9},
		{"Social Media", 8},
		{"Advertisement", 7},
		{"Website", 6},
		{"", 8},
		{"smoke signal", 8},
	}
	for _, tt := range tests {
		got := SourceCriterion(LeadAttributes{Source: tt.source})
		if got.Points != tt.want {
			t.Errorf("source %q: expected %d, got %d", tt.source, tt.want, got.Points)
		}
	}
}

func TestLocationCriterion(t *testing.T) {
	if got := LocationCriterion(LeadAttributes{Area: "Bukit Jalil"}); got.Points != 6 {
		t.Errorf("serviced area: expected 6, got %d", got.Points)
	}
	if got := LocationCriterion(LeadAttributes{Area: "Others"}); got.Points != 3 {
		t.Errorf("Others: expected 3, got %d", got.Points)
	}
	if got := LocationCriterion(LeadAttributes{}); got.Points != 3 {
		t.Errorf("missing area: expected 3, got %d", got.Points)
	}
}

func TestGracefulDegradationEmptyLead(t *testing.T) {
	s := testScorer()
	res := s.Score(LeadAttributes{})
	// 10 timeline + 15 budget + 15 nationality + 8 source + 3 location + 4 convenience
	if res.Total != 55 {
		t.Errorf("expected 55, got %d", res.Total)
	}
}

func TestBreakdownMap(t *testing.T) {
	s := testScorer()
	res := s.Score(LeadAttributes{Nationality: "Singapore"})
	m := res.BreakdownMap()
	if len(m) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(m))
	}
	if m["nationality"] != 20 {
		t.Errorf("expected nationality 20, got %d", m["nationality"])
	}
}
