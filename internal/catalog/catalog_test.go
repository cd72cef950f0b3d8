package catalog

import "testing"

func TestAreasOrderAndCount(t *testing.T) {
	areas := Areas()
	if len(areas) != 14 {
		t.Fatalf("expected 14 areas, got %d", len(areas))
	}
	if areas[0] != "KL City Center" {
		t.Errorf("expected KL City Center first, got %s", areas[0])
	}
	if areas[len(areas)-1] != OtherArea {
		t.Errorf("expected %s last, got %s", OtherArea, areas[len(areas)-1])
	}
}

func TestEveryAreaHasProperties(t *testing.T) {
	for _, area := range Areas() {
		if len(Properties(area)) == 0 {
			t.Errorf("area %s has no properties", area)
		}
	}
}

func TestLookup(t *testing.T) {
	if area, ok := Lookup("  cheras "); !ok || area != "Cheras" {
		t.Errorf("Lookup(cheras) = %q, %v", area, ok)
	}
	if area, ok := Lookup("others"); !ok || area != OtherArea {
		t.Errorf("Lookup(others) = %q, %v", area, ok)
	}
	if _, ok := Lookup("Timbuktu"); ok {
		t.Error("expected unknown area to be rejected")
	}
}

func TestLookupProperty(t *testing.T) {
	if p, ok := LookupProperty("Mont Kiara", " duta park "); !ok || p != "Duta Park" {
		t.Errorf("LookupProperty = %q, %v", p, ok)
	}
	if _, ok := LookupProperty("Mont Kiara", "Trion KL"); ok {
		t.Error("Trion KL should not resolve under Mont Kiara")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		premium bool
	}{
		{"KL City Center", "KL City Center", true},
		{"kl city center", "KL City Center", true},
		{"  Cheras  ", "Cheras", true},
		{"Others", OtherArea, false},
		{"Timbuktu", OtherArea, false},
		{"", OtherArea, false},
	}
	for _, tt := range tests {
		got, premium := Normalize(tt.input)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if premium != tt.premium {
			t.Errorf("Normalize(%q) premium = %v, want %v", tt.input, premium, tt.premium)
		}
	}
}

func TestHasProperty(t *testing.T) {
	if !HasProperty("Mont Kiara", "Duta Park") {
		t.Error("expected Duta Park in Mont Kiara")
	}
	if !HasProperty("mont kiara", "duta park") {
		t.Error("expected case-insensitive property match")
	}
	if HasProperty("Mont Kiara", "Trion KL") {
		t.Error("Trion KL is not in Mont Kiara")
	}
}

func TestBudgetBands(t *testing.T) {
	bands := BudgetBands()
	if len(bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(bands))
	}
	for _, b := range bands {
		if !ValidBudgetBand(b) {
			t.Errorf("band %s should be valid", b)
		}
	}
	if ValidBudgetBand("RM 0-100") {
		t.Error("unexpected band accepted")
	}
}

func TestIsLowBudget(t *testing.T) {
	if !IsLowBudget(BudgetBand500To700) || !IsLowBudget(BudgetBand700To900) {
		t.Error("two lowest bands should be low budget")
	}
	if IsLowBudget(BudgetBand900To1200) || IsLowBudget(BudgetBand1200Plus) {
		t.Error("upper bands should not be low budget")
	}
}

func TestRecommendByBand(t *testing.T) {
	value := Recommend(BudgetBand500To700)
	standard := Recommend(BudgetBand1200Plus)
	if len(value) != 3 || len(standard) != 3 {
		t.Fatalf("expected 3 rooms per set, got %d and %d", len(value), len(standard))
	}
	if value[0].RentRM >= standard[0].RentRM {
		t.Errorf("value set should be cheaper: %d vs %d", value[0].RentRM, standard[0].RentRM)
	}
}
