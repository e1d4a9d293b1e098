package due

import (
	"math"
	"testing"
)

func TestCompareOverdueFirst(t *testing.T) {
	t.Parallel()
	overdue := Descriptor{TaskID: "task_b", Kind: KindDate, Due: true, Rank: -10}
	upcoming := Descriptor{TaskID: "task_a", Kind: KindDate, Rank: 3}

	if Compare(overdue, upcoming) >= 0 {
		t.Fatal("overdue task does not sort before upcoming task")
	}
	if Compare(upcoming, overdue) <= 0 {
		t.Fatal("comparison is not antisymmetric")
	}
}

func TestSortByUrgency(t *testing.T) {
	t.Parallel()
	ds := []Descriptor{
		{TaskID: "task_smoke", Kind: KindDate, Rank: 3},
		{TaskID: "task_oil", Kind: KindCounter, Rank: UnknownRank},
		{TaskID: "task_filter", Kind: KindDate, Due: true, Rank: -10},
		{TaskID: "task_tires", Kind: KindCounter, Rank: 1000},
		{TaskID: "task_brakes", Kind: KindCounter, Due: true, Rank: -500},
		{TaskID: "task_gutters", Kind: KindDate, Due: true, Rank: 0},
	}

	SortByUrgency(ds)

	wantOrder := []string{"task_brakes", "task_filter", "task_gutters", "task_smoke", "task_tires", "task_oil"}
	for i, want := range wantOrder {
		if ds[i].TaskID != want {
			t.Fatalf("position %d = %s, want %s", i, ds[i].TaskID, want)
		}
	}
	if !math.IsInf(ds[len(ds)-1].Rank, 1) {
		t.Fatal("unknown-rank task did not sort last")
	}
}

func TestCompareTieBreakOnID(t *testing.T) {
	t.Parallel()
	a := Descriptor{TaskID: "task_a", Rank: 5}
	b := Descriptor{TaskID: "task_b", Rank: 5}

	if Compare(a, b) >= 0 || Compare(b, a) <= 0 {
		t.Fatal("equal ranks do not tie-break on task id")
	}

	ua := Descriptor{TaskID: "task_a", Rank: UnknownRank}
	ub := Descriptor{TaskID: "task_b", Rank: UnknownRank}
	if Compare(ua, ub) >= 0 {
		t.Fatal("unknown ranks do not tie-break on task id")
	}
}

func TestSortByUrgencyDeterministic(t *testing.T) {
	t.Parallel()
	forward := []Descriptor{
		{TaskID: "task_a", Rank: 2},
		{TaskID: "task_b", Rank: 2},
		{TaskID: "task_c", Rank: -1},
		{TaskID: "task_d", Rank: UnknownRank},
	}
	reversed := make([]Descriptor, len(forward))
	for i, d := range forward {
		reversed[len(forward)-1-i] = d
	}

	SortByUrgency(forward)
	SortByUrgency(reversed)
	for i := range forward {
		if forward[i].TaskID != reversed[i].TaskID {
			t.Fatalf("order depends on input order at %d: %s vs %s",
				i, forward[i].TaskID, reversed[i].TaskID)
		}
	}

	again := make([]Descriptor, len(forward))
	copy(again, forward)
	SortByUrgency(again)
	for i := range forward {
		if again[i].TaskID != forward[i].TaskID {
			t.Fatalf("sorting twice changed order at %d", i)
		}
	}
}

func TestParseUnitFamilies(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		unit   Unit
		family Family
	}{
		{in: "days", unit: UnitDays, family: FamilyCalendar},
		{in: "weeks", unit: UnitWeeks, family: FamilyCalendar},
		{in: "months", unit: UnitMonths, family: FamilyCalendar},
		{in: "kilometers", unit: UnitKilometers, family: FamilyCounter},
		{in: "miles", unit: UnitMiles, family: FamilyCounter},
		{in: " Months ", unit: UnitMonths, family: FamilyCalendar},
	}
	for _, tt := range tests {
		got, err := ParseUnit(tt.in)
		if err != nil {
			t.Fatalf("ParseUnit(%q) error: %v", tt.in, err)
		}
		if got != tt.unit || got.Family() != tt.family {
			t.Fatalf("ParseUnit(%q) = %v/%v, want %v/%v", tt.in, got, got.Family(), tt.unit, tt.family)
		}
	}

	if _, err := ParseUnit("fortnights"); err == nil {
		t.Fatal("ParseUnit accepted an unknown unit")
	}
}
