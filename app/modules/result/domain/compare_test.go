package resultdomain

import "testing"

func mustEvent(t *testing.T, id string) Event {
	t.Helper()
	ev, err := LookupEvent(id)
	if err != nil {
		t.Fatalf("LookupEvent(%q): %v", id, err)
	}
	return ev
}

func TestCompareSingle(t *testing.T) {
	cube := mustEvent(t, "333")
	mbld := mustEvent(t, "333mbf")

	tests := []struct {
		name string
		a, b Attempt
		ev   Event
		want int
	}{
		{"faster time wins", 900, 1000, cube, -1},
		{"slower time loses", 1000, 900, cube, 1},
		{"equal times tie", 950, 950, cube, 0},
		{"real beats unknown", 8_000_000, Unknown, cube, -1},
		{"unknown beats dnf", Unknown, DNF, cube, -1},
		{"dnf beats dns", DNF, DNS, cube, -1},
		{"dns beats skipped", DNS, Skipped, cube, -1},
		{"dnf ties dnf", DNF, DNF, cube, 0},
		{"more points win", 35, 20, mbld, -1},
		{"fewer points lose", 20, 35, mbld, 1},
		{"dnf loses to any points", DNF, 1, mbld, 1},
		{"unknown loses to points", Unknown, 1, mbld, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareSingle(tt.a, tt.b, tt.ev); got != tt.want {
				t.Errorf("CompareSingle(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareSingleIsStrictWeakOrdering(t *testing.T) {
	values := []Attempt{Skipped, DNS, DNF, Unknown, 1, 50, 999, 1000, 1000, 8_639_999}

	for _, ev := range Events() {
		for _, a := range values {
			if got := CompareSingle(a, a, ev); got != 0 {
				t.Fatalf("%s: CompareSingle(%v, %v) = %d, want 0", ev.ID, a, a, got)
			}
			for _, b := range values {
				ab, ba := CompareSingle(a, b, ev), CompareSingle(b, a, ev)
				if ab != -ba {
					t.Fatalf("%s: not antisymmetric for %v, %v", ev.ID, a, b)
				}
				if a.IsReal() && !b.IsReal() && ab != -1 {
					t.Fatalf("%s: real %v must beat sentinel %v", ev.ID, a, b)
				}
				for _, c := range values {
					if ab <= 0 && CompareSingle(b, c, ev) <= 0 && CompareSingle(a, c, ev) > 0 {
						t.Fatalf("%s: not transitive for %v, %v, %v", ev.ID, a, b, c)
					}
				}
			}
		}
	}
}

func TestCompareAverageNotApplicableIsWorst(t *testing.T) {
	cube := mustEvent(t, "333")
	if got := CompareAverage(DNF, Skipped, cube); got != -1 {
		t.Fatalf("CompareAverage(DNF, 0) = %d, want -1", got)
	}
	if got := CompareAverage(1250, DNF, cube); got != -1 {
		t.Fatalf("CompareAverage(1250, DNF) = %d, want -1", got)
	}
}
