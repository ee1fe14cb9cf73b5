package gtstore

import "testing"

func TestGroupMaskCap(t *testing.T) {
	g := newGroupMask(4)
	matches := []bool{true, true, true, true}
	for i := 0; i < maxGroups; i++ {
		if _, err := g.apply(matches); err != nil {
			t.Fatalf("group %d: unexpected error %v", i, err)
		}
	}
	if _, err := g.apply(matches); err == nil {
		t.Fatal("expected TooManyGroups on the 9th group")
	} else if _, ok := err.(*TooManyGroups); !ok {
		t.Fatalf("expected *TooManyGroups, got %T", err)
	}
}

func TestGroupMaskSetCap(t *testing.T) {
	g := newGroupMask(4)
	matches := []bool{true, true, true, true}

	if err := g.setCap(2); err != nil {
		t.Fatalf("setCap(2): unexpected error %v", err)
	}
	if _, err := g.apply(matches); err != nil {
		t.Fatalf("group 0: unexpected error %v", err)
	}
	if _, err := g.apply(matches); err != nil {
		t.Fatalf("group 1: unexpected error %v", err)
	}
	if _, err := g.apply(matches); err == nil {
		t.Fatal("expected TooManyGroups on the 3rd group once capped at 2")
	} else if _, ok := err.(*TooManyGroups); !ok {
		t.Fatalf("expected *TooManyGroups, got %T", err)
	}
}

func TestGroupMaskSetCapAfterAddGroupFails(t *testing.T) {
	g := newGroupMask(4)
	if _, err := g.apply([]bool{true}); err != nil {
		t.Fatal(err)
	}
	if err := g.setCap(4); err == nil {
		t.Fatal("expected an error setting cap after a group was already added")
	}
}

func TestGroupMaskSetCapOutOfRange(t *testing.T) {
	g := newGroupMask(4)
	if err := g.setCap(0); err == nil {
		t.Fatal("expected an error for cap 0")
	}
	if err := g.setCap(maxGroups + 1); err == nil {
		t.Fatal("expected an error for cap above the structural maximum")
	}
}

func TestResolveGroupSpecInline(t *testing.T) {
	spec, err := ResolveGroupSpec(":alice,bob", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Names) != 2 || spec.Names[0] != "alice" || spec.Names[1] != "bob" {
		t.Fatalf("unexpected names: %v", spec.Names)
	}
}

func TestResolveGroupSpecPredicateRequiresParser(t *testing.T) {
	if _, err := ResolveGroupSpec("?age>30", nil); err == nil {
		t.Fatal("expected error when no PredicateParser is supplied")
	}
}

type fixedParser struct{ pred SamplePredicate }

func (f fixedParser) Parse(expr string) (SamplePredicate, error) { return f.pred, nil }

func TestResolveGroupSpecPredicate(t *testing.T) {
	pred := PredicateFunc(func(attrs map[string]string) bool { return attrs["sex"] == "F" })
	spec, err := ResolveGroupSpec("?sex==F", fixedParser{pred: pred})
	if err != nil {
		t.Fatal(err)
	}
	if spec.Predicate == nil {
		t.Fatal("expected a predicate on the resolved spec")
	}
	if !spec.Predicate.Test(map[string]string{"sex": "F"}) {
		t.Fatal("predicate should match sex=F")
	}
}
