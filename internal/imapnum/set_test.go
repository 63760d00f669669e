package imapnum

import (
	"reflect"
	"testing"
)

func TestParseStringRoundTrip(t *testing.T) {
	cases := []string{
		"1",
		"1:3",
		"1,3,5:10",
		"5:1",
		"1:*",
		"*:5",
		"*",
	}
	for _, s := range cases {
		set, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		if got := set.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"", "1,", ",1", "a:b", "1:2:3"}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestSetNums(t *testing.T) {
	set, err := Parse("1:3,5,9")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	nums, ok := set.Nums()
	if !ok {
		t.Fatalf("Nums() ok = false, want true")
	}
	want := []uint32{1, 2, 3, 5, 9}
	if !reflect.DeepEqual(nums, want) {
		t.Errorf("Nums() = %v, want %v", nums, want)
	}
}

func TestSetNumsDynamic(t *testing.T) {
	set, err := Parse("1:*")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !set.Dynamic() {
		t.Errorf("Dynamic() = false, want true for %q", set)
	}
	if _, ok := set.Nums(); ok {
		t.Errorf("Nums() ok = true, want false for dynamic set %q", set)
	}
}

func TestSetContains(t *testing.T) {
	set, err := Parse("1:3,10:*")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, num := range []uint32{1, 2, 3, 10, 1000} {
		if !set.Contains(num) {
			t.Errorf("Contains(%d) = false, want true", num)
		}
	}
	for _, num := range []uint32{0, 4, 9} {
		if set.Contains(num) {
			t.Errorf("Contains(%d) = true, want false", num)
		}
	}
}

func TestSetAddNumMerges(t *testing.T) {
	var set Set
	set.AddNum(1, 2, 3)
	nums, ok := set.Nums()
	if !ok {
		t.Fatalf("Nums() ok = false, want true")
	}
	want := []uint32{1, 2, 3}
	if !reflect.DeepEqual(nums, want) {
		t.Errorf("after AddNum, Nums() = %v, want %v", nums, want)
	}
	if len(set) != 1 {
		t.Errorf("after AddNum, set = %v, want a single merged range", set)
	}
}

func TestSetAddSet(t *testing.T) {
	a, _ := Parse("1:2")
	b, _ := Parse("5:6")
	a.AddSet(b)
	nums, _ := a.Nums()
	want := []uint32{1, 2, 5, 6}
	if !reflect.DeepEqual(nums, want) {
		t.Errorf("AddSet result Nums() = %v, want %v", nums, want)
	}
}
