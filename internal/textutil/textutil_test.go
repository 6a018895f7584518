package textutil

import (
	"reflect"
	"testing"
)

func TestClip(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "h"},
		{"héllo", 3, "hé"},
		{"", 5, ""},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		if got := Clip(tc.in, tc.n); got != tc.want {
			t.Errorf("Clip(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestSignificantWords(t *testing.T) {
	got := SignificantWords("use a content-addressed cache for it", 4)
	want := []string{"content-addressed", "cache"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SignificantWords = %v, want %v", got, want)
	}
}

func TestCountContainedWords(t *testing.T) {
	haystack := "we should use a content-addressed cache"
	if got := CountContainedWords(haystack, []string{"content-addressed", "cache", "sharding"}); got != 2 {
		t.Fatalf("CountContainedWords = %d, want 2", got)
	}
	if !ContainsAnyWord(haystack, []string{"zzz", "cache"}) {
		t.Fatal("ContainsAnyWord should find cache")
	}
	if ContainsAnyWord(haystack, []string{"zzz"}) {
		t.Fatal("ContainsAnyWord should not match")
	}
}
