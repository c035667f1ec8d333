package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cats vs Dogs", "cats-vs-dogs"},
		{"  Trim Me  ", "trim-me"},
		{"Hello, World!", "hello-world"},
		{"---", ""},
		{"Already-Slugged", "already-slugged"},
		{"多语言 Title 123", "title-123"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
