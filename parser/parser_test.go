package parser

import (
	"errors"
	"testing"
)

func TestCodeBlocks(t *testing.T) {
	p := NewParser()
	text := "intro\n```json\n[1, 2]\n```\nmiddle\n```Go\nfunc main() {}\n```\n"

	blocks := p.CodeBlocks(text)
	if len(blocks) != 2 {
		t.Fatalf("CodeBlocks() returned %d blocks, want 2", len(blocks))
	}
	if blocks[0].Language != "json" || blocks[0].Content != "[1, 2]\n" {
		t.Errorf("blocks[0] = %+v", blocks[0])
	}
	if blocks[1].Language != "go" {
		t.Errorf("blocks[1].Language = %q, want go", blocks[1].Language)
	}
}

func TestIndices(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want []int
	}{
		{name: "bare array", text: "[0, 2, 3]", n: 5, want: []int{0, 2, 3}},
		{name: "fenced json", text: "Delete these:\n```json\n[1, 4]\n```", n: 5, want: []int{1, 4}},
		{name: "prose around array", text: "I would delete [3, 0] since they match.", n: 4, want: []int{3, 0}},
		{name: "out of range dropped", text: "[0, 7, -1, 2]", n: 3, want: []int{0, 2}},
		{name: "duplicates dropped", text: "[1, 1, 2, 1]", n: 3, want: []int{1, 2}},
		{name: "string numbers", text: `["0", "2"]`, n: 3, want: []int{0, 2}},
		{name: "float integral", text: "[1.0, 2.5]", n: 3, want: []int{1}},
		{name: "empty array", text: "[]", n: 3, want: nil},
		{name: "unparsable", text: "None of these are related.", n: 3, want: nil},
		{name: "array nested in object", text: `{"delete": [1]}`, n: 3, want: []int{1}},
		{name: "empty text", text: "", n: 3, want: nil},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Indices(tt.text, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Indices(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Indices(%q) = %v, want %v", tt.text, got, tt.want)
				}
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "json array", text: `["travel", "family", "plans"]`, want: []string{"travel", "family", "plans"}},
		{name: "unquoted array", text: "`[travel, family, plans]`", want: []string{"travel", "family", "plans"}},
		{name: "fenced", text: "Here you go:\n```json\n[\"a\", \"b\"]\n```", want: []string{"a", "b"}},
		{name: "comma line", text: "travel, family ,plans", want: []string{"travel", "family", "plans"}},
		{name: "blank entries dropped", text: `["a", " ", ""]`, want: []string{"a"}},
		{name: "multiline prose", text: "no keywords\nhere", want: []string{}},
		{name: "empty", text: "  ", want: []string{}},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Keywords(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Keywords(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Keywords(%q) = %q, want %q", tt.text, got, tt.want)
				}
			}
		})
	}
}

func TestObject(t *testing.T) {
	p := NewParser()

	obj, ok := p.Object("The new state:\n```json\n{\"name\": \"Joan\", \"pets\": 2}\n```")
	if !ok {
		t.Fatal("Object() found nothing")
	}
	if obj["name"] != "Joan" {
		t.Errorf("obj[name] = %v", obj["name"])
	}

	obj, ok = p.Object(`State is {"city": "Paris"} now`)
	if !ok || obj["city"] != "Paris" {
		t.Errorf("Object() inline = %v, %v", obj, ok)
	}

	if _, ok := p.Object("[1, 2]"); ok {
		t.Error("Object() accepted an array")
	}
}

func TestDecode(t *testing.T) {
	p := NewParser()

	var v struct {
		Results string `json:"results" yaml:"results"`
	}
	if err := p.Decode("results: found three memories", &v); err != nil {
		t.Fatalf("Decode(yaml) error = %v", err)
	}
	if v.Results != "found three memories" {
		t.Errorf("Results = %q", v.Results)
	}

	var list []int
	err := p.Decode("nothing structured here at all", &list)
	if !errors.Is(err, ErrNoStructuredData) {
		t.Errorf("Decode() error = %v, want ErrNoStructuredData", err)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	if got := Indices("[2]", 3); len(got) != 1 || got[0] != 2 {
		t.Errorf("Indices() = %v", got)
	}
	if got := Keywords("[x]"); len(got) != 1 || got[0] != "x" {
		t.Errorf("Keywords() = %v", got)
	}
}
