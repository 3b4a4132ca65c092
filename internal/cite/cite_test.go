package cite

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single marker", "as shown in [3].", []string{"3"}},
		{"comma group", "prior work [2,5] agrees", []string{"2", "5"}},
		{"range", "studies [7-9] report", []string{"7", "8", "9"}},
		{"reversed range", "studies [9-7] report", []string{"7", "8", "9"}},
		{
			"mixed separators with duplicate",
			"Memory types differ [2, 3-5; 3].",
			[]string{"2", "3", "4", "5"},
		},
		{
			"non numeric ignored",
			"[A1] and [beta]; [10]",
			[]string{"10"},
		},
		{"no markers", "plain prose with no brackets", nil},
		{"empty brackets", "odd [] artifact", nil},
		{
			"first appearance order across groups",
			"[4] then [1, 4] then [2]",
			[]string{"4", "1", "2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractNeverDuplicates(t *testing.T) {
	got := Extract("[1] [1-3] [2;3] [1]")
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}
