package prompt

import (
	"strings"
	"testing"
)

func TestComposeFullFacets(t *testing.T) {
	got := Compose(Facets{
		Scene: "studio with white backdrop",
		Model: ModelAttributes{
			Gender:     "female",
			BodyType:   "slim",
			AgeBracket: "25-35",
			Ethnicity:  "asian",
			HairLength: "long",
			HairColor:  "black",
			Styling:    "Elegant",
		},
		Style:    "editorial",
		Theme:    "summer collection",
		Products: []string{"linen blazer", "silk scarf"},
	})
	want := "Scene: studio with white backdrop. " +
		"Model: Female fashion model with Slim build, Asian, age 25-35, long black hair, elegant styling. " +
		"Photography style: editorial. " +
		"Theme: summer collection. " +
		"Featuring products: linen blazer, silk scarf."
	if got != want {
		t.Fatalf("Compose = %q, want %q", got, want)
	}
}

func TestComposeEmptyFacets(t *testing.T) {
	if got := Compose(Facets{}); got != "" {
		t.Fatalf("Compose of empty facets = %q, want empty", got)
	}
	whitespace := Facets{Scene: "  ", Style: "\t", Products: []string{" ", ""}}
	if got := Compose(whitespace); got != "" {
		t.Fatalf("Compose of whitespace facets = %q, want empty", got)
	}
}

func TestComposeSkipsEmptySections(t *testing.T) {
	got := Compose(Facets{Scene: "rooftop at dusk", Theme: "streetwear drop"})
	want := "Scene: rooftop at dusk. Theme: streetwear drop."
	if got != want {
		t.Fatalf("Compose = %q, want %q", got, want)
	}
	if strings.Contains(got, "Model:") || strings.Contains(got, "Featuring products:") {
		t.Fatalf("empty sections leaked a label: %q", got)
	}
}

func TestComposeSectionOrderIsFixed(t *testing.T) {
	got := Compose(Facets{
		Products: []string{"tote bag"},
		Theme:    "minimalist",
		Style:    "flat lay",
		Scene:    "light oak table",
	})
	order := []string{"Scene:", "Photography style:", "Theme:", "Featuring products:"}
	last := -1
	for _, label := range order {
		idx := strings.Index(got, label)
		if idx < 0 {
			t.Fatalf("label %q missing in %q", label, got)
		}
		if idx < last {
			t.Fatalf("label %q out of order in %q", label, got)
		}
		last = idx
	}
}

func TestComposePreservesTerminalPunctuation(t *testing.T) {
	got := Compose(Facets{Scene: "is it golden hour?"})
	if got != "Scene: is it golden hour?" {
		t.Fatalf("Compose = %q, want no doubled punctuation", got)
	}
}

func TestComposeModelPartial(t *testing.T) {
	cases := []struct {
		name  string
		model ModelAttributes
		want  string
	}{
		{
			name:  "gender_only",
			model: ModelAttributes{Gender: "male"},
			want:  "Model: Male fashion model.",
		},
		{
			name:  "no_gender",
			model: ModelAttributes{BodyType: "athletic"},
			want:  "Model: Fashion model with Athletic build.",
		},
		{
			name:  "hair_color_only",
			model: ModelAttributes{Gender: "female", HairColor: "Auburn"},
			want:  "Model: Female fashion model, auburn hair.",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Compose(Facets{Model: tc.model}); got != tc.want {
				t.Fatalf("Compose = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestComposeDeterministic(t *testing.T) {
	f := Facets{Scene: "beach", Products: []string{"sandals"}}
	first := Compose(f)
	for i := 0; i < 5; i++ {
		if got := Compose(f); got != first {
			t.Fatalf("Compose not deterministic: %q vs %q", got, first)
		}
	}
}
