// Package prompt composes structured photography facets into the final
// natural-language prompt sent to generative providers. Composition is pure
// and deterministic so UI previews and dispatches render identically.
package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ModelAttributes describe the fashion model requested for a shoot.
type ModelAttributes struct {
	Gender     string `json:"gender"`
	BodyType   string `json:"body_type"`
	AgeBracket string `json:"age_bracket"`
	Ethnicity  string `json:"ethnicity"`
	HairLength string `json:"hair_length"`
	HairColor  string `json:"hair_color"`
	Styling    string `json:"styling"`
}

func (m ModelAttributes) empty() bool {
	return m.Gender == "" && m.BodyType == "" && m.AgeBracket == "" &&
		m.Ethnicity == "" && m.HairLength == "" && m.HairColor == "" && m.Styling == ""
}

// Facets are the structured inputs collected by the UI forms.
type Facets struct {
	Scene    string          `json:"scene"`
	Model    ModelAttributes `json:"model"`
	Style    string          `json:"style"`
	Theme    string          `json:"theme"`
	Products []string        `json:"products"`
}

var titler = cases.Title(language.English)

// Compose renders the facets into one prompt string. Section order is fixed:
// Scene, then Model, then Photography style, then Theme and Products. Empty
// facets contribute no text and no label. All-empty input composes to "".
func Compose(f Facets) string {
	var sections []string
	if scene := strings.TrimSpace(f.Scene); scene != "" {
		sections = append(sections, "Scene: "+ensurePeriod(scene))
	}
	if model := composeModel(f.Model); model != "" {
		sections = append(sections, "Model: "+ensurePeriod(model))
	}
	if style := strings.TrimSpace(f.Style); style != "" {
		sections = append(sections, "Photography style: "+ensurePeriod(style))
	}
	if theme := strings.TrimSpace(f.Theme); theme != "" {
		sections = append(sections, "Theme: "+ensurePeriod(theme))
	}
	if products := composeProducts(f.Products); products != "" {
		sections = append(sections, "Featuring products: "+ensurePeriod(products))
	}
	return strings.Join(sections, " ")
}

func composeModel(m ModelAttributes) string {
	if m.empty() {
		return ""
	}
	var b strings.Builder
	if gender := strings.TrimSpace(m.Gender); gender != "" {
		b.WriteString(titler.String(gender))
		b.WriteString(" fashion model")
	} else {
		b.WriteString("Fashion model")
	}
	if body := strings.TrimSpace(m.BodyType); body != "" {
		b.WriteString(" with ")
		b.WriteString(titler.String(body))
		b.WriteString(" build")
	}
	if eth := strings.TrimSpace(m.Ethnicity); eth != "" {
		b.WriteString(", ")
		b.WriteString(titler.String(eth))
	}
	if age := strings.TrimSpace(m.AgeBracket); age != "" {
		b.WriteString(", age ")
		b.WriteString(age)
	}
	if hair := composeHair(m.HairLength, m.HairColor); hair != "" {
		b.WriteString(", ")
		b.WriteString(hair)
	}
	if styling := strings.TrimSpace(m.Styling); styling != "" {
		b.WriteString(", ")
		b.WriteString(strings.ToLower(styling))
		b.WriteString(" styling")
	}
	return b.String()
}

func composeHair(length, color string) string {
	parts := make([]string, 0, 2)
	if v := strings.TrimSpace(length); v != "" {
		parts = append(parts, strings.ToLower(v))
	}
	if v := strings.TrimSpace(color); v != "" {
		parts = append(parts, strings.ToLower(v))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " hair"
}

func composeProducts(products []string) string {
	cleaned := make([]string, 0, len(products))
	for _, p := range products {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, ", ")
}

func ensurePeriod(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}
