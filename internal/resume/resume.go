package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPositions seed the search when the resume yields no usable titles.
var DefaultPositions = []string{
	"Supply Chain Manager",
	"Operations Manager",
	"Logistics Manager",
	"Procurement Manager",
}

// Values starting with '[' are unfilled template placeholders.
const placeholderPrefix = "["

var titleHints = []string{
	"manager", "director", "analyst", "coordinator", "specialist",
	"supervisor", "lead", "head", "vp ", "vice president", "president",
	"officer", "consultant", "engineer", "planner", "buyer", "agent",
	"associate", "representative", "executive",
}

var skillsHeading = regexp.MustCompile(`^(skills|core competencies|competencies|technical skills)`)

// Resume is a parsed resume document. Either a structured YAML resume or a
// converted document carrying only raw text.
type Resume struct {
	data map[string]any
}

// Load parses the resume document at path. YAML resumes load structured;
// pdf and txt uploads are converted to a raw-text resume first. A missing or
// malformed file yields an empty resume, not an error, matching how the rest
// of the pipeline treats resume data as best-effort.
func Load(path string) *Resume {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return &Resume{data: map[string]any{}}
		}
		return Parse(raw)
	default:
		text, err := ExtractDocumentText(path)
		if err != nil {
			return &Resume{data: map[string]any{}}
		}
		return &Resume{data: ToConvertedYAML(text, strings.TrimPrefix(ext, "."))}
	}
}

// Parse decodes resume YAML bytes.
func Parse(raw []byte) *Resume {
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil || data == nil {
		data = map[string]any{}
	}
	return &Resume{data: data}
}

// Converted reports whether the resume came from a non-YAML upload and only
// carries raw text.
func (r *Resume) Converted() bool {
	converted, _ := r.data["_converted"].(bool)
	return converted
}

// RawText returns the text of a converted resume.
func (r *Resume) RawText() string {
	text, _ := r.data["raw_text"].(string)
	return text
}

// Positions returns the job titles to target, in resume order: desired
// positions first, then titles held. Converted resumes fall back to a
// line-scanning heuristic.
func (r *Resume) Positions() []string {
	if r.Converted() {
		return positionsFromText(r.RawText())
	}

	seen := map[string]struct{}{}
	positions := []string{}

	if prefs, ok := r.data["job_preferences"].(map[string]any); ok {
		for _, item := range asSlice(prefs["desired_positions"]) {
			position := strings.TrimSpace(asString(item))
			if realValue(position) {
				if _, dup := seen[position]; !dup {
					positions = append(positions, position)
					seen[position] = struct{}{}
				}
			}
		}
	}

	for _, exp := range r.experiences() {
		position := strings.TrimSpace(asString(exp["position"]))
		if realValue(position) {
			if _, dup := seen[position]; !dup {
				positions = append(positions, position)
				seen[position] = struct{}{}
			}
		}
	}

	return positions
}

// Skills returns every distinct skill across the experience entries.
func (r *Resume) Skills() []string {
	if r.Converted() {
		return skillsFromText(r.RawText())
	}

	seen := map[string]struct{}{}
	skills := []string{}
	for _, exp := range r.experiences() {
		for _, item := range asSlice(exp["skills_acquired"]) {
			skill := strings.TrimSpace(asString(item))
			if realValue(skill) {
				if _, dup := seen[skill]; !dup {
					skills = append(skills, skill)
					seen[skill] = struct{}{}
				}
			}
		}
	}
	return skills
}

// Text flattens the resume into a single readable string for prompts.
func (r *Resume) Text() string {
	if r.Converted() {
		return r.RawText()
	}

	lines := []string{}

	if pi, ok := r.data["personal_information"].(map[string]any); ok {
		name := strings.TrimSpace(asString(pi["name"]) + " " + asString(pi["surname"]))
		if name != "" {
			lines = append(lines, name)
		}
	}

	for _, exp := range r.experiences() {
		lines = append(lines, fmt.Sprintf("[Experience] %s at %s (%s)",
			asString(exp["position"]), asString(exp["company"]), asString(exp["employment_period"])))
		for _, resp := range asSlice(exp["key_responsibilities"]) {
			switch v := resp.(type) {
			case map[string]any:
				for _, val := range v {
					lines = append(lines, asString(val))
				}
			case string:
				lines = append(lines, v)
			}
		}
		for _, skill := range asSlice(exp["skills_acquired"]) {
			lines = append(lines, "  Skill: "+asString(skill))
		}
	}

	for _, item := range asSlice(r.data["education_details"]) {
		if edu, ok := item.(map[string]any); ok {
			lines = append(lines, fmt.Sprintf("[Education] %s in %s at %s",
				asString(edu["education_level"]), asString(edu["field_of_study"]), asString(edu["institution"])))
		}
	}

	for _, item := range asSlice(r.data["certifications"]) {
		if cert, ok := item.(map[string]any); ok {
			lines = append(lines, fmt.Sprintf("[Cert] %s - %s",
				asString(cert["name"]), asString(cert["description"])))
		}
	}

	for _, item := range asSlice(r.data["projects"]) {
		if proj, ok := item.(map[string]any); ok {
			lines = append(lines, fmt.Sprintf("[Project] %s - %s",
				asString(proj["name"]), asString(proj["description"])))
		}
	}

	return strings.Join(lines, "\n")
}

func (r *Resume) experiences() []map[string]any {
	items := asSlice(r.data["experience_details"])
	result := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if exp, ok := item.(map[string]any); ok {
			result = append(result, exp)
		}
	}
	return result
}

func realValue(value string) bool {
	return value != "" && !strings.HasPrefix(value, placeholderPrefix)
}

// positionsFromText scans converted raw text for lines that look like job
// titles: short, containing a seniority hint, not a sentence. Capped at six.
func positionsFromText(text string) []string {
	seen := map[string]struct{}{}
	positions := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 4 || len(line) > 80 {
			continue
		}
		lower := strings.ToLower(line)
		hinted := false
		for _, hint := range titleHints {
			if strings.Contains(lower, hint) {
				hinted = true
				break
			}
		}
		if !hinted || strings.Contains(line, ". ") || len(strings.Fields(line)) > 8 {
			continue
		}
		normalized := titleCase(line)
		if _, dup := seen[normalized]; !dup {
			positions = append(positions, normalized)
			seen[normalized] = struct{}{}
			if len(positions) == 6 {
				break
			}
		}
	}
	return positions
}

// skillsFromText pulls comma or bullet separated items under a skills
// heading. Capped at twenty.
func skillsFromText(text string) []string {
	seen := map[string]struct{}{}
	skills := []string{}
	inSkills := false
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if skillsHeading.MatchString(strings.ToLower(stripped)) {
			inSkills = true
			continue
		}
		if !inSkills {
			continue
		}
		if stripped == "" {
			inSkills = false
			continue
		}
		for _, part := range strings.FieldsFunc(stripped, func(r rune) bool {
			return r == ',' || r == '|' || r == '•' || r == '·'
		}) {
			part = strings.Trim(part, " -·•")
			if len(part) < 2 || len(part) > 50 {
				continue
			}
			if _, dup := seen[part]; !dup {
				skills = append(skills, part)
				seen[part] = struct{}{}
				if len(skills) == 20 {
					return skills
				}
			}
		}
	}
	return skills
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asSlice(value any) []any {
	items, _ := value.([]any)
	return items
}
