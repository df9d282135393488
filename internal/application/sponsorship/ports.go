package sponsorship

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// CaseStudyFetcher calls the provider for a child's case study.
// Fetch returns (nil, nil) when the provider has no case study for the code;
// an error is reserved for transport failures.
type CaseStudyFetcher interface {
	Fetch(ctx context.Context, childCode string) (*CaseStudyDocument, error)
}

// CaseStudyDocument is the provider payload. The provider wraps value lists
// in single-key objects and delivers booleans and numbers as strings, so the
// nested types all unmarshal tolerantly.
type CaseStudyDocument struct {
	ChildCaseStudyDate       string     `json:"ChildCaseStudyDate"`
	ChristianActivities      ValueGroup `json:"ChristianActivities"`
	OtherChristianActivities *string    `json:"OtherChristianActivities"`
	FamilyDuties             ValueGroup `json:"FamilyDuties"`
	OtherFamilyDuties        *string    `json:"OtherFamilyDuties"`
	HobbiesAndSports         ValueGroup `json:"HobbiesAndSports"`
	OtherHobbies             *string    `json:"OtherHobbies"`
	HealthConditions         ValueGroup `json:"HealthConditions"`
	OtherHealthConditions    *string    `json:"OtherHealthConditions"`
	Guardians                ValueGroup `json:"Guardians"`
	NaturalParents           FlagMap    `json:"NaturalParents"`
	Employment               FlagMap    `json:"Employment"`
	Schooling                Schooling  `json:"Schooling"`
	FamilySize               FamilySize `json:"FamilySize"`
}

// ValueGroup flattens a provider list wrapper such as
// {"ChristianActivity": ["singing", "choir"]}. The wrapper value may also be
// a single string, and the whole group may degrade to a bare string like
// "None" when empty; both collapse to no items.
type ValueGroup struct {
	Items []string
}

func (g *ValueGroup) UnmarshalJSON(data []byte) error {
	g.Items = nil
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var list []string
		if err := json.Unmarshal(obj[k], &list); err == nil {
			g.Items = append(g.Items, list...)
			continue
		}
		var one string
		if err := json.Unmarshal(obj[k], &one); err == nil && one != "" {
			g.Items = append(g.Items, one)
		}
	}
	return nil
}

// FlagMap holds a flat object of flag-style fields whose values are strings,
// booleans or numbers, all normalized to strings.
type FlagMap map[string]string

func (m *FlagMap) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case bool:
			out[k] = strconv.FormatBool(t)
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	*m = out
	return nil
}

// SortedKeys returns the flag names in a stable order
func (m FlagMap) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Schooling carries the scalar schooling fields of a case study
type Schooling struct {
	USSchoolEquivalent   FlexString `json:"USSchoolEquivalent"`
	SchoolPerformance    string     `json:"SchoolPerformance"`
	ChildsBestSubject    string     `json:"ChildsBestSubject"`
	ChildAttendingSchool FlexBool   `json:"ChildAttendingSchool"`
}

// FamilySize carries the household headcounts used to derive the family size
type FamilySize struct {
	TotalFamilyFemalesUnder18 FlexInt `json:"TotalFamilyFemalesUnder18"`
	TotalFamilyMalesUnder18   FlexInt `json:"TotalFamilyMalesUnder18"`
}

// FlexString accepts a JSON string or number
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = FlexString(num.String())
		return nil
	}
	return nil
}

// FlexBool accepts a JSON bool or the provider's string spellings of one
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FlexBool(v)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		switch strings.ToLower(str) {
		case "true", "1", "yes":
			*b = true
		default:
			*b = false
		}
	}
	return nil
}

// FlexInt accepts a JSON number or a numeric string
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		*i = FlexInt(v)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, convErr := strconv.Atoi(strings.TrimSpace(str)); convErr == nil {
			*i = FlexInt(n)
		}
	}
	return nil
}
