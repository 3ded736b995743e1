package dictionary

import "strings"

// Category names the table a suggestion was drawn from.
type Category string

const (
	CategoryTitle         Category = "title"
	CategoryQualification Category = "qualification"
	CategoryDepartment    Category = "department"
	CategoryLocation      Category = "location"
	CategoryJobType       Category = "job_type"
	CategoryCompany       Category = "company"
)

// Suggestion is a single dropdown completion.
type Suggestion struct {
	Category Category `json:"category"`
	Value    string   `json:"value"`
}

type entry struct {
	category Category
	value    string
	lower    string
}

// entries flattens every table once, in dictionary order.
var entries = buildEntries()

func buildEntries() []entry {
	var out []entry
	add := func(c Category, values ...string) {
		for _, v := range values {
			out = append(out, entry{category: c, value: v, lower: strings.ToLower(v)})
		}
	}
	for _, rs := range RoleSynonyms {
		add(CategoryTitle, rs.Expansions...)
	}
	add(CategoryQualification, Qualifications...)
	add(CategoryDepartment, Departments...)
	add(CategoryLocation, Locations...)
	for _, jt := range JobTypes {
		add(CategoryJobType, strings.ReplaceAll(jt, "-", " "))
	}
	add(CategoryCompany, CompanyKeywords...)
	return out
}

// Suggest returns up to limit dictionary entries for a dropdown. Entries
// whose value starts with prefix come first, then entries containing it
// elsewhere; both groups keep dictionary order. Matching ignores case and
// a value is reported once per category.
func Suggest(prefix string, limit int) []Suggestion {
	p := strings.ToLower(strings.TrimSpace(prefix))
	out := make([]Suggestion, 0)
	if p == "" || limit <= 0 {
		return out
	}

	seen := make(map[Suggestion]struct{})
	collect := func(match func(e entry) bool) {
		for _, e := range entries {
			if len(out) >= limit {
				return
			}
			if !match(e) {
				continue
			}
			s := Suggestion{Category: e.category, Value: e.value}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	collect(func(e entry) bool { return strings.HasPrefix(e.lower, p) })
	collect(func(e entry) bool {
		return !strings.HasPrefix(e.lower, p) && strings.Contains(e.lower, p)
	})
	return out
}
