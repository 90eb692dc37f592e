package categorize

import "strings"

// JobTitleOther is the fallback bucket for uncategorizable titles.
const JobTitleOther = "Other"

// JobTitleCategory is one bucket of the fixed job-title taxonomy.
type JobTitleCategory struct {
	Name     string
	Color    string
	Keywords []string
}

// jobTitleCategories is scanned in order; the first category with a
// matching keyword wins, so narrower categories sit above broader ones.
var jobTitleCategories = []JobTitleCategory{
	{
		Name:  "Executive Leadership",
		Color: "#8B5CF6",
		Keywords: []string{
			"chief", "ceo", "cfo", "coo", "cto", "cio",
			"executive director", "managing director", "general manager",
			"deputy secretary", "executive manager", "director general",
		},
	},
	{
		Name:  "Data & Analytics",
		Color: "#06B6D4",
		Keywords: []string{
			"data", "analytics", "analyst", "insights", "statistician",
			"business intelligence", "reporting",
		},
	},
	{
		Name:  "GIS & Spatial",
		Color: "#10B981",
		Keywords: []string{
			"gis", "spatial", "geospatial", "geographic", "cartograph",
			"mapping", "surveyor",
		},
	},
	{
		Name:  "Planning",
		Color: "#3B82F6",
		Keywords: []string{
			"planner", "planning", "strategic land use", "town plan",
			"urban design", "place", "precinct",
		},
	},
	{
		Name:  "Property & Development",
		Color: "#F59E0B",
		Keywords: []string{
			"property", "development", "land", "valuer", "valuation",
			"acquisition", "divestment", "leasing", "portfolio",
			"real estate", "asset",
		},
	},
	{
		Name:  "Environment & Sustainability",
		Color: "#22C55E",
		Keywords: []string{
			"environment", "sustainability", "ecolog", "heritage",
			"biodiversity", "climate", "resilience",
		},
	},
	{
		Name:  "Transport & Infrastructure",
		Color: "#EAB308",
		Keywords: []string{
			"transport", "infrastructure", "roads", "traffic", "rail",
			"utilities", "network",
		},
	},
	{
		Name:  "Engineering & Technical",
		Color: "#EF4444",
		Keywords: []string{
			"engineer", "technical", "architect", "designer", "drafts",
			"scientist", "modeller",
		},
	},
	{
		Name:  "Project & Program Management",
		Color: "#EC4899",
		Keywords: []string{
			"project manager", "program manager", "programme", "project officer",
			"project director", "delivery", "pmo", "scrum",
		},
	},
	{
		Name:  "Policy & Strategy",
		Color: "#6366F1",
		Keywords: []string{
			"policy", "strategy", "strategist", "advisor", "adviser",
			"economist", "research",
		},
	},
	{
		Name:  "Administration & Support",
		Color: "#94A3B8",
		Keywords: []string{
			"administration", "administrator", "coordinator", "assistant",
			"support", "officer", "customer service",
		},
	},
	{
		Name:  "Sales & Marketing",
		Color: "#F97316",
		Keywords: []string{
			"sales", "marketing", "business development", "account manager",
			"engagement", "communications", "partnerships",
		},
	},
}

// jobTitleOverrides wins over the keyword scan for titles the keyword
// lists misfile. Keys are lower-cased exact titles as they appear in
// the CRM. Curated by hand from observed data.
var jobTitleOverrides = map[string]string{
	"ceo":                              "Executive Leadership",
	"chief executive officer":          "Executive Leadership",
	"chief executive":                  "Executive Leadership",
	"acting ceo":                       "Executive Leadership",
	"managing director":                "Executive Leadership",
	"executive director":               "Executive Leadership",
	"general manager":                  "Executive Leadership",
	"gm":                               "Executive Leadership",
	"deputy secretary":                 "Executive Leadership",
	"secretary":                        "Executive Leadership",
	"director":                         "Executive Leadership",
	"associate director":               "Executive Leadership",
	"head of property":                 "Property & Development",
	"head of planning":                 "Planning",
	"city planner":                     "Planning",
	"town planner":                     "Planning",
	"senior town planner":              "Planning",
	"strategic planner":                "Planning",
	"senior strategic planner":         "Planning",
	"graduate planner":                 "Planning",
	"student planner":                  "Planning",
	"principal planner":                "Planning",
	"land use planner":                 "Planning",
	"environmental planner":            "Planning",
	"senior environmental planner":     "Planning",
	"transport planner":                "Transport & Infrastructure",
	"senior transport planner":         "Transport & Infrastructure",
	"infrastructure planner":           "Transport & Infrastructure",
	"urban designer":                   "Planning",
	"senior urban designer":            "Planning",
	"place manager":                    "Planning",
	"place coordinator":                "Planning",
	"property officer":                 "Property & Development",
	"senior property officer":          "Property & Development",
	"property manager":                 "Property & Development",
	"senior property manager":          "Property & Development",
	"property development manager":     "Property & Development",
	"development manager":              "Property & Development",
	"senior development manager":       "Property & Development",
	"assistant development manager":    "Property & Development",
	"land manager":                     "Property & Development",
	"landowner":                        "Property & Development",
	"valuer":                           "Property & Development",
	"senior valuer":                    "Property & Development",
	"asset manager":                    "Property & Development",
	"senior asset manager":             "Property & Development",
	"asset officer":                    "Property & Development",
	"leasing manager":                  "Property & Development",
	"portfolio manager":                "Property & Development",
	"acquisitions manager":             "Property & Development",
	"gis analyst":                      "GIS & Spatial",
	"senior gis analyst":               "GIS & Spatial",
	"gis officer":                      "GIS & Spatial",
	"senior gis officer":               "GIS & Spatial",
	"gis specialist":                   "GIS & Spatial",
	"gis coordinator":                  "GIS & Spatial",
	"gis manager":                      "GIS & Spatial",
	"spatial analyst":                  "GIS & Spatial",
	"senior spatial analyst":           "GIS & Spatial",
	"spatial data analyst":             "GIS & Spatial",
	"spatial services manager":         "GIS & Spatial",
	"geospatial analyst":               "GIS & Spatial",
	"surveyor":                         "GIS & Spatial",
	"registered surveyor":              "GIS & Spatial",
	"data analyst":                     "Data & Analytics",
	"senior data analyst":              "Data & Analytics",
	"data scientist":                   "Data & Analytics",
	"senior data scientist":            "Data & Analytics",
	"data engineer":                    "Data & Analytics",
	"business analyst":                 "Data & Analytics",
	"senior business analyst":          "Data & Analytics",
	"insights analyst":                 "Data & Analytics",
	"reporting analyst":                "Data & Analytics",
	"research analyst":                 "Data & Analytics",
	"analyst":                          "Data & Analytics",
	"senior analyst":                   "Data & Analytics",
	"principal analyst":                "Data & Analytics",
	"policy officer":                   "Policy & Strategy",
	"senior policy officer":            "Policy & Strategy",
	"policy advisor":                   "Policy & Strategy",
	"policy analyst":                   "Policy & Strategy",
	"strategy manager":                 "Policy & Strategy",
	"senior strategy manager":          "Policy & Strategy",
	"strategic advisor":                "Policy & Strategy",
	"economist":                        "Policy & Strategy",
	"senior economist":                 "Policy & Strategy",
	"project manager":                  "Project & Program Management",
	"senior project manager":           "Project & Program Management",
	"project director":                 "Project & Program Management",
	"project officer":                  "Project & Program Management",
	"senior project officer":           "Project & Program Management",
	"program manager":                  "Project & Program Management",
	"senior program manager":           "Project & Program Management",
	"program director":                 "Project & Program Management",
	"program officer":                  "Project & Program Management",
	"project coordinator":              "Project & Program Management",
	"delivery manager":                 "Project & Program Management",
	"civil engineer":                   "Engineering & Technical",
	"senior engineer":                  "Engineering & Technical",
	"principal engineer":               "Engineering & Technical",
	"structural engineer":              "Engineering & Technical",
	"geotechnical engineer":            "Engineering & Technical",
	"environmental engineer":           "Engineering & Technical",
	"software engineer":                "Engineering & Technical",
	"architect":                        "Engineering & Technical",
	"landscape architect":              "Engineering & Technical",
	"senior landscape architect":       "Engineering & Technical",
	"environmental scientist":          "Environment & Sustainability",
	"senior environmental scientist":   "Environment & Sustainability",
	"environment officer":              "Environment & Sustainability",
	"sustainability officer":           "Environment & Sustainability",
	"sustainability manager":           "Environment & Sustainability",
	"ecologist":                        "Environment & Sustainability",
	"senior ecologist":                 "Environment & Sustainability",
	"heritage officer":                 "Environment & Sustainability",
	"transport analyst":                "Transport & Infrastructure",
	"transport modeller":               "Transport & Infrastructure",
	"traffic engineer":                 "Transport & Infrastructure",
	"infrastructure manager":           "Transport & Infrastructure",
	"executive assistant":              "Administration & Support",
	"personal assistant":               "Administration & Support",
	"administration officer":           "Administration & Support",
	"administrative officer":           "Administration & Support",
	"office manager":                   "Administration & Support",
	"team assistant":                   "Administration & Support",
	"customer service officer":         "Administration & Support",
	"business support officer":         "Administration & Support",
	"account manager":                  "Sales & Marketing",
	"senior account manager":           "Sales & Marketing",
	"business development manager":     "Sales & Marketing",
	"sales manager":                    "Sales & Marketing",
	"marketing manager":                "Sales & Marketing",
	"marketing coordinator":            "Sales & Marketing",
	"communications officer":           "Sales & Marketing",
	"communications manager":           "Sales & Marketing",
	"engagement officer":               "Sales & Marketing",
	"stakeholder engagement manager":   "Sales & Marketing",
	"partnerships manager":             "Sales & Marketing",
	"student":                          "Other",
	"consultant":                       "Other",
	"senior consultant":                "Other",
	"principal consultant":             "Other",
	"contractor":                       "Other",
	"volunteer":                        "Other",
	"retired":                          "Other",
	"n/a":                              "Other",
	"-":                                "Other",
}

// CategorizeJobTitle resolves free-text job titles to exactly one
// taxonomy bucket. Precedence: exact override, first keyword match in
// table order, then Other. Blank input is Other without consulting the
// override table.
func CategorizeJobTitle(title string) string {
	trimmed := strings.ToLower(strings.TrimSpace(title))
	if trimmed == "" {
		return JobTitleOther
	}
	if category, ok := jobTitleOverrides[trimmed]; ok {
		return category
	}
	for _, category := range jobTitleCategories {
		for _, keyword := range category.Keywords {
			if strings.Contains(trimmed, keyword) {
				return category.Name
			}
		}
	}
	return JobTitleOther
}

// JobTitleCategories returns the taxonomy in stacking order, with the
// Other fallback appended.
func JobTitleCategories() []JobTitleCategory {
	out := make([]JobTitleCategory, len(jobTitleCategories), len(jobTitleCategories)+1)
	copy(out, jobTitleCategories)
	return append(out, JobTitleCategory{Name: JobTitleOther, Color: "#9CA3AF"})
}

// JobTitleCategoryColor looks up the display colour for a bucket.
func JobTitleCategoryColor(name string) string {
	for _, category := range jobTitleCategories {
		if category.Name == name {
			return category.Color
		}
	}
	return "#9CA3AF"
}
