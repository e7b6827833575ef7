package types

// Category codes for the curated dataset. Every draft submission targets
// exactly one of these.
const (
	CategoryMRD = "MRD"
	CategoryECD = "ECD"
	CategoryTRM = "TRM"
	CategoryTDS = "TDS"
)

// CategoryInfo describes one dataset category for prompts and digests.
type CategoryInfo struct {
	Code        string
	Name        string
	Description string
}

// Categories lists the dataset categories in display order.
var Categories = []CategoryInfo{
	{
		Code:        CategoryMRD,
		Name:        "Molecular Residual Disease",
		Description: "ctDNA blood tests that detect residual or recurrent disease after curative-intent treatment",
	},
	{
		Code:        CategoryECD,
		Name:        "Early Cancer Detection",
		Description: "screening tests for asymptomatic individuals, single-cancer or multi-cancer",
	},
	{
		Code:        CategoryTRM,
		Name:        "Treatment Response Monitoring",
		Description: "serial ctDNA measurement during therapy to assess whether treatment is working",
	},
	{
		Code:        CategoryTDS,
		Name:        "Treatment Decision Support",
		Description: "tumor genomic profiling that matches patients to targeted therapies",
	},
}

// CategoryByCode returns the category info for a code, or false if the code
// is not one of the fixed set.
func CategoryByCode(code string) (CategoryInfo, bool) {
	for _, c := range Categories {
		if c.Code == code {
			return c, true
		}
	}
	return CategoryInfo{}, false
}

// ValidCategory reports whether code is one of the fixed category codes.
func ValidCategory(code string) bool {
	_, ok := CategoryByCode(code)
	return ok
}
