package scoring

// Default domain keyword sets for the alignment adjustment. In-scope terms
// signal the candidate's target discipline; out-of-scope terms signal postings
// from an unrelated one that language models tend to overrate on generic
// phrase overlap.
var (
	defaultInScopeKeywords = []string{
		"supply chain",
		"operations",
		"operational",
		"logistics",
		"procurement",
		"inventory",
		"warehouse",
		"demand planning",
		"planning",
		"vendor management",
		"s&op",
		"erp",
	}

	defaultOutOfScopeKeywords = []string{
		"software engineer",
		"software developer",
		"frontend",
		"backend",
		"full stack",
		"site reliability",
		"devops engineer",
	}
)
