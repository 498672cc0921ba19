package market

// TopJob is a highlighted vacancy on the top-jobs board.
type TopJob struct {
	Title        string
	Company      string
	Salary       int
	Location     string
	Demand       int
	Requirements []string
	Responses    int
}

var topJobs = []TopJob{
	{
		Title:        "Senior DevOps Engineer",
		Company:      "Крупный финтех",
		Salary:       450000,
		Location:     "Москва",
		Demand:       95,
		Requirements: []string{"Kubernetes", "AWS", "Terraform", "Python", "CI/CD"},
		Responses:    127,
	},
	{
		Title:        "Cloud Architect",
		Company:      "IT-консалтинг",
		Salary:       400000,
		Location:     "Москва/Удаленно",
		Demand:       90,
		Requirements: []string{"Multi-cloud", "Solution Architecture", "DevOps", "Security"},
		Responses:    89,
	},
	{
		Title:        "SRE Engineer",
		Company:      "E-commerce платформа",
		Salary:       380000,
		Location:     "Санкт-Петербург",
		Demand:       88,
		Requirements: []string{"Kubernetes", "Monitoring", "SLO/SLI", "Automation"},
		Responses:    156,
	},
	{
		Title:        "Lead System Administrator",
		Company:      "Банковский сектор",
		Salary:       320000,
		Location:     "Москва",
		Demand:       85,
		Requirements: []string{"Linux", "Windows Server", "Virtualization", "Security"},
		Responses:    198,
	},
	{
		Title:        "Network Security Engineer",
		Company:      "Телеком компания",
		Salary:       350000,
		Location:     "Москва",
		Demand:       82,
		Requirements: []string{"Cisco", "Security", "SD-WAN", "Python"},
		Responses:    143,
	},
}

// TopJobs returns a deep copy of the top-jobs board.
func TopJobs() []TopJob {
	out := make([]TopJob, len(topJobs))
	for i, j := range topJobs {
		j.Requirements = append([]string(nil), j.Requirements...)
		out[i] = j
	}
	return out
}
