// Package market holds the static reference tables the generators compose:
// positions, regions, salary tiers, skill history and the top-jobs board.
//
// Every table is read-only after package initialization. Lookups on unknown
// keys report ok == false so callers can fall back to neutral values.
package market

// PositionKey identifies one of the fixed IT job categories.
type PositionKey string

// Position keys in canonical display order.
const (
	DevOps        PositionKey = "devops"
	Sysadmin      PositionKey = "sysadmin"
	Network       PositionKey = "network"
	Backend       PositionKey = "backend"
	Frontend      PositionKey = "frontend"
	Fullstack     PositionKey = "fullstack"
	DataEngineer  PositionKey = "data_engineer"
	DataScientist PositionKey = "data_scientist"
	QA            PositionKey = "qa"
	Security      PositionKey = "security"
	DBA           PositionKey = "dba"
	Mobile        PositionKey = "mobile"
)

// NeutralModifier is applied to positions missing from the tables.
const NeutralModifier = 1.0

// OptionalMarker prefixes a requirement that is nice-to-have rather than required.
const OptionalMarker = "!"

// SkillWeight is a skill name with its base mention percentage.
type SkillWeight struct {
	Name       string
	Percentage int
}

// SalaryOffset shifts the lower and upper bound of a vacancy salary label.
type SalaryOffset struct {
	Min int
	Max int
}

// Vacancy is the fixed requirement card template of a position.
type Vacancy struct {
	Title        string
	Company      string
	Offset       SalaryOffset
	Requirements []string
}

// TrendBaseline is a six point salary history in thousands of rubles.
type TrendBaseline struct {
	Name   string
	Color  string
	Points [6]float64
}

// Position bundles every per-position table entry.
type Position struct {
	Key            PositionKey
	Label          string
	SalaryModifier float64
	Demand         int
	Trend          Trend
	Skills         []SkillWeight
	Vacancy        Vacancy
	SalaryTrend    TrendBaseline
}

var positionOrder = []PositionKey{
	DevOps, Sysadmin, Network, Backend, Frontend, Fullstack,
	DataEngineer, DataScientist, QA, Security, DBA, Mobile,
}

var positions = map[PositionKey]Position{
	DevOps: {
		Key:            DevOps,
		Label:          "DevOps",
		SalaryModifier: 1.2,
		Demand:         95,
		Trend:          Rising,
		Skills: []SkillWeight{
			{"Docker", 85}, {"Kubernetes", 80}, {"CI/CD", 75}, {"Ansible", 70}, {"Cloud (AWS/GCP)", 75},
		},
		Vacancy: Vacancy{
			Title:   "DevOps инженер",
			Company: "Tech Solutions",
			Offset:  SalaryOffset{Min: 0, Max: 0},
			Requirements: []string{
				"Docker, Kubernetes",
				"CI/CD (Jenkins, GitLab)",
				"Linux администрирование",
				"Мониторинг систем",
				"Python скриптинг",
			},
		},
		SalaryTrend: TrendBaseline{Name: "DevOps", Color: "#FF6384", Points: [6]float64{120, 150, 180, 220, 250, 280}},
	},
	Sysadmin: {
		Key:            Sysadmin,
		Label:          "Системный администратор",
		SalaryModifier: 0.9,
		Demand:         65,
		Trend:          Declining,
		Skills: []SkillWeight{
			{"Linux", 90}, {"Windows Server", 85}, {"Active Directory", 80}, {"Virtualization", 75}, {"Backup Systems", 70},
		},
		Vacancy: Vacancy{
			Title:   "Системный администратор",
			Company: "Digital Corp",
			Offset:  SalaryOffset{Min: -20000, Max: -10000},
			Requirements: []string{
				"Linux/Windows Server",
				"Виртуализация (VMware)",
				"Сетевое администрирование",
				"Резервное копирование",
				"Управление безопасностью",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Системный администратор", Color: "#36A2EB", Points: [6]float64{90, 110, 130, 150, 170, 190}},
	},
	Network: {
		Key:            Network,
		Label:          "Сетевой инженер",
		SalaryModifier: 1.0,
		Demand:         72,
		Trend:          Declining,
		Skills: []SkillWeight{
			{"Cisco", 85}, {"Network Security", 80}, {"Routing & Switching", 85}, {"VPN", 75}, {"SDN", 70},
		},
		Vacancy: Vacancy{
			Title:   "Сетевой инженер",
			Company: "Network Pro",
			Offset:  SalaryOffset{Min: 10000, Max: 20000},
			Requirements: []string{
				"Cisco сети",
				"Сетевая безопасность",
				"Настройка VPN",
				"Диагностика проблем",
				"Мониторинг сети",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Сетевой инженер", Color: "#FFCE56", Points: [6]float64{100, 120, 140, 160, 180, 200}},
	},
	Backend: {
		Key:            Backend,
		Label:          "Backend разработчик",
		SalaryModifier: 1.15,
		Demand:         82,
		Trend:          Stable,
		Skills: []SkillWeight{
			{"Python", 85}, {"Java", 80}, {"Databases", 85}, {"REST API", 80}, {"Node.js", 75},
		},
		Vacancy: Vacancy{
			Title:   "Backend разработчик",
			Company: "Software House",
			Offset:  SalaryOffset{Min: 15000, Max: 25000},
			Requirements: []string{
				"Python/Java/Node.js",
				"SQL и NoSQL базы данных",
				"REST API",
				"Микросервисы",
				OptionalMarker + "Docker",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Backend разработчик", Color: "#4BC0C0", Points: [6]float64{130, 160, 190, 220, 250, 280}},
	},
	Frontend: {
		Key:            Frontend,
		Label:          "Frontend разработчик",
		SalaryModifier: 1.1,
		Demand:         80,
		Trend:          Stable,
		Skills: []SkillWeight{
			{"JavaScript", 90}, {"React", 85}, {"HTML/CSS", 90}, {"TypeScript", 80}, {"Vue.js", 75},
		},
		Vacancy: Vacancy{
			Title:   "Frontend разработчик",
			Company: "Web Solutions",
			Offset:  SalaryOffset{Min: 10000, Max: 20000},
			Requirements: []string{
				"JavaScript/TypeScript",
				"React/Vue.js",
				"HTML5/CSS3",
				"Web Performance",
				"REST API интеграция",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Frontend разработчик", Color: "#9966FF", Points: [6]float64{120, 150, 180, 210, 240, 270}},
	},
	Fullstack: {
		Key:            Fullstack,
		Label:          "Fullstack разработчик",
		SalaryModifier: 1.25,
		Demand:         85,
		Trend:          Stable,
		Skills: []SkillWeight{
			{"JavaScript", 85}, {"Node.js", 80}, {"React", 80}, {"SQL", 75}, {"DevOps basics", 70},
		},
		Vacancy: Vacancy{
			Title:   "Fullstack разработчик",
			Company: "Digital Agency",
			Offset:  SalaryOffset{Min: 25000, Max: 35000},
			Requirements: []string{
				"JavaScript/TypeScript",
				"Node.js/Python",
				"React/Vue.js",
				"SQL/NoSQL",
				"DevOps практики",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Fullstack разработчик", Color: "#FF9F40", Points: [6]float64{140, 170, 200, 230, 260, 290}},
	},
	DataEngineer: {
		Key:            DataEngineer,
		Label:          "Data Engineer",
		SalaryModifier: 1.3,
		Demand:         88,
		Trend:          Rising,
		Skills: []SkillWeight{
			{"Python", 85}, {"SQL", 90}, {"ETL", 85}, {"Big Data", 80}, {"Data Warehousing", 75},
		},
		Vacancy: Vacancy{
			Title:   "Data Engineer",
			Company: "Data Corp",
			Offset:  SalaryOffset{Min: 30000, Max: 40000},
			Requirements: []string{
				"Python/Scala",
				"SQL/NoSQL",
				"ETL процессы",
				"Big Data технологии",
				"Data Warehousing",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Data Engineer", Color: "#FF6384", Points: [6]float64{150, 180, 210, 240, 270, 300}},
	},
	DataScientist: {
		Key:            DataScientist,
		Label:          "Data Scientist",
		SalaryModifier: 1.35,
		Demand:         92,
		Trend:          Rising,
		Skills: []SkillWeight{
			{"Python", 90}, {"Machine Learning", 85}, {"Statistics", 85}, {"Deep Learning", 80}, {"Data Visualization", 75},
		},
		Vacancy: Vacancy{
			Title:   "Data Scientist",
			Company: "AI Solutions",
			Offset:  SalaryOffset{Min: 35000, Max: 45000},
			Requirements: []string{
				"Python/R",
				"Machine Learning",
				"Statistics",
				"Deep Learning",
				"Data Visualization",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Data Scientist", Color: "#36A2EB", Points: [6]float64{160, 190, 220, 250, 280, 310}},
	},
	QA: {
		Key:            QA,
		Label:          "QA инженер",
		SalaryModifier: 0.95,
		Demand:         70,
		Trend:          Stable,
		Skills: []SkillWeight{
			{"Test Automation", 85}, {"Selenium", 80}, {"API Testing", 75}, {"Python/Java", 70}, {"Test Planning", 85},
		},
		Vacancy: Vacancy{
			Title:   "QA инженер",
			Company: "Quality Tech",
			Offset:  SalaryOffset{Min: -5000, Max: 5000},
			Requirements: []string{
				"Автоматизация тестирования",
				"Selenium/Cypress",
				"API тестирование",
				"Python/Java",
				"Test Planning",
			},
		},
		SalaryTrend: TrendBaseline{Name: "QA инженер", Color: "#FFCE56", Points: [6]float64{100, 120, 140, 160, 180, 200}},
	},
	Security: {
		Key:            Security,
		Label:          "IT Security",
		SalaryModifier: 1.3,
		Demand:         90,
		Trend:          Rising,
		Skills: []SkillWeight{
			{"Network Security", 90}, {"Penetration Testing", 85}, {"Security Tools", 80}, {"Risk Assessment", 75}, {"SIEM", 70},
		},
		Vacancy: Vacancy{
			Title:   "IT Security специалист",
			Company: "Security Solutions",
			Offset:  SalaryOffset{Min: 30000, Max: 40000},
			Requirements: []string{
				"Сетевая безопасность",
				"Penetration Testing",
				"Security Tools",
				"Risk Assessment",
				"SIEM системы",
			},
		},
		SalaryTrend: TrendBaseline{Name: "IT Security", Color: "#4BC0C0", Points: [6]float64{140, 170, 200, 230, 260, 290}},
	},
	DBA: {
		Key:            DBA,
		Label:          "Database Administrator",
		SalaryModifier: 1.1,
		Demand:         75,
		Trend:          Stable,
		Skills: []SkillWeight{
			{"SQL", 90}, {"Database Design", 85}, {"Performance Tuning", 80}, {"Backup/Recovery", 85}, {"NoSQL", 75},
		},
		Vacancy: Vacancy{
			Title:   "Database Administrator",
			Company: "Data Systems",
			Offset:  SalaryOffset{Min: 10000, Max: 20000},
			Requirements: []string{
				"SQL/NoSQL",
				"Database Design",
				"Performance Tuning",
				"Backup/Recovery",
				"Репликация данных",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Database Administrator", Color: "#9966FF", Points: [6]float64{120, 150, 180, 210, 240, 270}},
	},
	Mobile: {
		Key:            Mobile,
		Label:          "Mobile разработчик",
		SalaryModifier: 1.2,
		Demand:         78,
		Trend:          Rising,
		Skills: []SkillWeight{
			{"Swift/Kotlin", 85}, {"Mobile UI/UX", 80}, {"React Native", 75}, {"Mobile Security", 70}, {"API Integration", 85},
		},
		Vacancy: Vacancy{
			Title:   "Mobile разработчик",
			Company: "Mobile Solutions",
			Offset:  SalaryOffset{Min: 20000, Max: 30000},
			Requirements: []string{
				"Swift/Kotlin",
				"React Native",
				"Mobile UI/UX",
				"REST API",
				"Mobile Security",
			},
		},
		SalaryTrend: TrendBaseline{Name: "Mobile разработчик", Color: "#FF9F40", Points: [6]float64{130, 160, 190, 220, 250, 280}},
	},
}

// LookupPosition returns the table entry for key.
func LookupPosition(key PositionKey) (Position, bool) {
	p, ok := positions[key]
	return p, ok
}

// PositionKeys returns all known keys in canonical order.
func PositionKeys() []PositionKey {
	out := make([]PositionKey, len(positionOrder))
	copy(out, positionOrder)
	return out
}

// IsKnownPosition reports whether key is present in the tables.
func IsKnownPosition(key PositionKey) bool {
	_, ok := positions[key]
	return ok
}

// PositionIndex returns the canonical display index of key, or -1.
func PositionIndex(key PositionKey) int {
	for i, k := range positionOrder {
		if k == key {
			return i
		}
	}
	return -1
}

// SalaryModifier returns the multiplicative salary factor for key.
// Unknown keys are neutral.
func SalaryModifier(key PositionKey) float64 {
	if p, ok := positions[key]; ok {
		return p.SalaryModifier
	}
	return NeutralModifier
}

// PositionLabel returns the display label for key, falling back to the raw key.
func PositionLabel(key PositionKey) string {
	if p, ok := positions[key]; ok {
		return p.Label
	}
	return string(key)
}
