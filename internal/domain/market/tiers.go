package market

// Salary thresholds that select a detailed skill tier. These are not the
// thresholds used by the skill percentage adjustment.
const (
	JuniorTierCeiling = 150000
	MiddleTierCeiling = 200000
)

// Tier is a salary bracket that selects a skill-group template.
type Tier string

// Tier values.
const (
	TierJunior Tier = "junior"
	TierMiddle Tier = "middle"
	TierSenior Tier = "senior"
)

// SkillDetail is a skill of a detailed tier with its explanation.
type SkillDetail struct {
	Name        string
	Percentage  int
	Description string
}

// SkillGroups are the three named skill groups of a tier.
type SkillGroups struct {
	CoreTechnologies []SkillDetail
	Tools            []SkillDetail
	Methodologies    []SkillDetail
}

// TierFor returns the detailed tier an average salary falls into.
func TierFor(avgSalary float64) Tier {
	switch {
	case avgSalary < JuniorTierCeiling:
		return TierJunior
	case avgSalary < MiddleTierCeiling:
		return TierMiddle
	default:
		return TierSenior
	}
}

// TierGroups returns the skill groups of tier. Unknown tiers map to senior.
func TierGroups(t Tier) SkillGroups {
	g, ok := tierGroups[t]
	if !ok {
		g = tierGroups[TierSenior]
	}
	return SkillGroups{
		CoreTechnologies: cloneDetails(g.CoreTechnologies),
		Tools:            cloneDetails(g.Tools),
		Methodologies:    cloneDetails(g.Methodologies),
	}
}

func cloneDetails(in []SkillDetail) []SkillDetail {
	out := make([]SkillDetail, len(in))
	copy(out, in)
	return out
}

var tierGroups = map[Tier]SkillGroups{
	TierJunior: {
		CoreTechnologies: []SkillDetail{
			{"Linux", 75, "Базовое администрирование"},
			{"Windows", 85, "Active Directory, GPO"},
			{"Базовые сети", 80, "TCP/IP, DHCP, DNS"},
			{"Virtualization", 70, "VMware, VirtualBox"},
			{"Базовый Python", 45, "Простые скрипты"},
		},
		Tools: []SkillDetail{
			{"PowerShell", 75, "Базовые скрипты"},
			{"Helpdesk", 90, "Системы тикетов"},
			{"Backup", 80, "Резервное копирование"},
			{"Monitoring", 70, "Базовый мониторинг"},
			{"Git", 50, "Основы версионирования"},
		},
		Methodologies: []SkillDetail{
			{"ITIL", 80, "Базовые практики"},
			{"Техподдержка", 90, "Работа с пользователями"},
			{"Документация", 85, "Ведение документации"},
			{"Безопасность", 70, "Базовая безопасность"},
			{"Отчетность", 75, "Подготовка отчетов"},
		},
	},
	TierMiddle: {
		CoreTechnologies: []SkillDetail{
			{"Linux", 85, "Ubuntu, CentOS, RedHat"},
			{"Docker", 80, "Контейнеризация"},
			{"Kubernetes", 70, "Базовая оркестрация"},
			{"AWS", 75, "Cloud services"},
			{"Python", 80, "Automation scripts"},
		},
		Tools: []SkillDetail{
			{"Ansible", 75, "Configuration management"},
			{"Jenkins", 70, "Basic CI/CD"},
			{"Git", 85, "Version control"},
			{"Terraform", 65, "Infrastructure as Code"},
			{"Prometheus", 60, "Basic monitoring"},
		},
		Methodologies: []SkillDetail{
			{"DevOps", 80, "Basic practices"},
			{"Agile", 75, "Scrum/Kanban"},
			{"CI/CD", 70, "Pipeline automation"},
			{"GitOps", 60, "Basic principles"},
			{"SRE", 55, "Basic concepts"},
		},
	},
	TierSenior: {
		CoreTechnologies: []SkillDetail{
			{"Kubernetes", 95, "Expert orchestration"},
			{"Cloud", 90, "Multi-cloud architecture"},
			{"Terraform", 85, "Complex infrastructure"},
			{"Service Mesh", 80, "Istio, Consul"},
			{"Python/Go", 85, "Advanced development"},
		},
		Tools: []SkillDetail{
			{"GitOps", 90, "Advanced workflows"},
			{"ELK Stack", 85, "Log management"},
			{"Prometheus", 90, "Advanced monitoring"},
			{"Grafana", 85, "Custom dashboards"},
			{"HashiCorp", 80, "Full stack"},
		},
		Methodologies: []SkillDetail{
			{"DevOps", 95, "Advanced practices"},
			{"SRE", 90, "Reliability engineering"},
			{"Cloud Native", 90, "Architecture patterns"},
			{"Security", 85, "DevSecOps"},
			{"Automation", 95, "Full automation"},
		},
	},
}
