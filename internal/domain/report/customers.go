package report

import (
	"strings"

	"fleetreport/internal/domain/aggregate"
	"fleetreport/internal/domain/scope"
	"fleetreport/internal/domain/snapshot"
)

const (
	backupStatus  = "N/A"
	networkUptime = 98.5
)

// Customer - одна строка списка клиентов на дашборде.
type Customer struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	HealthScore     int     `json:"healthScore"`
	Devices         int     `json:"devices"`
	PatchCompliance int     `json:"patchCompliance"`
	SecurityScore   int     `json:"securityScore"`
	BackupStatus    string  `json:"backupStatus"`
	SecurityStatus  string  `json:"securityStatus"`
	NetworkUptime   float64 `json:"networkUptime"`
	LastUpdated     string  `json:"lastUpdated"`
	CriticalThreats int     `json:"criticalThreats"`
	PatchingIssues  int     `json:"patchingIssues"`
}

// BuildCustomers строит список для дашборда по снапшоту. Список агентов
// показывается как клиент, только если настоящих клиентов нет.
func BuildCustomers(snap *snapshot.Snapshot) *CustomerList {
	list := &CustomerList{Customers: []Customer{}}
	if snap == nil {
		return list
	}
	list.SnapshotID = snap.ID

	day := snap.CreatedAt.UTC().Format("2006-01-02")
	threats := snap.ThreatCount()

	var real []*snapshot.Client
	var agents *snapshot.Client
	visible(snap, scope.All(), func(_ *snapshot.Provider, c *snapshot.Client) {
		switch {
		case !c.Virtual:
			real = append(real, c)
		case agents == nil:
			agents = c
		}
	})

	critical := aggregate.CriticalThreatsPerClient(threats, len(real))
	for _, c := range real {
		issues := len(c.FailingChecks)
		scores := aggregate.Score(issues, threats)
		id := c.ID
		name := c.Name
		if name == "" {
			name = id
		}
		if name == "" {
			name = "Unknown"
		}
		if id == "" {
			id = name
		}
		list.Customers = append(list.Customers, Customer{
			ID:              id,
			Name:            name,
			HealthScore:     scores.Health,
			Devices:         countDevices(c),
			PatchCompliance: scores.PatchCompliance,
			SecurityScore:   scores.Security,
			BackupStatus:    backupStatus,
			SecurityStatus:  securityStatus(critical),
			NetworkUptime:   networkUptime,
			LastUpdated:     day,
			CriticalThreats: critical,
			PatchingIssues:  issues,
		})
	}

	if len(real) == 0 && agents != nil && len(agents.Devices) > 0 {
		security := aggregate.Score(0, threats).Security
		list.Customers = append(list.Customers, Customer{
			ID:              agents.ID,
			Name:            agents.Name,
			HealthScore:     security,
			Devices:         len(agents.Devices),
			PatchCompliance: 0,
			SecurityScore:   security,
			BackupStatus:    backupStatus,
			SecurityStatus:  securityStatus(threats),
			NetworkUptime:   networkUptime,
			LastUpdated:     day,
			CriticalThreats: threats,
			PatchingIssues:  0,
		})
	}

	return list
}

func securityStatus(criticalThreats int) string {
	if criticalThreats == 0 {
		return "Protected"
	}
	return "At Risk"
}

// countDevices предпочитает реально полученные устройства, иначе берет
// заявленное клиентом количество.
func countDevices(c *snapshot.Client) int {
	n := len(c.Devices)
	for _, s := range c.Sites {
		n += len(s.Servers) + len(s.Workstations)
	}
	if n == 0 && c.DeviceCount != nil {
		return *c.DeviceCount
	}
	return n
}

// FilterCustomers оставляет клиентов, видимых в области.
func FilterCustomers(customers []Customer, sc scope.Scope) []Customer {
	if sc.IsAll() {
		return customers
	}
	out := []Customer{}
	for _, c := range customers {
		if sc.Match(c.ID, strings.TrimSpace(c.Name)) {
			out = append(out, c)
		}
	}
	return out
}
