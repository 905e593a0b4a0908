package aggregate

import (
	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/snapshot"
)

const MaxCheckDescription = 5000

// failingChecks разворачивает дерево client → site → (workstation|server) из
// ответа со сбойными проверками. Каждое состояние offline или overdue и каждая
// упавшая проверка дают одну запись.
func failingChecks(node any) []snapshot.FailingCheck {
	out := []snapshot.FailingCheck{}

	for _, cl := range shape.List(shape.Dig(node, "client"), shape.Drop) {
		for _, site := range shape.List(cl["site"], shape.Drop) {
			siteID := shape.String(site, "id", "siteid")
			for _, key := range []string{"workstations", "workstation"} {
				for _, w := range container(site[key], "workstation") {
					out = append(out, deviceChecks(w, "workstation", siteID, false)...)
				}
			}
			for _, w := range container(site["servers"], "server") {
				out = append(out, deviceChecks(w, "server", siteID, true)...)
			}
		}
	}
	return out
}

// container принимает либо {elem: one|many}, либо сами устройства.
func container(v any, elem string) []shape.Record {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m[elem]; ok {
			return shape.List(inner, shape.Drop)
		}
	}
	return shape.List(v, shape.Drop)
}

func deviceChecks(w shape.Record, deviceType, siteID string, server bool) []snapshot.FailingCheck {
	var out []snapshot.FailingCheck
	base := snapshot.FailingCheck{
		DeviceID:   shape.String(w, "id"),
		DeviceName: shape.String(w, "name"),
		DeviceType: deviceType,
		SiteID:     siteID,
	}

	if o := shape.Map(w["offline"]); o != nil {
		fc := base
		fc.Kind = "offline"
		fc.Description = snapshot.Truncate(shape.String(o, "description"), MaxCheckDescription)
		fc.StartDate = shape.String(o, "startdate")
		fc.StartTime = shape.String(o, "starttime")
		fc.Raw = w
		out = append(out, fc)
	}

	if o := shape.Map(w["overdue"]); server && o != nil {
		fc := base
		fc.Kind = "overdue"
		fc.Description = shape.String(o, "description")
		if fc.Description == "" {
			fc.Description = "Overdue"
		}
		fc.Description = snapshot.Truncate(fc.Description, MaxCheckDescription)
		fc.StartDate = shape.String(o, "startdate")
		fc.StartTime = shape.String(o, "starttime")
		fc.Raw = w
		out = append(out, fc)
	}

	if failed := shape.Map(w["failed_checks"]); failed != nil {
		for _, ch := range shape.List(failed["check"], shape.Drop) {
			fc := base
			fc.Kind = "check"
			fc.CheckID = shape.String(ch, "checkid")
			fc.Description = snapshot.Truncate(shape.String(ch, "description"), MaxCheckDescription)
			fc.StartDate = shape.String(ch, "date")
			fc.StartTime = shape.String(ch, "time")
			// Разные проверки одного устройства в одно время не должны
			// схлопываться.
			if fc.CheckID != "" {
				fc.StartTime = fc.StartTime + "_" + fc.CheckID
			}
			fc.Raw = ch
			out = append(out, fc)
		}
	}

	return out
}
