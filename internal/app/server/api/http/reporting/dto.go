package reporting

import (
	"fleetreport/internal/app/server/api/http/access"
	"fleetreport/internal/domain/report"
	"fleetreport/internal/domain/snapshot"
)

type listInput struct {
	access.Params
}

type outagesInput struct {
	access.Params
	Status string `query:"status" doc:"Keep outages with this status"`
}

type deviceExtraInput struct {
	access.Params
	DeviceID string `path:"deviceID"`
	Kind     string `path:"kind" doc:"checks, outages, performance_history, exchange_storage, hardware or software"`
}

type siteInput struct {
	access.Params
	SiteID string `path:"siteID"`
}

type recordsOutput struct {
	Body []snapshot.Record
}

type clientsOutput struct {
	Body []snapshot.Client
}

type sitesOutput struct {
	Body []snapshot.Site
}

type checksOutput struct {
	Body []snapshot.FailingCheck
}

type extraOutput struct {
	Body snapshot.Record
}

type summaryOutput struct {
	Body report.Summary
}
