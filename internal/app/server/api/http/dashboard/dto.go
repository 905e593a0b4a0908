package dashboard

import (
	"fleetreport/internal/app/server/api/http/access"
	"fleetreport/internal/domain/report"
)

type customersInput struct {
	access.Params
}

type customersOutput struct {
	Body []report.Customer
}
