package sync

import (
	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/store"
)

type runInput struct{}

type runOutput struct {
	Body RunResponse
}

type RunResponse struct {
	Status   string             `json:"status"`
	Report   store.Report       `json:"report"`
	Snapshot *snapshot.Snapshot `json:"snapshot"`
}
