package share

import (
	"fleetreport/internal/domain/share"
)

type issueInput struct {
	Body IssueRequest
}

type IssueRequest struct {
	CustomerID    string `json:"customer_id" validate:"required" doc:"Customer the link is scoped to"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=365" doc:"Validity in days, 7 when omitted"`
}

type issueOutput struct {
	Body share.Link
}

type verifyInput struct {
	Token string `path:"token"`
}

type verifyOutput struct {
	Body VerifyResponse
}

type VerifyResponse struct {
	CustomerID string `json:"customer_id"`
	Expires    string `json:"expires"`
}
