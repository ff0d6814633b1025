// internal/workers/underwriting/notify-decision/models.go
package notifydecision

type Input struct {
	LoanID                string   `json:"loanId"`
	Decision              string   `json:"decision"`
	BorrowerEmail         string   `json:"borrowerEmail"`
	BorrowerPhone         string   `json:"borrowerPhone,omitempty"`
	RecommendedLenderName string   `json:"recommendedLenderName,omitempty"`
	Conditions            []string `json:"conditions,omitempty"`
}

type Output struct {
	EmailSent bool   `json:"emailSent"`
	SMSSent   bool   `json:"smsSent"`
	MessageID string `json:"notificationMessageId,omitempty"`
}
