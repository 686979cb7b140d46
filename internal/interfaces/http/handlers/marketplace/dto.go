package marketplace

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

type CreateRequestRequest struct {
	Summary        string `json:"summary" binding:"required,max=200"`
	Category       string `json:"category" binding:"required,max=100"`
	Location       string `json:"location" binding:"required,max=200"`
	Description    string `json:"description" binding:"max=10000"`
	BudgetMinCents *int64 `json:"budget_min_cents" binding:"omitempty,min=0"`
	BudgetMaxCents *int64 `json:"budget_max_cents" binding:"omitempty,min=0"`
}

func (r *CreateRequestRequest) ToCommand(caller identity.Caller) usecases.CreateRequestCommand {
	return usecases.CreateRequestCommand{
		Caller: caller,
		Draft: marketplace.RequestDraft{
			Summary:        r.Summary,
			Category:       r.Category,
			Location:       r.Location,
			Description:    r.Description,
			BudgetMinCents: r.BudgetMinCents,
			BudgetMaxCents: r.BudgetMaxCents,
		},
	}
}

type ReportProblemRequest struct {
	Note string `json:"note" binding:"required,max=5000"`
}

type SubmitApplicationRequest struct {
	RequestID   string `json:"request_id" binding:"required"`
	PartnerID   string `json:"partner_id" binding:"required"`
	MessageText string `json:"message_text" binding:"max=10000"`
}

// DecideApplicationRequest carries the request id alongside the action so a
// stale client cannot decide an application of another request.
type DecideApplicationRequest struct {
	Action    string `json:"action" binding:"required,oneof=accept decline"`
	RequestID string `json:"request_id" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=10000"`
}

type ProposeAppointmentRequest struct {
	Kind        string    `json:"kind" binding:"required,oneof=onsite video phone"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	DurationMin int       `json:"duration_min" binding:"required,min=1,max=1440"`
	Location    string    `json:"location" binding:"max=200"`
	VideoURL    string    `json:"video_url" binding:"omitempty,url,max=500"`
	Phone       string    `json:"phone" binding:"max=50"`
	Note        string    `json:"note" binding:"max=2000"`
}

func (r *ProposeAppointmentRequest) ToCommand(caller identity.Caller, requestID string) usecases.ProposeAppointmentCommand {
	return usecases.ProposeAppointmentCommand{
		Caller:    caller,
		RequestID: requestID,
		Slot: marketplace.AppointmentSlot{
			Kind:        vo.AppointmentKind(r.Kind),
			StartAt:     r.StartAt,
			DurationMin: r.DurationMin,
			Location:    r.Location,
			VideoURL:    r.VideoURL,
			Phone:       r.Phone,
			Note:        r.Note,
		},
	}
}

type IssueOrderRequest struct {
	Title         string `json:"title" binding:"required,max=200"`
	NetCents      int64  `json:"net_cents" binding:"min=0"`
	TaxRateBP     int64  `json:"tax_rate_bp" binding:"min=0,max=10000"`
	DiscountType  string `json:"discount_type" binding:"omitempty,oneof=none percent amount"`
	DiscountValue int64  `json:"discount_value" binding:"min=0"`
}

func (r *IssueOrderRequest) ToCommand(caller identity.Caller, requestID string) usecases.IssueOrderCommand {
	discount := vo.DiscountType(r.DiscountType)
	if r.DiscountType == "" {
		discount = vo.DiscountNone
	}
	return usecases.IssueOrderCommand{
		Caller:    caller,
		RequestID: requestID,
		Terms: marketplace.OrderTerms{
			Title:         r.Title,
			NetCents:      r.NetCents,
			TaxRateBP:     r.TaxRateBP,
			DiscountType:  discount,
			DiscountValue: r.DiscountValue,
		},
	}
}

// SubmitRatingRequest keeps stars as a pointer so zero stars is a valid
// rating and a missing field is not.
type SubmitRatingRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	Stars     *int   `json:"stars" binding:"required"`
	Text      string `json:"text" binding:"max=5000"`
	Name      string `json:"name" binding:"max=100"`
}

type InvoiceEventRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required,max=100"`
	Status    string `json:"status" binding:"required"`
}

type ListRequestsRequest struct {
	Page     int
	PageSize int
	Statuses []string
	Mine     bool
}

func parseListRequestsRequest(c *gin.Context) ListRequestsRequest {
	p := utils.ParsePagination(c)
	return ListRequestsRequest{
		Page:     p.Page,
		PageSize: p.PageSize,
		Statuses: c.QueryArray("status"),
		Mine:     c.Query("mine") == "true",
	}
}

// bindJSON reports malformed bodies as validation errors instead of letting
// them surface as 500s.
func bindJSON(c *gin.Context, target any) error {
	if err := c.ShouldBindJSON(target); err != nil {
		return utils.BindingError(err)
	}
	return nil
}

func requiredParam(c *gin.Context, name string) (string, error) {
	v := c.Param(name)
	if v == "" {
		return "", errors.NewValidationError(name + " is required")
	}
	return v, nil
}
