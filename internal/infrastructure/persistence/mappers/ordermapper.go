package mappers

import (
	"fmt"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

type OrderMapper interface {
	ToModel(o *marketplace.Order) *models.OrderModel
	ToDomain(model *models.OrderModel) (*marketplace.Order, error)
}

type OrderMapperImpl struct{}

func NewOrderMapper() OrderMapper {
	return &OrderMapperImpl{}
}

func (m *OrderMapperImpl) ToModel(o *marketplace.Order) *models.OrderModel {
	terms := o.Terms()
	totals := o.Totals()
	return &models.OrderModel{
		ID:             o.ID(),
		RequestID:      o.RequestID(),
		ConversationID: o.ConversationID(),
		PartnerID:      o.PartnerID(),
		IssuedBy:       o.IssuedBy(),
		Title:          terms.Title,
		NetCents:       terms.NetCents,
		TaxRateBP:      terms.TaxRateBP,
		DiscountType:   string(terms.DiscountType),
		DiscountValue:  terms.DiscountValue,
		DiscountCents:  totals.DiscountCents,
		TaxCents:       totals.TaxCents,
		GrossCents:     totals.GrossCents,
		Status:         o.Status().String(),
		CreatedAt:      o.CreatedAt().UnixMilli(),
		UpdatedAt:      o.UpdatedAt().UnixMilli(),
		DecidedAt:      timePtrToMillis(o.DecidedAt()),
	}
}

func (m *OrderMapperImpl) ToDomain(model *models.OrderModel) (*marketplace.Order, error) {
	status, err := vo.NewOrderStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", model.ID, err)
	}

	return marketplace.ReconstructOrder(
		model.ID,
		model.RequestID,
		model.ConversationID,
		model.PartnerID,
		model.IssuedBy,
		marketplace.OrderTerms{
			Title:         model.Title,
			NetCents:      model.NetCents,
			TaxRateBP:     model.TaxRateBP,
			DiscountType:  vo.DiscountType(model.DiscountType),
			DiscountValue: model.DiscountValue,
		},
		marketplace.Totals{
			NetCents:      model.NetCents,
			DiscountCents: model.DiscountCents,
			TaxCents:      model.TaxCents,
			GrossCents:    model.GrossCents,
		},
		status,
		millisToTime(model.CreatedAt),
		millisToTime(model.UpdatedAt),
		millisPtrToTime(model.DecidedAt),
	)
}
