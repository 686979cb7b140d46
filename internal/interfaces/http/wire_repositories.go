package http

import (
	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/repository"
)

// repositories holds all repository instances used by the router.
type repositories struct {
	requestRepo       *repository.RequestRepository
	applicationRepo   *repository.ApplicationRepository
	conversationRepo  *repository.ConversationRepository
	messageRepo       *repository.MessageRepository
	appointmentRepo   *repository.AppointmentRepository
	orderRepo         *repository.OrderRepository
	ratingRepo        *repository.RatingRepository
	partnerMemberRepo *repository.PartnerMemberRepository
	profileRepo       *repository.ProfileRepository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		requestRepo:       repository.NewRequestRepository(db),
		applicationRepo:   repository.NewApplicationRepository(db),
		conversationRepo:  repository.NewConversationRepository(db),
		messageRepo:       repository.NewMessageRepository(db),
		appointmentRepo:   repository.NewAppointmentRepository(db),
		orderRepo:         repository.NewOrderRepository(db),
		ratingRepo:        repository.NewRatingRepository(db),
		partnerMemberRepo: repository.NewPartnerMemberRepository(db),
		profileRepo:       repository.NewProfileRepository(db),
	}
}
