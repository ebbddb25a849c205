package usecase

import (
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	Event     EventService
	Ticketing TicketingService
	Admin     AdminService
}

func NewService(store repository.Store, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:      NewAuthService(store.Repos(), config.JWT, log),
		Event:     NewEventService(store.Repos(), log),
		Ticketing: NewTicketingService(store, log),
		Admin:     NewAdminService(store, log),
	}
}
