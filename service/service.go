package service

import (
	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	Memories  *MemoryService
	Reasons   *ReasonService
	Events    *EventService
	Settings  *SettingService
	Proposals *ProposalService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// NewServices builds every service over db.
func NewServices(db *gorm.DB) *Services {
	return &Services{
		Memories:  NewMemoryService(db),
		Reasons:   NewReasonService(db),
		Events:    NewEventService(db),
		Settings:  NewSettingService(db),
		Proposals: NewProposalService(db),
	}
}

// InitServices initializes all services
func InitServices(db *gorm.DB) *Services {
	GlobalServices = NewServices(db)
	return GlobalServices
}
