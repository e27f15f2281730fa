// Package services holds the domain rules that sit between the transports
// (HTTP handlers, the CLI) and a store.Store.
package services

import (
	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// Services bundles every domain service over one store.
type Services struct {
	Store      store.Store
	Properties PropertyService
	Agents     AgentService
	Leads      LeadService
	Users      UserService
	Blog       BlogService
	Auth       AuthService
	Dashboard  DashboardService
}

// New wires all services to st.
func New(st store.Store, log *logger.Logger) *Services {
	return &Services{
		Store:      st,
		Properties: NewPropertyService(st, log),
		Agents:     NewAgentService(st, log),
		Leads:      NewLeadService(st, log),
		Users:      NewUserService(st, log),
		Blog:       NewBlogService(st, log),
		Auth:       NewAuthService(st, log),
		Dashboard:  NewDashboardService(st, log),
	}
}
