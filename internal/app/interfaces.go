package app

import (
	"github.com/robfig/cron/v3"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/store"
)

// StoreProvider provides record store access
type StoreProvider interface {
	Store() store.Store
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// ServiceProvider provides the cafe workflows
type ServiceProvider interface {
	Service() *service.Service
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	StoreProvider
	ConfigProvider
	ServiceProvider
	SchedulerProvider

	// InitDb empties every collection.
	InitDb() error
	// RunRollups rebuilds the customers and revenue collections now.
	RunRollups()
}
