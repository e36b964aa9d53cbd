package ui

import (
	"context"

	"go.uber.org/zap"

	"github.com/solmev/mevdash/internal/config"
	"github.com/solmev/mevdash/internal/dashboard"
	"github.com/solmev/mevdash/internal/engine"
	"github.com/solmev/mevdash/internal/export"
	"github.com/solmev/mevdash/internal/logger"
)

// ServiceProvider gives screens access to the application services without
// coupling them to how main wires everything together
type ServiceProvider interface {
	GetStore() *dashboard.Store
	GetDispatcher() *dashboard.Dispatcher
	GetPoller() *dashboard.Poller
	GetEngineClient() *engine.Client
	GetAlerts() *dashboard.AlertWatcher
	GetExporter() *export.TradeExporter
	GetLogBuffer() *logger.LogBuffer
	GetConfig() *config.Config
	GetLogger() *zap.Logger
	GetContext() context.Context
}

// AppServices is the production service provider. Main fills the fields
// once during startup; screens only see the ServiceProvider interface.
type AppServices struct {
	Ctx        context.Context
	Store      *dashboard.Store
	Dispatcher *dashboard.Dispatcher
	Poller     *dashboard.Poller
	Client     *engine.Client
	Alerts     *dashboard.AlertWatcher
	Exporter   *export.TradeExporter
	LogBuffer  *logger.LogBuffer
	Config     *config.Config
	Logger     *zap.Logger
}

// GetStore returns the dashboard state store
func (s *AppServices) GetStore() *dashboard.Store {
	return s.Store
}

// GetDispatcher returns the action dispatcher
func (s *AppServices) GetDispatcher() *dashboard.Dispatcher {
	return s.Dispatcher
}

// GetPoller returns the background poller
func (s *AppServices) GetPoller() *dashboard.Poller {
	return s.Poller
}

// GetEngineClient returns the engine HTTP client
func (s *AppServices) GetEngineClient() *engine.Client {
	return s.Client
}

// GetAlerts returns the feed alert watcher
func (s *AppServices) GetAlerts() *dashboard.AlertWatcher {
	return s.Alerts
}

// GetExporter returns the trade exporter
func (s *AppServices) GetExporter() *export.TradeExporter {
	return s.Exporter
}

// GetLogBuffer returns the in-memory log ring
func (s *AppServices) GetLogBuffer() *logger.LogBuffer {
	return s.LogBuffer
}

// GetConfig returns the loaded configuration
func (s *AppServices) GetConfig() *config.Config {
	return s.Config
}

// GetLogger returns the application logger
func (s *AppServices) GetLogger() *zap.Logger {
	return s.Logger
}

// GetContext returns the application root context
func (s *AppServices) GetContext() context.Context {
	return s.Ctx
}
