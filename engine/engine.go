package engine

import (
	"sync"

	"shopfloor/config"
	"shopfloor/odata"
	"shopfloor/records"
	"shopfloor/screenstate"
	"shopfloor/store"
)

// LogFunc is the logging callback signature.
type LogFunc func(format string, args ...interface{})

// Engine centralizes screen activation, session changes and the
// subsystems they touch.
type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	logFn      LogFunc
	debugFn    LogFunc

	odata   *odata.Client
	catalog *records.Catalog
	state   *screenstate.Manager

	Events *EventBus

	mu       sync.Mutex
	auditSub SubscriberID // zero when not started
}

// Config holds the parameters needed to create an Engine.
type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	Redis      *screenstate.RedisStore // optional
	LogFunc    LogFunc
	Debug      bool
}

// New creates a new Engine. Call Start() before serving requests.
func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = func(string, ...interface{}) {}
	}
	debugFn := LogFunc(func(string, ...interface{}) {})
	if c.Debug {
		debugFn = logFn
	}
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		logFn:      logFn,
		debugFn:    debugFn,
		odata:      odata.NewClient(c.AppConfig.ODataSnapshot()),
		catalog:    records.NewCatalog(c.AppConfig.Screens),
		state:      screenstate.NewManager(c.DB, c.Redis),
		Events:     NewEventBus(),
	}
}

// Start wires the audit trail onto the event bus. Calling it again while
// started is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.auditSub != 0 {
		e.mu.Unlock()
		return
	}
	e.auditSub = e.wireAudit()
	e.mu.Unlock()
	e.logFn("Engine started: namespace=%s station=%s screens=%d odata=%s db=%s",
		e.cfg.Namespace, e.cfg.StationID, len(e.catalog.Screens()), e.odata.BaseURL(), e.db.Driver())
}

// Stop detaches the audit trail from the event bus.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auditSub == 0 {
		return
	}
	e.Events.Unsubscribe(e.auditSub)
	e.auditSub = 0
	e.logFn("Engine stopped")
}

// ApplyODataConfig pushes the current OData settings into the client.
func (e *Engine) ApplyODataConfig(actor string) {
	cfg := e.cfg.ODataSnapshot()
	e.odata.Reconfigure(cfg)
	e.Events.Emit(Event{Type: EventODataReconfigured, Payload: ODataEvent{BaseURL: cfg.BaseURL, Actor: actor}})
}

// DB returns the database handle.
func (e *Engine) DB() *store.DB { return e.db }

// AppConfig returns the app config.
func (e *Engine) AppConfig() *config.Config { return e.cfg }

// ConfigPath returns the config file path.
func (e *Engine) ConfigPath() string { return e.configPath }

// Catalog returns the configured screens.
func (e *Engine) Catalog() *records.Catalog { return e.catalog }

// ScreenState returns the last-load summary manager.
func (e *Engine) ScreenState() *screenstate.Manager { return e.state }

func (e *Engine) wireAudit() SubscriberID {
	return e.Events.SubscribeTypes(func(evt Event) {
		var action, subject, detail, actor string
		switch p := evt.Payload.(type) {
		case PlantEvent:
			action, subject, actor = evt.Type.String(), p.Plant, p.Plant
		case ODataEvent:
			action, subject, detail, actor = evt.Type.String(), "odata", p.BaseURL, p.Actor
		default:
			return
		}
		if err := e.db.AppendAudit(action, subject, detail, actor); err != nil {
			e.logFn("engine: audit %s: %v", action, err)
		}
	}, EventPlantLogin, EventPlantLogout, EventODataReconfigured)
}
