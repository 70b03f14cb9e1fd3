package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopfloor/odata"
	"shopfloor/records"
	"shopfloor/screenstate"
)

// OpenScreen activates a screen for the session's plant: one fetch of
// the complete record set, loaded into a fresh Store. A failed fetch is
// terminal for this activation and is not retried.
func (e *Engine) OpenScreen(ctx context.Context, sess Session, screenID string) (*records.Store, error) {
	plant, ok := sess.ActivePlant()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	screen, ok := e.catalog.Screen(screenID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScreen, screenID)
	}

	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout())
	defer cancel()

	start := time.Now()
	recs, err := e.odata.FetchSet(ctx, odata.FetchRequest{
		Service:     screen.Service,
		EntitySet:   screen.EntitySet,
		FilterField: screen.PlantField,
		Value:       plant,
	})
	elapsed := time.Since(start).Milliseconds()

	summary := &screenstate.Summary{
		Plant:      plant,
		Screen:     screen.ID,
		DurationMS: elapsed,
		At:         start,
	}
	if err != nil {
		e.logFn("engine: load %s for plant %s: %v", screen.ID, plant, err)
		summary.Error = err.Error()
		e.recordSummary(summary)
		e.Events.Emit(Event{Type: EventScreenFailed, Payload: ScreenFailedEvent{
			Plant:      plant,
			Screen:     screen.ID,
			Error:      odata.UserMessage(err),
			Timeout:    odata.IsTimeout(err),
			DurationMS: elapsed,
		}})
		return nil, err
	}

	st := records.NewStore(screen)
	st.Load(recs)
	e.debugFn("engine: loaded %d records for %s (plant %s) in %dms", len(recs), screen.ID, plant, elapsed)

	summary.OK = true
	summary.RecordCount = len(recs)
	e.recordSummary(summary)
	e.Events.Emit(Event{Type: EventScreenLoaded, Payload: ScreenLoadedEvent{
		Plant:       plant,
		Screen:      screen.ID,
		RecordCount: len(recs),
		DurationMS:  elapsed,
	}})
	return st, nil
}

func (e *Engine) recordSummary(s *screenstate.Summary) {
	// The audit trail must not fail the screen.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.state.Record(ctx, s); err != nil {
		e.logFn("engine: record fetch log: %v", err)
	}
}

func (e *Engine) fetchTimeout() time.Duration {
	t := e.cfg.ODataSnapshot().Timeout
	if t <= 0 {
		return odata.DefaultTimeout
	}
	return t
}

// Login opens a plant session. Credentials are checked by the gateway
// proxy, so any non-empty pair is accepted here.
func (e *Engine) Login(plant, password string) (Session, error) {
	plant = strings.TrimSpace(plant)
	if plant == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	e.Events.Emit(Event{Type: EventPlantLogin, Payload: PlantEvent{Plant: plant}})
	return NewSession(plant), nil
}

// Logout ends a plant session.
func (e *Engine) Logout(sess Session) {
	plant, ok := sess.ActivePlant()
	if !ok {
		return
	}
	e.state.Forget(context.Background(), plant)
	e.Events.Emit(Event{Type: EventPlantLogout, Payload: PlantEvent{Plant: plant}})
}

// Tile is one dashboard entry.
type Tile struct {
	Screen *records.Screen
	Last   *screenstate.Summary
}

// Dashboard lists the screens with their last-load summary for the plant.
func (e *Engine) Dashboard(ctx context.Context, sess Session) ([]Tile, error) {
	plant, ok := sess.ActivePlant()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	var tiles []Tile
	for _, s := range e.catalog.Screens() {
		last, err := e.state.Latest(ctx, plant, s.ID)
		if err != nil && !errors.Is(err, context.Canceled) {
			e.logFn("engine: dashboard summary %s: %v", s.ID, err)
		}
		tiles = append(tiles, Tile{Screen: s, Last: last})
	}
	return tiles, nil
}
