package engine

import "testing"

func TestEventBusFiltersAndOrder(t *testing.T) {
	bus := NewEventBus()
	var got []string

	bus.Subscribe(func(e Event) { got = append(got, "all:"+e.Type.String()) })
	bus.SubscribeTypes(func(e Event) { got = append(got, "login:"+e.Type.String()) }, EventPlantLogin)

	bus.Emit(Event{Type: EventPlantLogin})
	bus.Emit(Event{Type: EventScreenLoaded})

	want := []string{"all:plant.login", "login:plant.login", "all:screen.loaded"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	n := 0
	id := bus.Subscribe(func(Event) { n++ })
	bus.Emit(Event{Type: EventScreenFailed})
	bus.Unsubscribe(id)
	bus.Emit(Event{Type: EventScreenFailed})
	if n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestEventBusSurvivesPanic(t *testing.T) {
	bus := NewEventBus()
	reached := false
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(e Event) {
		reached = true
		if e.Timestamp.IsZero() {
			t.Error("Timestamp not set")
		}
	})
	bus.Emit(Event{Type: EventPlantLogout})
	if !reached {
		t.Error("second subscriber not called")
	}
}
