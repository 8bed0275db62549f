package lumenplug

import "testing"

func TestHandlers_FanOutInOrder(t *testing.T) {
	var order []string
	hs := Handlers{
		EventHandlerFunc(func(Event) { order = append(order, "first") }),
		nil,
		EventHandlerFunc(func(Event) { order = append(order, "second") }),
	}

	hs.Handle(Event{Kind: EventInvocationStarted})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handler order = %v", order)
	}
}

func TestHandlers_EmptyIsNoop(t *testing.T) {
	var hs Handlers
	hs.Handle(Event{Kind: EventInvocationFinished})
}
