package monitor

import (
	"testing"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/stretchr/testify/assert"
)

func TestSignal_PublishesTransitionsOnly(t *testing.T) {
	bus := events.NewBus()
	var got []events.Kind
	bus.Subscribe(func(e events.Event) { got = append(got, e.Kind) })

	s := NewSignal(false, bus)
	assert.False(t, s.IsOnline())

	assert.True(t, s.SetOnline(true))
	assert.False(t, s.SetOnline(true))
	assert.True(t, s.SetOnline(false))

	assert.Equal(t, []events.Kind{events.Online, events.Offline}, got)
}

func TestSignal_NilPublisher(t *testing.T) {
	s := NewSignal(true, nil)
	assert.NotPanics(t, func() { s.SetOnline(false) })
}
