package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwitchNotifiesOnTransitions(t *testing.T) {
	sw := NewSwitch(true)
	assert.True(t, sw.Online())

	var got []bool
	unsubscribe := sw.Subscribe(func(online bool) { got = append(got, online) })

	sw.Set(true)
	sw.Set(false)
	sw.Set(false)
	sw.Set(true)

	assert.Equal(t, []bool{false, true}, got)
	assert.True(t, sw.Online())

	unsubscribe()
	sw.Set(false)
	assert.Equal(t, []bool{false, true}, got)
	assert.False(t, sw.Online())
}

func TestSwitchMultipleSubscribers(t *testing.T) {
	sw := NewSwitch(false)

	var a, b int
	sw.Subscribe(func(bool) { a++ })
	cancelB := sw.Subscribe(func(bool) { b++ })

	sw.Set(true)
	cancelB()
	cancelB()
	sw.Set(false)

	assert.Equal(t, 2, a)
	assert.Equal(t, 1, b)
}

func TestSwitchSubscriberMaySubscribe(t *testing.T) {
	sw := NewSwitch(false)

	var nested bool
	sw.Subscribe(func(bool) {
		sw.Subscribe(func(bool) { nested = true })
	})

	sw.Set(true)
	assert.False(t, nested)
	sw.Set(false)
	assert.True(t, nested)
}
