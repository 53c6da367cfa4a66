package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal_GetSet(t *testing.T) {
	s := New("a")
	assert.Equal(t, "a", s.Get())

	assert.True(t, s.Set("b"))
	assert.Equal(t, "b", s.Get())

	assert.False(t, s.Set("b"), "equal value is not a change")
}

func TestSignal_Subscribe(t *testing.T) {
	s := NewComparable(1)

	var got []int
	unsub := s.Subscribe(func(v int) { got = append(got, v) })

	s.Set(2)
	s.Set(2)
	s.Set(3)
	assert.Equal(t, []int{2, 3}, got)

	unsub()
	s.Set(4)
	assert.Equal(t, []int{2, 3}, got)
}

func TestSignal_SubscribeNil(t *testing.T) {
	s := New(0)
	unsub := s.Subscribe(nil)
	assert.NotPanics(t, func() {
		unsub()
		s.Set(1)
	})
}

func TestSignal_ReaderWriter(t *testing.T) {
	s := New(false)
	read, write := s.Reader(), s.Writer()

	assert.False(t, read())
	write(true)
	assert.True(t, read())
	assert.True(t, s.Get())
}

func TestSignal_Update(t *testing.T) {
	s := NewComparable(10)
	assert.True(t, s.Update(func(v int) int { return v + 5 }))
	assert.Equal(t, 15, s.Get())
	assert.False(t, s.Update(func(v int) int { return v }))
}

func TestSignal_PointerValuesCompareDeep(t *testing.T) {
	a, b := uint32(5), uint32(5)
	s := New(&a)

	var calls int
	s.Subscribe(func(*uint32) { calls++ })

	s.Set(&b)
	assert.Equal(t, 0, calls, "deep-equal pointers are not a change")
}
