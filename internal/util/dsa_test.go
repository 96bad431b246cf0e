package util_test

import (
	"mooio/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Queue(t *testing.T) {
	q := util.CreateQueue[int](8)
	assert.Equal(t, q.Cnt(), 0)
	assert.Equal(t, q.Cap(), 8)

	for range 3 {
		for i := range 5 {
			q.Push(i)
		}
		assert.Equal(t, q.Cnt(), 5)
		for i := range 5 {
			res := q.Pop()
			assert.Equal(t, res, i)
		}
		assert.Equal(t, q.Cnt(), 0)
	}

	for range 8 {
		q.Push(0)
	}
	assert.Panics(t, func() { q.Push(1) })
	for range 8 {
		q.Pop()
	}
	assert.Panics(t, func() { q.Pop() })
}

func Test_TicketQueue(t *testing.T) {
	tq := util.CreateTicketQueue[string](4)
	assert.Equal(t, 4, tq.Free())

	tickets := make([]int, 0, 4)
	for _, v := range []string{"a", "b", "c", "d"} {
		ticket, ok := tq.Acq(v)
		assert.True(t, ok)
		tickets = append(tickets, ticket)
	}
	assert.Equal(t, 0, tq.Free())

	_, ok := tq.Acq("e")
	assert.False(t, ok, "no tickets left")

	assert.Equal(t, "c", tq.Get(tickets[2]))
	assert.Equal(t, "c", tq.Rel(tickets[2]))
	assert.Equal(t, 1, tq.Free())

	// the freed ticket is reused and its slot overwritten
	ticket, ok := tq.Acq("f")
	assert.True(t, ok)
	assert.Equal(t, tickets[2], ticket)
	assert.Equal(t, "f", tq.Get(ticket))

	for _, tk := range tickets {
		tq.Rel(tk)
	}
	assert.Equal(t, 4, tq.Free())
}
