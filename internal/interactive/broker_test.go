package interactive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_RegisterThenReplyDeliversToSink(t *testing.T) {
	b := NewBroker()
	sub, unsub := b.Subscribe()
	defer unsub()

	id, sink := b.Register("chatbot", []Message{{Role: "user", Content: "help"}}, false, time.Minute, Reply{Content: "fallback"})

	select {
	case ev := <-sub:
		assert.Equal(t, "queued", ev.Type)
		assert.Equal(t, id, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queued event")
	}

	ok := b.Reply(id, Reply{Content: "human answer"})
	require.True(t, ok)

	select {
	case reply := <-sink:
		assert.Equal(t, "human answer", reply.Content)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply on sink")
	}

	select {
	case ev := <-sub:
		assert.Equal(t, "replied", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for replied event")
	}
}

func TestBroker_DeadlineFiresFallback(t *testing.T) {
	b := NewBroker()
	fallback := Reply{Content: "fallback text", Reasoning: "fake reasoning"}
	_, sink := b.Register("chatbot", nil, false, 10*time.Millisecond, fallback)

	select {
	case reply := <-sink:
		assert.Equal(t, fallback.Content, reply.Content)
		assert.Equal(t, fallback.Reasoning, reply.Reasoning)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fallback delivery")
	}
}

func TestBroker_ReplyAfterResolveIsNoop(t *testing.T) {
	b := NewBroker()
	id, _ := b.Register("chatbot", nil, false, 10*time.Millisecond, Reply{Content: "fallback"})
	time.Sleep(30 * time.Millisecond)
	ok := b.Reply(id, Reply{Content: "too late"})
	assert.False(t, ok)
}

func TestBroker_ListIsFIFO(t *testing.T) {
	b := NewBroker()
	id1, _ := b.Register("m1", nil, false, time.Minute, Reply{})
	id2, _ := b.Register("m2", nil, false, time.Minute, Reply{})
	id3, _ := b.Register("m3", nil, false, time.Minute, Reply{})

	list := b.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{id1, id2, id3}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestBroker_CancelRemovesWithoutBroadcast(t *testing.T) {
	b := NewBroker()
	sub, unsub := b.Subscribe()
	defer unsub()

	id, _ := b.Register("m1", nil, false, time.Minute, Reply{})
	<-sub // drain the "queued" event

	b.Cancel(id)
	assert.Empty(t, b.List())

	select {
	case ev := <-sub:
		t.Fatalf("expected no broadcast on cancel, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
