package events

import "testing"

type stubEvent string

func (s stubEvent) EventType() string { return string(s) }

func TestRecorderKeepsEmissionOrder(t *testing.T) {
	r := NewRecorder()
	r.Emit(stubEvent("a"))
	r.Emit(stubEvent("b"))
	r.Emit(nil)

	snapshot := r.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 events, got %d", len(snapshot))
	}
	if snapshot[0].EventType() != "a" || snapshot[1].EventType() != "b" {
		t.Fatal("emission order lost")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.Emit(stubEvent("a"))
	first := r.Snapshot()
	r.Emit(stubEvent("b"))
	if len(first) != 1 {
		t.Fatal("snapshot must not grow after later emissions")
	}
}

func TestMultiEmitterFansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	multi := MultiEmitter{a, nil, b}
	multi.Emit(stubEvent("x"))
	if len(a.Snapshot()) != 1 || len(b.Snapshot()) != 1 {
		t.Fatal("event not delivered to every emitter")
	}
}
