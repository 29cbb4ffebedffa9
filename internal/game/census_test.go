package game

import (
	"testing"

	"tankarena/internal/wire"
)

func TestSendCensusIncludesNearbyEntities(t *testing.T) {
	a := newTestArena(t)
	for id := range a.tanks {
		a.index.Delete(id)
		delete(a.tanks, id)
	}
	for id := range a.shapes {
		a.destroyShape(id)
	}

	client := &fakeClient{}
	t1 := a.Join("Observer", client)
	shape := a.spawnShape()
	shape.Position = t1.Position
	a.syncBroadphase(&shape.Entity)

	box := a.viewportBox(t1)
	entries := a.index.Query(box)
	a.sendCensus(t1, entries)

	// Join already queued one OutboundInit frame.
	if len(client.sent) != 2 {
		t.Fatalf("expected OutboundInit + one census frame, got %d", len(client.sent))
	}
	r := wire.NewReader(client.sent[1])
	if tag, _ := r.GetU8(); tag != wire.TagCensus {
		t.Fatalf("expected census tag %d, got %d", wire.TagCensus, tag)
	}
	// The observer itself plus the shape placed on top of it.
	if count, _ := r.GetU16(); count != 2 {
		t.Fatalf("expected 2 entity records in census, got %d", count)
	}
}

func TestCensusAndBotsSkipsDeadTanks(t *testing.T) {
	a := newTestArena(t)
	for id := range a.tanks {
		a.index.Delete(id)
		delete(a.tanks, id)
	}

	client := &fakeClient{}
	dead := a.Join("Dead", client)
	dead.State = TankDead

	a.censusAndBots()

	if len(client.sent) != 1 {
		t.Fatalf("expected only the OutboundInit frame for a Dead tank, got %d", len(client.sent))
	}
}

func TestViewportSideScalesWithFOV(t *testing.T) {
	narrow := viewportSide(10)
	wide := viewportSide(20)
	if wide <= narrow {
		t.Fatalf("expected a larger FOV to produce a larger viewport side: %v vs %v", wide, narrow)
	}
}
