package game

import (
	"testing"

	"tankarena/internal/tankconfig"
)

// fakeClient records every frame sent to it and lets tests trigger a close.
type fakeClient struct {
	sent   [][]byte
	closed bool
}

func (c *fakeClient) Send(data []byte) error {
	c.sent = append(c.sent, data)
	return nil
}

func (c *fakeClient) Close(code int, reason string) error {
	c.closed = true
	return nil
}

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	cfgs, err := tankconfig.Load("testdata/mockups.json")
	if err != nil {
		t.Fatalf("tankconfig.Load: %v", err)
	}
	return NewArena("test", NewIDAllocator(), cfgs)
}

func TestNewArenaSpawnsBotsAndShapes(t *testing.T) {
	a := newTestArena(t)
	if len(a.tanks) != TargetBotCount {
		t.Fatalf("expected %d bot tanks, got %d", TargetBotCount, len(a.tanks))
	}
	for _, tank := range a.tanks {
		if tank.Type != TankLocal {
			t.Fatalf("expected pre-spawned tank to be Local, got %v", tank.Type)
		}
	}
	if len(a.shapes) != a.targetShapeCount {
		t.Fatalf("expected %d shapes, got %d", a.targetShapeCount, len(a.shapes))
	}
}

func TestTickIsNoOpWithoutRemoteTank(t *testing.T) {
	a := newTestArena(t)
	before := a.ticks
	a.tick()
	if a.ticks != before {
		t.Fatalf("expected ticks to stay at %d with no Remote tank present, got %d", before, a.ticks)
	}
}

func TestJoinAddsRemoteTankAndSendsOutboundInit(t *testing.T) {
	a := newTestArena(t)
	client := &fakeClient{}
	tank := a.Join("Newcomer", client)

	if tank.Type != TankRemote {
		t.Fatalf("expected joined tank to be Remote, got %v", tank.Type)
	}
	if tank.Name != "Newcomer" {
		t.Fatalf("expected name Newcomer, got %q", tank.Name)
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected exactly one OutboundInit frame sent, got %d", len(client.sent))
	}

	before := a.ticks
	a.tick()
	if a.ticks != before+1 {
		t.Fatalf("expected tick to advance once a Remote tank is present")
	}
}

func TestDisconnectRemovesTank(t *testing.T) {
	a := newTestArena(t)
	tank := a.Join("Leaver", &fakeClient{})
	id := tank.ID

	a.Disconnect(tank)
	if _, ok := a.tanks[id]; ok {
		t.Fatal("expected tank to be removed from arena after Disconnect")
	}
}

func TestSubmitDrainedAtNextTick(t *testing.T) {
	a := newTestArena(t)
	a.Join("Observer", &fakeClient{})

	ran := false
	a.Submit(func(inner *Arena) { ran = true })
	a.tick()
	if !ran {
		t.Fatal("expected submitted command to run during the next tick's drain")
	}
}

func TestSubmitDropsOnFullQueue(t *testing.T) {
	a := newTestArena(t)
	for i := 0; i < cap(a.commands)+10; i++ {
		a.Submit(func(*Arena) {})
	}
	if len(a.commands) != cap(a.commands) {
		t.Fatalf("expected queue to stay capped at %d, got %d", cap(a.commands), len(a.commands))
	}
}

func TestHandleRespawnRestoresAliveState(t *testing.T) {
	a := newTestArena(t)
	tank := a.Join("Fallen", &fakeClient{})
	tank.State = TankDead
	tank.Level = 10

	a.HandleRespawn(tank)

	if tank.State != TankAlive {
		t.Fatal("expected respawned tank to be Alive")
	}
	if tank.Health != tank.MaxHealth {
		t.Fatal("expected respawned tank to be at full health")
	}
	if tank.Level != 5 {
		t.Fatalf("expected level halved to 5, got %v", tank.Level)
	}
}
