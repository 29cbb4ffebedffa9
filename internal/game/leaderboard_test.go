package game

import (
	"testing"

	"tankarena/internal/wire"
)

func TestBroadcastLeaderboardRanksDescendingAndSendsToRemoteOnly(t *testing.T) {
	a := newTestArena(t)
	// Clear the pre-spawned bots so only the tanks below are ranked.
	for id := range a.tanks {
		a.index.Delete(id)
		delete(a.tanks, id)
	}

	low := a.Join("Low", &fakeClient{})
	low.Level = 2
	high := a.Join("High", &fakeClient{})
	high.Level = 9
	mid := a.Join("Mid", &fakeClient{})
	mid.Level = 5
	bot := a.spawnTank("Bot", nil)
	bot.Level = 100 // ranked like any Alive tank, but Local with no Client, so it is sent nothing

	a.broadcastLeaderboard()

	for _, tank := range []*Tank{low, high, mid} {
		client := tank.Client.(*fakeClient)
		// Join already queued one OutboundInit frame; broadcastLeaderboard
		// adds exactly one more.
		if len(client.sent) != 2 {
			t.Fatalf("expected tank %s to receive OutboundInit + one leaderboard frame, got %d", tank.Name, len(client.sent))
		}
	}

	r := wire.NewReader(low.Client.(*fakeClient).sent[1])
	_, _ = r.GetU8() // tag
	n, _ := r.GetU8()
	want := []string{"Bot", "High", "Mid", "Low"}
	if int(n) != len(want) {
		t.Fatalf("expected %d leaderboard entries, got %d", len(want), n)
	}
	for i, name := range want {
		got, _ := r.GetString()
		_, _ = r.GetF32()
		_, _ = r.GetU8()
		if got != name {
			t.Fatalf("expected entry %d to be %s (descending level), got %s", i, name, got)
		}
	}
}

func TestBroadcastLeaderboardCapsAtTen(t *testing.T) {
	a := newTestArena(t)
	for id := range a.tanks {
		a.index.Delete(id)
		delete(a.tanks, id)
	}
	for i := 0; i < 15; i++ {
		tank := a.Join("P", &fakeClient{})
		tank.Level = float32(i)
	}

	// broadcastLeaderboard doesn't return the built slice, so the cap is
	// read back from the sent frame (tag byte, then the u8 entry count);
	// every Remote Alive tank still gets exactly one frame regardless of
	// how many exist beyond the top 10.
	a.broadcastLeaderboard()
	for _, tank := range a.tanks {
		client := tank.Client.(*fakeClient)
		if len(client.sent) != 2 {
			t.Fatalf("expected OutboundInit + one leaderboard frame, got %d", len(client.sent))
		}
		if n := client.sent[1][1]; n != 10 {
			t.Fatalf("expected leaderboard capped at 10 entries, got %d", n)
		}
	}
}

func TestBroadcastLeaderboardSkipsDeadTanks(t *testing.T) {
	a := newTestArena(t)
	for id := range a.tanks {
		a.index.Delete(id)
		delete(a.tanks, id)
	}
	dead := a.Join("Dead", &fakeClient{})
	dead.State = TankDead

	a.broadcastLeaderboard()

	client := dead.Client.(*fakeClient)
	// Join itself sends one OutboundInit frame; broadcastLeaderboard must
	// not add a second frame for a Dead tank.
	if len(client.sent) != 1 {
		t.Fatalf("expected dead tank to receive no leaderboard frame, got %d total frames", len(client.sent))
	}
}
