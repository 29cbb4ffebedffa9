package game

import "tankarena/internal/wire"

// broadcastLeaderboard rebuilds the top-10-by-level ranking from currently
// Alive tanks and sends it to every Remote tank (§4.7). Unlike the
// reference's fixed ten-slot iteration, this guards on the actual alive
// count so arenas with fewer than ten tanks never read past the end of the
// ranked slice (spec.md §9 open question).
func (a *Arena) broadcastLeaderboard() {
	ranked := make([]*Tank, 0, len(a.tanks))
	for _, t := range a.tanks {
		if t.State == TankAlive {
			ranked = append(ranked, t)
		}
	}

	// insertion sort by descending level: leaderboards are small (<=tank
	// count) and this runs once every 15 ticks, so simplicity wins over a
	// general-purpose sort import.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Level > ranked[j-1].Level; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	n := len(ranked)
	if n > 10 {
		n = 10
	}
	entries := make([]wire.LeaderboardRecord, n)
	for i := 0; i < n; i++ {
		entries[i] = wire.LeaderboardRecord{
			Name:   ranked[i].Name,
			Level:  ranked[i].Level,
			Mockup: uint8(ranked[i].Mockup),
		}
	}
	frame := wire.EncodeLeaderboard(entries)

	for _, t := range a.tanks {
		if t.Type == TankRemote && t.State == TankAlive {
			a.sendToClient(t, frame)
		}
	}
}
