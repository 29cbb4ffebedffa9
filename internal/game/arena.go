// Package game implements the arena tick pipeline: motion integration,
// broadphase-backed collision resolution, viewport census, bot AI, and the
// barrel firing and lifecycle state machines (spec.md §3-§4, §9).
package game

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"tankarena/internal/game/spatial"
	"tankarena/internal/tankconfig"
	"tankarena/internal/wire"
)

const (
	// TargetTPS is the nominal simulation rate (spec.md §5).
	TargetTPS = 30
	// TargetBotCount is the number of Local tanks an arena pre-spawns.
	TargetBotCount = 23
	// leaderboardInterval is how often (in ticks) the leaderboard rebuilds.
	leaderboardInterval = 15
	// broadphaseMagic is the original's cell-size divisor (FazoSolverNew's
	// third argument in core.hpp).
	broadphaseMagic = 7
	// shapeTrimBand is the hysteresis band around the shape target (§4.6).
	shapeTrimBand = 12
)

// Arena owns one bounded 2D world: its entities, its broadphase index, and
// the tick loop that drives them. All entity-map and index mutation happens
// on the single goroutine running Tick; network callbacks submit closures
// via Submit rather than touching state directly, so no additional locking
// is needed around the maps themselves (spec.md §5's "mutated only on the
// loop thread" policy, realized here as a single-goroutine-owns-the-state
// rule with a channel as the synchronization boundary, matching the
// teacher's Engine.Start/tick goroutine-plus-ticker shape in
// internal/game/engine.go).
type Arena struct {
	Path string

	shapes  map[uint32]*Shape
	tanks   map[uint32]*Tank
	bullets map[uint32]*Bullet

	index *spatial.Grid

	ticks            uint64
	size             float32
	targetShapeCount int

	deltaHistory [TargetTPS]float64
	deltaFilled  int
	deltaPos     int
	delta        float64
	lastTick     time.Time

	idAlloc     *IDAllocator
	tankConfigs *tankconfig.Registry

	commands chan func(*Arena)
	stopCh   chan struct{}
	ticker   *time.Ticker

	// entity counts, published atomically once per tick so external
	// observers (internal/apiserver's metrics sampler) can read them
	// without touching the tick-goroutine-owned maps.
	tankCount, shapeCount, bulletCount atomic.Int64
}

// Counts reports the current entity counts. Safe to call from any
// goroutine.
func (a *Arena) Counts() (tanks, shapes, bullets int) {
	return int(a.tankCount.Load()), int(a.shapeCount.Load()), int(a.bulletCount.Load())
}

func (a *Arena) publishCounts() {
	a.tankCount.Store(int64(len(a.tanks)))
	a.shapeCount.Store(int64(len(a.shapes)))
	a.bulletCount.Store(int64(len(a.bullets)))
}

// NewArena constructs an arena at path, pre-spawning TargetBotCount Local
// tanks and shapes up to target (core.hpp's Arena::run), and registers for
// tank-config hot-reload notifications.
func NewArena(path string, idAlloc *IDAllocator, tankConfigs *tankconfig.Registry) *Arena {
	initialSize := computeSize(TargetBotCount)
	a := &Arena{
		Path:        path,
		shapes:      make(map[uint32]*Shape),
		tanks:       make(map[uint32]*Tank),
		bullets:     make(map[uint32]*Bullet),
		index:       spatial.NewGrid(float64(initialSize), float64(initialSize), broadphaseMagic),
		size:        initialSize,
		idAlloc:     idAlloc,
		tankConfigs: tankConfigs,
		commands:    make(chan func(*Arena), 256),
		stopCh:      make(chan struct{}),
	}
	a.targetShapeCount = computeTargetShapeCount(a.size)

	for i := 0; i < TargetBotCount; i++ {
		a.spawnTank("Bot", nil)
	}
	a.spawnShapesToTarget()
	a.updateSize()

	tankConfigs.OnReload(func([]tankconfig.TankConfig) {
		a.Submit(func(inner *Arena) { inner.resendOutboundInitToAll() })
	})

	a.publishCounts()
	return a
}

func computeSize(tankCount int) float32 {
	return float32(1000*tankCount + 5000)
}

func computeTargetShapeCount(size float32) int {
	return int(size * size / 700000)
}

// Submit enqueues fn to run on the tick goroutine at the top of the next
// tick. Safe to call from any goroutine (network read-pumps, the fsnotify
// watch goroutine). The queue is bounded; a full queue drops the command
// with a warning rather than blocking the caller.
func (a *Arena) Submit(fn func(*Arena)) {
	select {
	case a.commands <- fn:
	default:
		Warn(fmt.Sprintf("arena %s command queue full, dropping command", a.Path))
	}
}

// Start begins the tick loop on a new goroutine.
func (a *Arena) Start() {
	a.ticker = time.NewTicker(time.Second / TargetTPS)
	go a.run()
}

func (a *Arena) run() {
	for {
		select {
		case <-a.ticker.C:
			a.tick()
		case <-a.stopCh:
			return
		}
	}
}

// Stop halts the tick loop and tears down the arena, closing every Remote
// client with WebSocket close code 4000 (spec.md §7).
func (a *Arena) Stop() {
	close(a.stopCh)
	if a.ticker != nil {
		a.ticker.Stop()
	}
	for _, t := range a.tanks {
		if t.Type == TankRemote && t.Client != nil {
			_ = t.Client.Close(4000, "Arena Closed")
		}
	}
}

func (a *Arena) drainCommands() {
	for {
		select {
		case fn := <-a.commands:
			fn(a)
		default:
			return
		}
	}
}

func (a *Arena) pushDelta(d float64) {
	a.deltaHistory[a.deltaPos] = d
	a.deltaPos = (a.deltaPos + 1) % TargetTPS
	if a.deltaFilled < TargetTPS {
		a.deltaFilled++
	}
}

// avgDelta averages the last TARGET_TPS recorded per-tick deltas (§4.3),
// used to scale barrel reload timers.
func (a *Arena) avgDelta() float64 {
	if a.deltaFilled == 0 {
		return 1
	}
	sum := 0.0
	for i := 0; i < a.deltaFilled; i++ {
		sum += a.deltaHistory[i]
	}
	return sum / float64(a.deltaFilled)
}

func (a *Arena) hasRemote() bool {
	for _, t := range a.tanks {
		if t.Type == TankRemote {
			return true
		}
	}
	return false
}

// Tick runs one simulation step synchronously, for callers (and tests
// outside this package) that need a deterministic step without starting the
// ticker goroutine.
func (a *Arena) Tick() {
	a.tick()
}

// tick runs one full simulation step. When no Remote tank is present in the
// arena it only records the delta, drains submitted commands and publishes
// entity counts - bots never act without a human observer (core.hpp's
// update() early-returns in exactly this case).
func (a *Arena) tick() {
	now := time.Now()
	if a.lastTick.IsZero() {
		a.lastTick = now
	}
	elapsed := now.Sub(a.lastTick).Seconds()
	a.lastTick = now

	nominal := 1.0 / float64(TargetTPS)
	d := elapsed / nominal
	a.delta = d
	a.pushDelta(d)

	a.drainCommands()
	a.publishCounts()

	if !a.hasRemote() {
		return
	}
	a.ticks++

	avgDelta := a.avgDelta()

	a.spawnShapesToTarget()
	a.trimExcessShapes()
	a.tickShapes()
	a.tickTanks(avgDelta)
	a.tickBullets()

	a.collisionPass()
	a.censusAndBots()

	if a.ticks%leaderboardInterval == 0 {
		a.broadcastLeaderboard()
	}
}

func (a *Arena) randomPosition() Vector2 {
	return Vector2{
		X: float32(rand.Float64()) * a.size,
		Y: float32(rand.Float64()) * a.size,
	}
}

func (a *Arena) updateSize() {
	a.size = computeSize(len(a.tanks))
	a.targetShapeCount = computeTargetShapeCount(a.size)
}

func (a *Arena) syncBroadphase(e *Entity) {
	a.index.Mutate(e.ID, e.BoundingBox())
}

// --- shapes ---

func (a *Arena) spawnShape() *Shape {
	id := a.idAlloc.Next()
	s := NewShape(id, a.randomPosition())
	a.shapes[id] = s
	a.index.Insert(id, s.BoundingBox())
	return s
}

func (a *Arena) destroyShape(id uint32) {
	a.index.Delete(id)
	delete(a.shapes, id)
}

func (a *Arena) spawnShapesToTarget() {
	if len(a.shapes) > a.targetShapeCount-shapeTrimBand {
		return
	}
	for len(a.shapes) < a.targetShapeCount {
		a.spawnShape()
	}
}

func (a *Arena) trimExcessShapes() {
	if len(a.shapes) < a.targetShapeCount+shapeTrimBand {
		return
	}
	for id := range a.shapes {
		if len(a.shapes) <= a.targetShapeCount {
			break
		}
		a.destroyShape(id)
	}
}

func (a *Arena) tickShapes() {
	for id, s := range a.shapes {
		if s.Health <= 0 {
			a.destroyShape(id)
			continue
		}
		s.integrateMotion(float32(a.delta), a.size)
		a.syncBroadphase(&s.Entity)
	}
}

// --- tanks ---

func (a *Arena) spawnTank(name string, client Client) *Tank {
	id := a.idAlloc.Next()
	t := NewTank(id, name, a.randomPosition(), client)

	configs := a.tankConfigs.Configs()
	mockup := rand.Intn(len(configs))
	t.Define(mockup, configs[mockup])
	t.Radius = radiusForLevel(t.Level)

	a.tanks[id] = t
	a.index.Insert(id, t.BoundingBox())
	a.updateSize()
	return t
}

// Join admits a newly-authenticated client as a Remote tank (InboundInit,
// spec.md §4.8/§6.2) and sends the resulting OutboundInit packet.
func (a *Arena) Join(rawName string, client Client) *Tank {
	name := wire.Truncate(rawName, 14, false)
	if name == "" {
		name = "Unnamed"
	}
	t := a.spawnTank(name, client)
	Info(fmt.Sprintf("%s joined arena %s as tank %d", name, a.Path, t.ID))
	a.sendOutboundInit(t)
	return t
}

func (a *Arena) sendOutboundInit(t *Tank) {
	configs := a.tankConfigs.Configs()
	mockups := make([]wire.MockupRecord, len(configs))
	for i, cfg := range configs {
		barrels := make([]wire.BarrelRecord, len(cfg.Barrels))
		for j, b := range cfg.Barrels {
			barrels[j] = wire.BarrelRecord{Width: b.Width, Length: b.Length, Angle: b.Angle}
		}
		mockups[i] = wire.MockupRecord{Name: cfg.Name, FOV: cfg.FOV, Barrels: barrels}
	}
	a.sendToClient(t, wire.EncodeOutboundInit(t.ID, mockups))
}

func (a *Arena) resendOutboundInitToAll() {
	for _, t := range a.tanks {
		if t.Type == TankRemote && t.State == TankAlive {
			if cfg, ok := a.tankConfigs.Get(t.Mockup); ok {
				t.Define(t.Mockup, cfg)
			}
			a.sendOutboundInit(t)
		}
	}
}

// HandleInput applies a parsed Input packet to t (§4.8, §6.2).
func (a *Arena) HandleInput(t *Tank, bits uint8, mouseX, mouseY int16) {
	if bits&wire.InputBitW != 0 {
		t.Input.W, t.Input.S = true, false
	} else {
		t.Input.W, t.Input.S = false, bits&wire.InputBitS != 0
	}
	if bits&wire.InputBitA != 0 {
		t.Input.A, t.Input.D = true, false
	} else {
		t.Input.A, t.Input.D = false, bits&wire.InputBitD != 0
	}
	t.Input.MouseDown = bits&wire.InputBitMouseDown != 0
	t.Input.MousePos = Vector2{X: float32(mouseX), Y: float32(mouseY)}
	t.Rotation = t.Position.AngleTo(t.Input.MousePos)
}

// HandleChat applies a parsed Chat packet to t. An empty message clears the
// tank's chat bubble (§4.8).
func (a *Arena) HandleChat(t *Tank, content string) {
	content = wire.Truncate(content, 100, true)
	if content == "" {
		t.Message = ChatMessage{}
		return
	}
	t.Message = ChatMessage{Content: content, Tick: a.ticks}
}

// HandleRespawn restores a Dead Remote tank to Alive (§4.6).
func (a *Arena) HandleRespawn(t *Tank) {
	t.Position = a.randomPosition()
	t.Health = t.MaxHealth
	t.Level = halveLevel(t.Level)
	t.Radius = radiusForLevel(t.Level)
	t.State = TankAlive
	t.SpawnTime = time.Now()
	a.index.Insert(t.ID, t.BoundingBox())
	a.updateSize()
}

// Disconnect removes t entirely on connection loss (spec.md §5).
func (a *Arena) Disconnect(t *Tank) {
	a.index.Delete(t.ID)
	delete(a.tanks, t.ID)
	a.updateSize()
}

func (a *Arena) tickTanks(avgDelta float64) {
	for _, t := range a.tanks {
		if t.State == TankDead {
			continue
		}
		if t.Health <= 0 {
			t.Input = Input{}
			if t.Type == TankLocal {
				t.Position = a.randomPosition()
				t.Level = halveLevel(t.Level)
				t.Health = t.MaxHealth
				t.Radius = radiusForLevel(t.Level)
				a.syncBroadphase(&t.Entity)
			} else {
				t.State = TankDead
				a.index.Delete(t.ID)
				elapsed := time.Since(t.SpawnTime).Seconds()
				a.sendToClient(t, wire.EncodeDeath(elapsed))
				a.updateSize()
			}
			continue
		}
		a.nextTickTank(t, avgDelta)
	}
}

func (a *Arena) nextTickTank(t *Tank, avgDelta float64) {
	for _, b := range t.Barrels {
		b.step(t, a, a.ticks, avgDelta)
	}
	t.regenerateHealth()
	t.applyInput()
	t.Radius = radiusForLevel(t.Level)
	t.integrateMotion(float32(a.delta), a.size)
	a.syncBroadphase(&t.Entity)
}

// --- bullets ---

func (a *Arena) spawnBullet(b *Bullet) {
	a.bullets[b.ID] = b
	a.index.Insert(b.ID, b.BoundingBox())
}

func (a *Arena) destroyBullet(id uint32) {
	a.index.Delete(id)
	delete(a.bullets, id)
}

func (a *Arena) tickBullets() {
	for id, b := range a.bullets {
		b.Lifetime -= float32(a.delta)
		if b.Expired() {
			a.destroyBullet(id)
			continue
		}
		b.integrateMotion(float32(a.delta), a.size)
		a.syncBroadphase(&b.Entity)
	}
}

func (a *Arena) sendToClient(t *Tank, data []byte) {
	if t.Client == nil {
		return
	}
	if err := t.Client.Send(data); err != nil {
		Warn(fmt.Sprintf("send to tank %d failed: %v", t.ID, err))
	}
}

// entityGeometry looks up the position/radius of any entity id regardless
// of kind, for generic collision/census candidate handling.
func (a *Arena) entityGeometry(id uint32) (Vector2, float32, bool) {
	if s, ok := a.shapes[id]; ok {
		return s.Position, s.Radius, true
	}
	if t, ok := a.tanks[id]; ok {
		return t.Position, t.Radius, true
	}
	if b, ok := a.bullets[id]; ok {
		return b.Position, b.Radius, true
	}
	return Vector2{}, 0, false
}

func (a *Arena) creditKill(ownerID uint32, amount float32) {
	owner, ok := a.tanks[ownerID]
	if !ok || owner.State == TankDead {
		Bruh(fmt.Sprintf("kill credit for missing/dead owner tank %d", ownerID))
		return
	}
	owner.Level += amount
}
