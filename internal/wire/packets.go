package wire

// Packet tags (first byte of every frame), matching spec.md §6.2 exactly.
const (
	TagInboundInit  = 0
	TagInput        = 1
	TagCensus       = 2
	TagOutboundInit = 3 // a.k.a. Mockups
	TagChat         = 4
	TagDeath        = 5
	TagRespawn      = 6
	TagLeaderboard  = 7
)

// Census entity-record tags (distinct numbering from the packet tags above).
const (
	RecordTank   = 0
	RecordShape  = 1
	RecordBullet = 2
)

// Input movement bitfield (spec.md §6.2): bit4=W, bit3=A, bit2=S, bit1=D, bit0=mousedown.
const (
	InputBitW         = 0b10000
	InputBitA         = 0b01000
	InputBitS         = 0b00100
	InputBitD         = 0b00010
	InputBitMouseDown = 0b00001
)

// --- InboundInit (C->S, tag 0): string name ---

func EncodeInboundInit(name string) []byte {
	w := NewWriter(3 + len(name))
	w.PutU8(TagInboundInit)
	w.PutString(name)
	return w.Bytes()
}

// DecodeInboundInit parses a full InboundInit frame (including tag byte).
// Requires len >= 3 and exact consumption of the frame, matching the
// original's buf.size()-buf.offset==0 check.
func DecodeInboundInit(frame []byte) (name string, err error) {
	if len(frame) < 3 {
		return "", ErrMalformedFrame
	}
	r := NewReader(frame)
	tag, err := r.GetU8()
	if err != nil || tag != TagInboundInit {
		return "", ErrMalformedFrame
	}
	name, err = r.GetString()
	if err != nil {
		return "", err
	}
	if r.Remaining() != 0 {
		return "", ErrMalformedFrame
	}
	return name, nil
}

// --- Input (C->S, tag 1): u8 bits, i16 mouseX, i16 mouseY ---

func EncodeInput(bits uint8, mouseX, mouseY int16) []byte {
	w := NewWriter(6)
	w.PutU8(TagInput)
	w.PutU8(bits)
	w.PutI16(mouseX)
	w.PutI16(mouseY)
	return w.Bytes()
}

// DecodeInput requires the frame be exactly 6 bytes (spec.md §9 open
// question: do not accept longer frames even if otherwise well-formed).
func DecodeInput(frame []byte) (bits uint8, mouseX, mouseY int16, err error) {
	if len(frame) != 6 {
		return 0, 0, 0, ErrMalformedFrame
	}
	r := NewReader(frame)
	tag, err := r.GetU8()
	if err != nil || tag != TagInput {
		return 0, 0, 0, ErrMalformedFrame
	}
	bits, err = r.GetU8()
	if err != nil {
		return 0, 0, 0, err
	}
	mouseX, err = r.GetI16()
	if err != nil {
		return 0, 0, 0, err
	}
	mouseY, err = r.GetI16()
	if err != nil {
		return 0, 0, 0, err
	}
	return bits, mouseX, mouseY, nil
}

// --- Chat (C<->S, tag 4): string content ---

func EncodeChat(content string) []byte {
	w := NewWriter(3 + len(content))
	w.PutU8(TagChat)
	w.PutString(content)
	return w.Bytes()
}

func DecodeChat(frame []byte) (content string, err error) {
	if len(frame) < 3 {
		return "", ErrMalformedFrame
	}
	r := NewReader(frame)
	tag, err := r.GetU8()
	if err != nil || tag != TagChat {
		return "", ErrMalformedFrame
	}
	content, err = r.GetString()
	if err != nil {
		return "", err
	}
	if r.Remaining() != 0 {
		return "", ErrMalformedFrame
	}
	return content, nil
}

// --- Respawn (C->S, tag 6): empty body ---

func EncodeRespawn() []byte {
	return []byte{TagRespawn}
}

func DecodeRespawn(frame []byte) error {
	if len(frame) != 1 || frame[0] != TagRespawn {
		return ErrMalformedFrame
	}
	return nil
}

// --- Death (S->C, tag 5): f64 seconds_alive ---

func EncodeDeath(secondsAlive float64) []byte {
	w := NewWriter(9)
	w.PutU8(TagDeath)
	w.PutF64(secondsAlive)
	return w.Bytes()
}

// --- OutboundInit / Mockups (S->C, tag 3) ---

// BarrelRecord is a barrel's wire shape within an OutboundInit mockup entry.
type BarrelRecord struct {
	Width, Length, Angle float32
}

// MockupRecord is one tank config entry within an OutboundInit packet.
type MockupRecord struct {
	Name    string
	FOV     uint8
	Barrels []BarrelRecord
}

func EncodeOutboundInit(playerID uint32, mockups []MockupRecord) []byte {
	w := NewWriter(64 + 32*len(mockups))
	w.PutU8(TagOutboundInit)
	w.PutU32(playerID)
	w.PutU8(uint8(len(mockups)))
	for _, m := range mockups {
		w.PutString(m.Name)
		w.PutU8(m.FOV)
		w.PutU8(uint8(len(m.Barrels)))
		for _, b := range m.Barrels {
			w.PutF32(b.Width)
			w.PutF32(b.Length)
			w.PutF32(b.Angle)
		}
	}
	return w.Bytes()
}

// --- Leaderboard (S->C, tag 7) ---

// LeaderboardRecord is one ranked entry.
type LeaderboardRecord struct {
	Name   string
	Level  float32
	Mockup uint8
}

// EncodeLeaderboard caps at 10 entries even if more are passed in, guarding
// the original's off-the-end iteration bug (spec.md §9 open question).
func EncodeLeaderboard(entries []LeaderboardRecord) []byte {
	n := len(entries)
	if n > 10 {
		n = 10
	}
	w := NewWriter(16 + 24*n)
	w.PutU8(TagLeaderboard)
	w.PutU8(uint8(n))
	for i := 0; i < n; i++ {
		w.PutString(entries[i].Name)
		w.PutF32(entries[i].Level)
		w.PutU8(entries[i].Mockup)
	}
	return w.Bytes()
}

// --- Census (S->C, tag 2) ---

// TankRecord is a tank's wire shape within a Census packet.
type TankRecord struct {
	ID         uint32
	X, Y       int16
	Rotation   float32
	VX, VY     int16
	Mockup     uint8
	HealthFrac float32
	Radius     uint16
	Name       string
	Chat       string // empty when the tank's last message is older than 150 ticks
}

// ShapeRecord is a shape's wire shape within a Census packet.
type ShapeRecord struct {
	ID         uint32
	X, Y       int16
	HealthFrac float32
	Radius     uint16
}

// BulletRecordEntry is a bullet's wire shape within a Census packet.
type BulletRecordEntry struct {
	ID     uint32
	X, Y   int16
	Radius uint16
	VX, VY int16
	Owner  uint32
}

// CensusRecord is a tagged union of the three entity record kinds; exactly
// one field should be non-nil.
type CensusRecord struct {
	Tank   *TankRecord
	Shape  *ShapeRecord
	Bullet *BulletRecordEntry
}

func EncodeCensus(records []CensusRecord, arenaSize uint16, selfLevel float32) []byte {
	w := NewWriter(32 + 24*len(records))
	w.PutU8(TagCensus)
	w.PutU16(uint16(len(records)))
	for _, r := range records {
		switch {
		case r.Tank != nil:
			encodeTankRecord(w, *r.Tank)
		case r.Shape != nil:
			encodeShapeRecord(w, *r.Shape)
		case r.Bullet != nil:
			encodeBulletRecord(w, *r.Bullet)
		}
	}
	w.PutU16(arenaSize)
	w.PutF32(selfLevel)
	return w.Bytes()
}

func encodeTankRecord(w *Buffer, r TankRecord) {
	w.PutU8(RecordTank)
	w.PutU32(r.ID)
	w.PutI16(r.X)
	w.PutI16(r.Y)
	w.PutF32(r.Rotation)
	w.PutI16(r.VX)
	w.PutI16(r.VY)
	w.PutU8(r.Mockup)
	w.PutF32(r.HealthFrac)
	w.PutU16(r.Radius)
	w.PutString(r.Name)
	w.PutString(r.Chat)
}

func encodeShapeRecord(w *Buffer, r ShapeRecord) {
	w.PutU8(RecordShape)
	w.PutU32(r.ID)
	w.PutI16(r.X)
	w.PutI16(r.Y)
	w.PutF32(r.HealthFrac)
	w.PutU16(r.Radius)
}

func encodeBulletRecord(w *Buffer, r BulletRecordEntry) {
	w.PutU8(RecordBullet)
	w.PutU32(r.ID)
	w.PutI16(r.X)
	w.PutI16(r.Y)
	w.PutU16(r.Radius)
	w.PutI16(r.VX)
	w.PutI16(r.VY)
	w.PutU32(r.Owner)
}
