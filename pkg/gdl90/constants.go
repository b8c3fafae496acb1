package gdl90

// GDL-90 message IDs (GDL 90 Data Interface Specification, Table 2)
const (
	MessageIDHeartbeat          byte = 0x00
	MessageIDInitialization     byte = 0x02
	MessageIDUplinkData         byte = 0x07
	MessageIDHeightAboveTerrain byte = 0x09
	MessageIDOwnshipReport      byte = 0x0A
	MessageIDOwnshipGeoAltitude byte = 0x0B
	MessageIDTrafficReport      byte = 0x14
	MessageIDBasicReport        byte = 0x1E
	MessageIDLongReport         byte = 0x1F
	MessageIDForeFlight         byte = 0x65
)

// Body lengths for the message types this package interprets
const (
	HeartbeatBodyLength      = 6
	PositionReportBodyLength = 27
	CallsignLength           = 8
)

// MinFrameLength is the smallest well-formed frame: two flag bytes, a
// message ID and a two-byte CRC.
const MinFrameLength = 5

// Reserved field values ("no data available" sentinels, distinct from any
// legitimate encoded value including zero)
const (
	altitudeMax      = 0xFFE
	altitudeInvalid  = 0xFFF
	hVelocityMax     = 0xFFE
	hVelocityInvalid = 0xFFF
	vVelocityInvalid = 0x800
)

// TimestampMax is the largest valid heartbeat timestamp: one second before
// UTC midnight.
const TimestampMax = 86399

// Position report miscellaneous indicator nibble (Table 9)
const (
	MiscTrackTypeTrueTrack   uint8 = 0x1 // bits 0-1: track is true track angle
	MiscTrackTypeMagHeading  uint8 = 0x2 // bits 0-1: track is magnetic heading
	MiscTrackTypeTrueHeading uint8 = 0x3 // bits 0-1: track is true heading
	MiscReportExtrapolated   uint8 = 0x4 // bit 2: report is extrapolated
	MiscAirborne             uint8 = 0x8 // bit 3: airborne (0 = on ground)
)

// Address qualifiers for the low nibble of the position report status byte
// (Table 8)
const (
	AddrTypeADSBWithICAO     uint8 = 0
	AddrTypeADSBSelfAssigned uint8 = 1
	AddrTypeTISBWithICAO     uint8 = 2
	AddrTypeTISBTrackFile    uint8 = 3
	AddrTypeSurfaceVehicle   uint8 = 4
	AddrTypeGroundStation    uint8 = 5
)

// Emitter categories (Table 11, the subset in common use)
const (
	EmitterNone               uint8 = 0
	EmitterLight              uint8 = 1
	EmitterSmall              uint8 = 2
	EmitterLarge              uint8 = 3
	EmitterHighVortexLarge    uint8 = 4
	EmitterHeavy              uint8 = 5
	EmitterHighlyManeuverable uint8 = 6
	EmitterRotorcraft         uint8 = 7
	EmitterGlider             uint8 = 9
	EmitterLighterThanAir     uint8 = 10
	EmitterParachutist        uint8 = 11
	EmitterUltralight         uint8 = 12
	EmitterUAV                uint8 = 14
	EmitterSpaceVehicle       uint8 = 15
	EmitterSurfaceEmergency   uint8 = 17
	EmitterSurfaceService     uint8 = 18
	EmitterPointObstacle      uint8 = 19
)
