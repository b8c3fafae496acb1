package gdl90

// Message is a decoded GDL-90 message. Concrete types are Heartbeat,
// PositionReport, ForeFlightID and Unknown.
type Message interface {
	// MessageID returns the GDL-90 message ID byte.
	MessageID() byte
	// Encode returns the message ID followed by the body, ready for Frame.
	Encode() []byte
}

// Heartbeat is the GDL-90 heartbeat message (ID 0x00), emitted once per
// second by an operating transceiver.
type Heartbeat struct {
	GPSPosValid     bool // status 1 bit 7: GPS position valid
	MaintRequired   bool // status 1 bit 6: maintenance required
	Ident           bool // status 1 bit 5: IDENT talkback
	AddrType        bool // status 1 bit 4: anonymous address in use
	GPSBattLow      bool // status 1 bit 3: GPS battery low
	RATCS           bool // status 1 bit 2: receiving ATC services
	UATInitialized  bool // status 1 bit 0: UAT initialized
	CSARequested    bool // status 2 bit 6: CSA has been requested
	CSANotAvailable bool // status 2 bit 5: CSA is not available
	UTCOK           bool // status 2 bit 0: UTC timing is valid

	// Timestamp is seconds since UTC midnight (0 to 86399). The low 16
	// bits travel little-endian; bit 16 rides in status byte 2 bit 7.
	Timestamp uint32

	// Message counts, packed big-endian as a 5-bit uplink count and an
	// 11-bit basic/long count.
	UplinkCount    uint8
	BasicLongCount uint16
}

// MessageID implements Message.
func (h *Heartbeat) MessageID() byte { return MessageIDHeartbeat }

// Encode packs the heartbeat into its 7-byte payload (ID plus 6-byte
// body). The timestamp and counts are clamped to their field widths, so
// encoding cannot fail.
func (h *Heartbeat) Encode() []byte {
	out := make([]byte, 1+HeartbeatBodyLength)
	out[0] = MessageIDHeartbeat

	var st1 byte
	if h.GPSPosValid {
		st1 |= 1 << 7
	}
	if h.MaintRequired {
		st1 |= 1 << 6
	}
	if h.Ident {
		st1 |= 1 << 5
	}
	if h.AddrType {
		st1 |= 1 << 4
	}
	if h.GPSBattLow {
		st1 |= 1 << 3
	}
	if h.RATCS {
		st1 |= 1 << 2
	}
	if h.UATInitialized {
		st1 |= 1
	}
	out[1] = st1

	ts := h.Timestamp
	if ts > TimestampMax {
		ts = TimestampMax
	}
	var st2 byte
	if h.CSARequested {
		st2 |= 1 << 6
	}
	if h.CSANotAvailable {
		st2 |= 1 << 5
	}
	if h.UTCOK {
		st2 |= 1
	}
	st2 |= byte(ts>>16) << 7
	out[2] = st2
	out[3] = byte(ts)
	out[4] = byte(ts >> 8)

	uplink := h.UplinkCount
	if uplink > 0x1F {
		uplink = 0x1F
	}
	basicLong := h.BasicLongCount
	if basicLong > 0x7FF {
		basicLong = 0x7FF
	}
	counts := uint16(uplink)<<11 | basicLong
	out[5] = byte(counts >> 8)
	out[6] = byte(counts)
	return out
}

// Parse unpacks a 6-byte heartbeat body.
func (h *Heartbeat) Parse(body []byte) error {
	if len(body) != HeartbeatBodyLength {
		return &InvalidLengthError{MessageID: MessageIDHeartbeat, Length: len(body), Want: HeartbeatBodyLength}
	}
	st1, st2 := body[0], body[1]
	h.GPSPosValid = st1&(1<<7) != 0
	h.MaintRequired = st1&(1<<6) != 0
	h.Ident = st1&(1<<5) != 0
	h.AddrType = st1&(1<<4) != 0
	h.GPSBattLow = st1&(1<<3) != 0
	h.RATCS = st1&(1<<2) != 0
	h.UATInitialized = st1&1 != 0
	h.CSARequested = st2&(1<<6) != 0
	h.CSANotAvailable = st2&(1<<5) != 0
	h.UTCOK = st2&1 != 0
	h.Timestamp = uint32(body[2]) | uint32(body[3])<<8 | uint32(st2>>7)<<16
	counts := uint16(body[4])<<8 | uint16(body[5])
	h.UplinkCount = uint8(counts >> 11)
	h.BasicLongCount = counts & 0x7FF
	return nil
}

// PositionReport is the 27-byte position message shared byte for byte by
// the ownship report (ID 0x0A) and the traffic report (ID 0x14); only the
// message ID distinguishes them.
type PositionReport struct {
	// Traffic selects the traffic report ID (0x14); when false the
	// message encodes as an ownship report (0x0A).
	Traffic bool

	Alert       uint8  // alert status nibble (1 = traffic alert active)
	AddressType uint8  // address qualifier nibble (Table 8)
	ICAO        uint32 // 24-bit participant address

	Latitude  float64 // degrees, positive north
	Longitude float64 // degrees, positive east

	Altitude      int32 // pressure altitude, feet
	AltitudeValid bool  // false encodes the 0xFFF sentinel

	Misc uint8 // miscellaneous indicator nibble (Table 9)
	NIC  uint8 // navigation integrity category
	NACp uint8 // navigation accuracy category for position

	HorizontalVelocity      uint16 // ground speed, knots
	HorizontalVelocityValid bool   // false encodes the 0xFFF sentinel

	VerticalVelocity      int32 // feet per minute, positive up
	VerticalVelocityValid bool  // false encodes the 0x800 sentinel

	Track     float64 // degrees
	Emitter   uint8   // emitter category (Table 11)
	Callsign  string  // up to 8 characters, A-Z 0-9 and space
	Emergency uint8   // emergency/priority code nibble
}

// MessageID implements Message.
func (p *PositionReport) MessageID() byte {
	if p.Traffic {
		return MessageIDTrafficReport
	}
	return MessageIDOwnshipReport
}

// Encode packs the report into its 28-byte payload (ID plus 27-byte body).
// Numeric fields are clamped to their encodable ranges and the callsign is
// normalized, so encoding cannot fail.
func (p *PositionReport) Encode() []byte {
	out := make([]byte, 1+PositionReportBodyLength)
	out[0] = p.MessageID()
	body := out[1:]

	body[0] = (p.Alert&0xF)<<4 | p.AddressType&0xF
	putUint24(body[1:4], p.ICAO)
	putUint24(body[4:7], EncodeLatitude(p.Latitude))
	putUint24(body[7:10], EncodeLongitude(p.Longitude))

	alt := uint16(altitudeInvalid)
	if p.AltitudeValid {
		alt = EncodeAltitude(float64(p.Altitude))
	}
	body[10] = byte(alt >> 4)
	body[11] = byte(alt&0xF)<<4 | p.Misc&0xF

	body[12] = (p.NIC&0xF)<<4 | p.NACp&0xF

	hv := uint16(hVelocityInvalid)
	if p.HorizontalVelocityValid {
		hv = EncodeHorizontalVelocity(float64(p.HorizontalVelocity))
	}
	vv := uint16(vVelocityInvalid)
	if p.VerticalVelocityValid {
		vv = EncodeVerticalVelocity(float64(p.VerticalVelocity))
	}
	body[13] = byte(hv >> 4)
	body[14] = byte(hv&0xF)<<4 | byte(vv>>8)&0xF
	body[15] = byte(vv)

	body[16] = EncodeTrack(p.Track)
	body[17] = p.Emitter
	copy(body[18:26], NormalizeCallsign(p.Callsign))
	body[26] = (p.Emergency & 0xF) << 4
	return out
}

// Parse unpacks a 27-byte position report body. The caller sets Traffic
// according to the message ID; Decode does this automatically.
func (p *PositionReport) Parse(body []byte) error {
	if len(body) != PositionReportBodyLength {
		return &InvalidLengthError{MessageID: p.MessageID(), Length: len(body), Want: PositionReportBodyLength}
	}
	p.Alert = body[0] >> 4
	p.AddressType = body[0] & 0xF
	p.ICAO = uint24(body[1:4])
	p.Latitude = DecodeLatitude(uint24(body[4:7]))
	p.Longitude = DecodeLongitude(uint24(body[7:10]))

	altRaw := uint16(body[10])<<4 | uint16(body[11])>>4
	p.Altitude, p.AltitudeValid = DecodeAltitude(altRaw)
	p.Misc = body[11] & 0xF

	p.NIC = body[12] >> 4
	p.NACp = body[12] & 0xF

	hvRaw := uint16(body[13])<<4 | uint16(body[14])>>4
	vvRaw := uint16(body[14]&0xF)<<8 | uint16(body[15])
	p.HorizontalVelocity, p.HorizontalVelocityValid = DecodeHorizontalVelocity(hvRaw)
	p.VerticalVelocity, p.VerticalVelocityValid = DecodeVerticalVelocity(vvRaw)

	p.Track = DecodeTrack(body[16])
	p.Emitter = body[17]
	p.Callsign = DecodeCallsign(body[18:26])
	p.Emergency = body[26] >> 4
	return nil
}

// Unknown carries any message ID this package does not interpret. The body
// is preserved byte for byte so the message can be re-framed or forwarded
// unchanged.
type Unknown struct {
	ID   byte
	Body []byte
}

// MessageID implements Message.
func (u *Unknown) MessageID() byte { return u.ID }

// Encode reassembles the original ID and body.
func (u *Unknown) Encode() []byte {
	out := make([]byte, 1+len(u.Body))
	out[0] = u.ID
	copy(out[1:], u.Body)
	return out
}

// Decode interprets an unescaped payload (message ID and body, CRC already
// stripped and verified) as a typed message. Heartbeat and position report
// bodies of the wrong length return an InvalidLengthError; every other ID
// decodes as Unknown with the body copied.
func Decode(payload []byte) (Message, error) {
	if len(payload) == 0 {
		return nil, &MalformedFrameError{Reason: "empty payload"}
	}
	id, body := payload[0], payload[1:]
	switch id {
	case MessageIDHeartbeat:
		h := &Heartbeat{}
		if err := h.Parse(body); err != nil {
			return nil, err
		}
		return h, nil
	case MessageIDOwnshipReport, MessageIDTrafficReport:
		p := &PositionReport{Traffic: id == MessageIDTrafficReport}
		if err := p.Parse(body); err != nil {
			return nil, err
		}
		return p, nil
	default:
		u := &Unknown{ID: id, Body: make([]byte, len(body))}
		copy(u.Body, body)
		return u, nil
	}
}

// DecodeFrame unframes and decodes a complete flag-delimited frame.
func DecodeFrame(frame []byte) (Message, error) {
	payload, err := Unframe(frame)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// EncodeFrame encodes msg and wraps it into a complete on-wire frame.
func EncodeFrame(msg Message) []byte {
	return Frame(msg.Encode())
}

func putUint24(dst []byte, v uint32) {
	dst[0] = byte(v >> 16)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v)
}

func uint24(src []byte) uint32 {
	return uint32(src[0])<<16 | uint32(src[1])<<8 | uint32(src[2])
}
