package gdl90

import (
	"bytes"
	"errors"
	"testing"
)

func TestHeartbeat_Encode(t *testing.T) {
	tests := []struct {
		name string
		hb   Heartbeat
		want []byte
	}{
		{
			name: "UTC midnight",
			hb:   Heartbeat{GPSPosValid: true, UATInitialized: true, UTCOK: true},
			want: []byte{0x00, 0x81, 0x01, 0x00, 0x00, 0x00, 0x00},
		},
		{
			// Timestamp 70000 needs bit 16, carried in status byte 2 bit 7.
			name: "Timestamp above 16 bits",
			hb: Heartbeat{
				GPSPosValid:    true,
				UATInitialized: true,
				UTCOK:          true,
				Timestamp:      70000,
				UplinkCount:    1,
				BasicLongCount: 2,
			},
			want: []byte{0x00, 0x81, 0x81, 0x70, 0x11, 0x08, 0x02},
		},
		{
			name: "All status flags",
			hb: Heartbeat{
				GPSPosValid: true, MaintRequired: true, Ident: true,
				AddrType: true, GPSBattLow: true, RATCS: true,
				UATInitialized: true, CSARequested: true,
				CSANotAvailable: true, UTCOK: true,
			},
			want: []byte{0x00, 0xFD, 0x61, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hb.Encode(); !bytes.Equal(got, tt.want) {
				t.Errorf("Encode produced % X, want % X", got, tt.want)
			}
		})
	}
}

func TestHeartbeat_Encode_Clamps(t *testing.T) {
	hb := Heartbeat{Timestamp: 100000000, UplinkCount: 200, BasicLongCount: 50000}
	got := hb.Encode()

	ts := uint32(got[3]) | uint32(got[4])<<8 | uint32(got[2]>>7)<<16
	if ts != TimestampMax {
		t.Errorf("Expected timestamp clamped to %d, got %d", TimestampMax, ts)
	}
	counts := uint16(got[5])<<8 | uint16(got[6])
	if counts>>11 != 0x1F {
		t.Errorf("Expected uplink count clamped to 31, got %d", counts>>11)
	}
	if counts&0x7FF != 0x7FF {
		t.Errorf("Expected basic/long count clamped to 2047, got %d", counts&0x7FF)
	}
}

func TestHeartbeat_Parse_SpecSample(t *testing.T) {
	// Body of the worked heartbeat example: 81 41 DB D0 08 02.
	hb := &Heartbeat{}
	if err := hb.Parse([]byte{0x81, 0x41, 0xDB, 0xD0, 0x08, 0x02}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !hb.GPSPosValid {
		t.Error("Expected GPS position valid")
	}
	if !hb.UATInitialized {
		t.Error("Expected UAT initialized")
	}
	if hb.MaintRequired || hb.Ident || hb.AddrType || hb.GPSBattLow || hb.RATCS {
		t.Error("Unexpected status 1 flags set")
	}
	if !hb.CSARequested {
		t.Error("Expected CSA requested")
	}
	if hb.CSANotAvailable {
		t.Error("Unexpected CSA not available flag")
	}
	if !hb.UTCOK {
		t.Error("Expected UTC OK")
	}
	if hb.Timestamp != 53467 {
		t.Errorf("Expected timestamp 53467, got %d", hb.Timestamp)
	}
	if hb.UplinkCount != 1 {
		t.Errorf("Expected uplink count 1, got %d", hb.UplinkCount)
	}
	if hb.BasicLongCount != 2 {
		t.Errorf("Expected basic/long count 2, got %d", hb.BasicLongCount)
	}
}

func TestHeartbeat_Parse_InvalidLength(t *testing.T) {
	for _, n := range []int{0, 5, 7, 27} {
		hb := &Heartbeat{}
		err := hb.Parse(make([]byte, n))
		if err == nil {
			t.Fatalf("Expected error for %d-byte body", n)
		}
		var invalid *InvalidLengthError
		if !errors.As(err, &invalid) {
			t.Fatalf("Expected InvalidLengthError, got %T", err)
		}
		if invalid.Length != n || invalid.Want != HeartbeatBodyLength {
			t.Errorf("Error reported %d/%d, want %d/%d", invalid.Length, invalid.Want, n, HeartbeatBodyLength)
		}
	}
}

func TestHeartbeat_RoundTrip(t *testing.T) {
	original := &Heartbeat{
		GPSPosValid:    true,
		UTCOK:          true,
		Timestamp:      70000,
		UplinkCount:    17,
		BasicLongCount: 1234,
	}

	parsed := &Heartbeat{}
	if err := parsed.Parse(original.Encode()[1:]); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *parsed != *original {
		t.Errorf("Round trip mismatch: got %+v, want %+v", parsed, original)
	}
}

func TestPositionReport_Encode_Traffic(t *testing.T) {
	report := &PositionReport{
		Traffic:                 true,
		ICAO:                    0xABCDEF,
		Latitude:                37.7749,
		Longitude:               -122.4194,
		Altitude:                35000,
		AltitudeValid:           true,
		Misc:                    MiscAirborne | MiscTrackTypeTrueTrack,
		NIC:                     11,
		NACp:                    10,
		HorizontalVelocity:      420,
		HorizontalVelocityValid: true,
		VerticalVelocityValid:   true,
		Track:                   45,
		Emitter:                 EmitterLarge,
		Callsign:                "UAL123",
	}

	want := []byte{
		0x14, 0x00, 0xAB, 0xCD, 0xEF, 0x1A, 0xDC, 0xB6, 0xA8, 0xF2,
		0x3A, 0x5A, 0x09, 0xBA, 0x1A, 0x40, 0x00, 0x20, 0x03, 0x55,
		0x41, 0x4C, 0x31, 0x32, 0x33, 0x20, 0x20, 0x00,
	}
	if got := report.Encode(); !bytes.Equal(got, want) {
		t.Errorf("Encode produced\n% X, want\n% X", got, want)
	}

	wantFrame := append([]byte{0x7E}, want...)
	wantFrame = append(wantFrame, 0x7A, 0x00, 0x7E)
	if got := EncodeFrame(report); !bytes.Equal(got, wantFrame) {
		t.Errorf("EncodeFrame produced\n% X, want\n% X", got, wantFrame)
	}
}

func TestPositionReport_Encode_Ownship(t *testing.T) {
	report := &PositionReport{
		ICAO:                    0xABCDEF,
		Latitude:                37.621311,
		Longitude:               -122.378968,
		Altitude:                1247,
		AltitudeValid:           true,
		Misc:                    MiscAirborne | MiscTrackTypeTrueTrack,
		NIC:                     11,
		NACp:                    10,
		HorizontalVelocity:      145,
		HorizontalVelocityValid: true,
		VerticalVelocity:        -580,
		VerticalVelocityValid:   true,
		Track:                   267.4,
		Emitter:                 EmitterLight,
		Callsign:                "PYTHON1",
	}

	want := []byte{
		0x7E, 0x0A, 0x00, 0xAB, 0xCD, 0xEF, 0x1A, 0xC0, 0xC0, 0xA8,
		0xF9, 0x97, 0x05, 0x99, 0xBA, 0x09, 0x1F, 0xF7, 0xBE, 0x01,
		0x50, 0x59, 0x54, 0x48, 0x4F, 0x4E, 0x31, 0x20, 0x00, 0x7B,
		0x33, 0x7E,
	}
	if got := EncodeFrame(report); !bytes.Equal(got, want) {
		t.Errorf("EncodeFrame produced\n% X, want\n% X", got, want)
	}
}

func TestPositionReport_Encode_Sentinels(t *testing.T) {
	// All three validity flags false: altitude 0xFFF, horizontal velocity
	// 0xFFF, vertical velocity 0x800.
	report := &PositionReport{ICAO: 0x123456}
	body := report.Encode()[1:]

	altRaw := uint16(body[10])<<4 | uint16(body[11])>>4
	if altRaw != 0xFFF {
		t.Errorf("Expected altitude sentinel 0xFFF, got 0x%03X", altRaw)
	}
	hvRaw := uint16(body[13])<<4 | uint16(body[14])>>4
	if hvRaw != 0xFFF {
		t.Errorf("Expected horizontal velocity sentinel 0xFFF, got 0x%03X", hvRaw)
	}
	vvRaw := uint16(body[14]&0xF)<<8 | uint16(body[15])
	if vvRaw != 0x800 {
		t.Errorf("Expected vertical velocity sentinel 0x800, got 0x%03X", vvRaw)
	}
}

func TestPositionReport_Encode_ZeroVerticalVelocity(t *testing.T) {
	// Level flight is 0x000 on the wire, never the 0x800 sentinel.
	report := &PositionReport{VerticalVelocityValid: true}
	body := report.Encode()[1:]

	vvRaw := uint16(body[14]&0xF)<<8 | uint16(body[15])
	if vvRaw != 0x000 {
		t.Errorf("Expected vertical velocity 0x000, got 0x%03X", vvRaw)
	}
}

func TestPositionReport_Parse_InvalidLength(t *testing.T) {
	for _, n := range []int{0, 6, 26, 28} {
		p := &PositionReport{Traffic: true}
		err := p.Parse(make([]byte, n))
		if err == nil {
			t.Fatalf("Expected error for %d-byte body", n)
		}
		var invalid *InvalidLengthError
		if !errors.As(err, &invalid) {
			t.Fatalf("Expected InvalidLengthError, got %T", err)
		}
		if invalid.MessageID != MessageIDTrafficReport {
			t.Errorf("Expected message ID 0x14 in error, got 0x%02X", invalid.MessageID)
		}
	}
}

func TestPositionReport_RoundTrip(t *testing.T) {
	original := &PositionReport{
		Traffic:                 true,
		Alert:                   1,
		AddressType:             AddrTypeADSBSelfAssigned,
		ICAO:                    0xF0000F,
		Latitude:                51.4775,
		Longitude:               -0.4614,
		Altitude:                2500,
		AltitudeValid:           true,
		Misc:                    MiscAirborne | MiscTrackTypeTrueTrack,
		NIC:                     8,
		NACp:                    9,
		HorizontalVelocity:      135,
		HorizontalVelocityValid: true,
		VerticalVelocity:        -640,
		VerticalVelocityValid:   true,
		Track:                   270,
		Emitter:                 EmitterSmall,
		Callsign:                "BAW27L",
		Emergency:               4,
	}

	parsed := &PositionReport{Traffic: true}
	if err := parsed.Parse(original.Encode()[1:]); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.Alert != original.Alert {
		t.Errorf("Alert mismatch: got %d, want %d", parsed.Alert, original.Alert)
	}
	if parsed.AddressType != original.AddressType {
		t.Errorf("AddressType mismatch: got %d, want %d", parsed.AddressType, original.AddressType)
	}
	if parsed.ICAO != original.ICAO {
		t.Errorf("ICAO mismatch: got 0x%06X, want 0x%06X", parsed.ICAO, original.ICAO)
	}
	// Position quantizes to 180/2^23 degrees.
	const halfLSB = 180.0 / (1 << 23) / 2
	if diff := parsed.Latitude - original.Latitude; diff > halfLSB || diff < -halfLSB {
		t.Errorf("Latitude drifted by %v", diff)
	}
	if diff := parsed.Longitude - original.Longitude; diff > halfLSB || diff < -halfLSB {
		t.Errorf("Longitude drifted by %v", diff)
	}
	if !parsed.AltitudeValid || parsed.Altitude != 2500 {
		t.Errorf("Altitude mismatch: got %d (%v), want 2500", parsed.Altitude, parsed.AltitudeValid)
	}
	if parsed.Misc != original.Misc {
		t.Errorf("Misc mismatch: got %d, want %d", parsed.Misc, original.Misc)
	}
	if parsed.NIC != 8 || parsed.NACp != 9 {
		t.Errorf("Integrity mismatch: got NIC %d NACp %d", parsed.NIC, parsed.NACp)
	}
	if !parsed.HorizontalVelocityValid || parsed.HorizontalVelocity != 135 {
		t.Errorf("Horizontal velocity mismatch: got %d", parsed.HorizontalVelocity)
	}
	// -640 fpm is an exact multiple of 64.
	if !parsed.VerticalVelocityValid || parsed.VerticalVelocity != -640 {
		t.Errorf("Vertical velocity mismatch: got %d", parsed.VerticalVelocity)
	}
	if parsed.Track != 270 {
		t.Errorf("Track mismatch: got %v, want 270", parsed.Track)
	}
	if parsed.Emitter != EmitterSmall {
		t.Errorf("Emitter mismatch: got %d", parsed.Emitter)
	}
	if parsed.Callsign != "BAW27L" {
		t.Errorf("Callsign mismatch: got %q", parsed.Callsign)
	}
	if parsed.Emergency != 4 {
		t.Errorf("Emergency mismatch: got %d", parsed.Emergency)
	}
}

func TestDecode_Heartbeat(t *testing.T) {
	msg, err := Decode([]byte{0x00, 0x81, 0x41, 0xDB, 0xD0, 0x08, 0x02})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	hb, ok := msg.(*Heartbeat)
	if !ok {
		t.Fatalf("Expected *Heartbeat, got %T", msg)
	}
	if hb.Timestamp != 53467 {
		t.Errorf("Expected timestamp 53467, got %d", hb.Timestamp)
	}
}

func TestDecode_TrafficReport(t *testing.T) {
	report := &PositionReport{
		Traffic:       true,
		ICAO:          0xABCDEF,
		Latitude:      37.7749,
		Longitude:     -122.4194,
		Altitude:      35000,
		AltitudeValid: true,
		Callsign:      "UAL123",
	}

	msg, err := Decode(report.Encode())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	parsed, ok := msg.(*PositionReport)
	if !ok {
		t.Fatalf("Expected *PositionReport, got %T", msg)
	}
	if !parsed.Traffic {
		t.Error("Expected traffic report")
	}
	if parsed.ICAO != 0xABCDEF {
		t.Errorf("Expected ICAO 0xABCDEF, got 0x%06X", parsed.ICAO)
	}
	if parsed.Callsign != "UAL123" {
		t.Errorf("Expected callsign UAL123, got %q", parsed.Callsign)
	}
}

func TestDecode_Unknown(t *testing.T) {
	msg, err := Decode([]byte{0x02, 0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	u, ok := msg.(*Unknown)
	if !ok {
		t.Fatalf("Expected *Unknown, got %T", msg)
	}
	if u.ID != 0x02 {
		t.Errorf("Expected ID 0x02, got 0x%02X", u.ID)
	}
	if !bytes.Equal(u.Body, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("Expected body 01 02 03, got % X", u.Body)
	}
}

func TestDecode_UnknownCopiesBody(t *testing.T) {
	payload := []byte{0x07, 0xAA, 0xBB}
	msg, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	payload[1] = 0x00
	if u := msg.(*Unknown); u.Body[0] != 0xAA {
		t.Error("Unknown body aliases the caller's buffer")
	}
}

func TestDecode_WrongLengthBodies(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"Short heartbeat", append([]byte{0x00}, make([]byte, 5)...)},
		{"Short ownship", append([]byte{0x0A}, make([]byte, 26)...)},
		{"Long traffic", append([]byte{0x14}, make([]byte, 28)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.payload)
			if err == nil {
				t.Fatal("Expected error for wrong-length body")
			}
			var invalid *InvalidLengthError
			if !errors.As(err, &invalid) {
				t.Errorf("Expected InvalidLengthError, got %T: %v", err, err)
			}
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	frame := []byte{0x7E, 0x00, 0x81, 0x41, 0xDB, 0xD0, 0x08, 0x02, 0xB3, 0x8B, 0x7E}
	msg, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if _, ok := msg.(*Heartbeat); !ok {
		t.Fatalf("Expected *Heartbeat, got %T", msg)
	}
}

func TestDecodeFrame_WrongLengthPassesCRC(t *testing.T) {
	// A CRC-valid frame whose heartbeat body is short must fail on length,
	// not CRC.
	frame := Frame(append([]byte{0x00}, make([]byte, 5)...))
	_, err := DecodeFrame(frame)
	var invalid *InvalidLengthError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidLengthError, got %T: %v", err, err)
	}
}

func TestEncodeFrame_RoundTrip(t *testing.T) {
	messages := []Message{
		&Heartbeat{GPSPosValid: true, UTCOK: true, Timestamp: 43200},
		&PositionReport{Traffic: true, ICAO: 0x7D7E7D, Callsign: "ESCAPE"},
		&Unknown{ID: 0x1E, Body: []byte{0x7E, 0x7D, 0x00}},
	}

	for _, original := range messages {
		decoded, err := DecodeFrame(EncodeFrame(original))
		if err != nil {
			t.Fatalf("Round trip of message 0x%02X failed: %v", original.MessageID(), err)
		}
		if decoded.MessageID() != original.MessageID() {
			t.Errorf("Message ID changed: got 0x%02X, want 0x%02X", decoded.MessageID(), original.MessageID())
		}
		if !bytes.Equal(decoded.Encode(), original.Encode()) {
			t.Errorf("Payload changed after round trip for ID 0x%02X", original.MessageID())
		}
	}
}

func TestForeFlightID_Encode(t *testing.T) {
	id := &ForeFlightID{ShortName: "GDL90", LongName: "GDL90 Broadcaster", MSLAlt: true}
	got := id.Encode()

	if len(got) != 39 {
		t.Fatalf("Expected 39-byte payload, got %d", len(got))
	}
	if got[0] != MessageIDForeFlight {
		t.Errorf("Expected ID 0x65, got 0x%02X", got[0])
	}
	if got[1] != 0x00 || got[2] != 0x01 {
		t.Errorf("Expected sub-ID 0 version 1, got %02X %02X", got[1], got[2])
	}
	for i := 3; i <= 10; i++ {
		if got[i] != 0xFF {
			t.Errorf("Expected serial byte %d to be 0xFF, got 0x%02X", i, got[i])
		}
	}
	if !bytes.Equal(got[11:16], []byte("GDL90")) {
		t.Errorf("Short name not at offset 11: % X", got[11:19])
	}
	// Long name field is 16 bytes; the 17-character name truncates.
	if !bytes.Equal(got[19:35], []byte("GDL90 Broadcaste")) {
		t.Errorf("Long name mismatch: %q", got[19:35])
	}
	if got[38] != 0x01 {
		t.Errorf("Expected capabilities 0x01, got 0x%02X", got[38])
	}
}
