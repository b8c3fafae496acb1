package gdl90

// crc16Table is the CRC-16-CCITT lookup table (polynomial 0x1021),
// generated once at package load.
var crc16Table = func() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// ComputeCRC returns the CRC-16-CCITT of data with initial value 0. Every
// GDL-90 frame carries this checksum over the message ID and body. The
// empty input yields 0.
func ComputeCRC(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc16Table[crc>>8] ^ crc<<8 ^ uint16(b)
	}
	return crc
}
