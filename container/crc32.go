package container

// crcPolynomial is the reflected IEEE 802.3 polynomial.
const crcPolynomial = 0xEDB88320

// Checksum returns the CRC-32 (IEEE) of data.
func Checksum(data []byte) uint32 {
	return UpdateChecksum(0, data)
}

// UpdateChecksum continues a CRC-32 computation over p, starting from a
// previously returned checksum.
func UpdateChecksum(crc uint32, p []byte) uint32 {
	crc = ^crc
	for _, b := range p {
		crc ^= uint32(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
	}
	return ^crc
}
