package zwave

import "fmt"

// Security2 message encapsulation command id
const security2MessageEncapID byte = 0x03

// SecureEncap wraps an encoded frame in a Security2 message encapsulation
// header for transmission under the node's network security scheme. The
// transport layer owns key exchange and payload protection; this transform
// only produces the encapsulation layout the transport expects.
func SecureEncap(sequence byte, frame []byte) []byte {
	data := make([]byte, 0, 4+len(frame))
	data = append(data, byte(ClassSecurity2), security2MessageEncapID, sequence, 0x00)
	data = append(data, frame...)
	return data
}

// SecureDecap strips a Security2 message encapsulation header, returning
// the inner frame. Frames that are not encapsulated are returned as-is.
func SecureDecap(data []byte) ([]byte, error) {
	if len(data) < 2 || CommandClass(data[0]) != ClassSecurity2 || data[1] != security2MessageEncapID {
		return data, nil
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("secure encapsulation too short: %d bytes", len(data))
	}
	return data[4:], nil
}
