package dsp

// Deterministic test-image generator shared by the conformance tests and the
// check/bench harness. Two index cursors walk a fixed byte table with
// strides 1 and 2, so the same (w, h, bpp, filter, seed) tuple always
// produces the identical buffer; the equivalence checker depends on that to
// generate the same image twice.

// randImageTableSize is the number of entries in the byte table. Deliberately
// odd and coprime to the strides so the two cursors cover the whole table.
const randImageTableSize = 299

// kImageTable is the fixed byte pool. The runs of 0x00, 0x01 and 0xFF are
// intentional: they produce saturation- and wraparound-heavy scanlines.
var kImageTable = [randImageTableSize]uint8{
	0xD9, 0xFA, 0xA7, 0x20, 0x6B, 0xD3, 0x41, 0xC9, 0x1A, 0x27, 0x2F, 0x64, 0x59,
	0x85, 0x47, 0x1C, 0xFC, 0x3E, 0xA3, 0x5B, 0x3C, 0xD2, 0xB5, 0xB6, 0x80, 0xBB,
	0x84, 0x3C, 0xD4, 0x94, 0x3A, 0x6D, 0xC2, 0x1B, 0x3D, 0x5F, 0x82, 0xD9, 0x1A,
	0x7F, 0xC6, 0x8D, 0x39, 0xDD, 0x07, 0xAD, 0x7A, 0x40, 0x8D, 0x37, 0x56, 0x12,
	0x8B, 0x51, 0xAF, 0x9D, 0x17, 0xBD, 0xD0, 0x61, 0x58, 0xC8, 0x05, 0x44, 0x9B,
	0xCA, 0xD4, 0xD0, 0xD0, 0xB9, 0x83, 0x75, 0x31, 0x4B, 0x09, 0xEC, 0x52, 0xEB,
	0xE5, 0xE8, 0xAA, 0xF6, 0xDD, 0x79, 0x36, 0x61, 0x17, 0xB1, 0x8A, 0x48, 0x00,
	0x1A, 0x9D, 0xDC, 0x51, 0x9F, 0x34, 0x7A, 0x48, 0x56, 0xC9, 0xF3, 0x6A, 0x81,
	0x9B, 0x47, 0x56, 0x64, 0x00, 0x30, 0x60, 0x04, 0x90, 0x4B, 0xC2, 0x48, 0xE3,
	0xED, 0x62, 0xDF, 0x46, 0xEF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFE, 0x94, 0xEE, 0x00, 0xA9, 0x3B, 0x86, 0x9B, 0xD8, 0xEE, 0x3D, 0x9E, 0x32,
	0x00, 0x00, 0x00, 0x00, 0x92, 0x61, 0x9F, 0x3B, 0x22, 0xB0, 0xB9, 0xB3, 0xB0,
	0x01, 0x01, 0x01, 0x01, 0xF4, 0x83, 0xFC, 0x49, 0xA9, 0xD2, 0x89, 0xE0, 0x17,
	0x74, 0x3E, 0xBD, 0x28, 0x74, 0x5E, 0xF8, 0x6D, 0xD2, 0x43, 0xB7, 0x5A, 0xB5,
	0xE6, 0xA4, 0xC7, 0xA4, 0x46, 0xD3, 0x00, 0x1A, 0x26, 0x0C, 0x65, 0x24, 0xAD,
	0xA7, 0xEA, 0xF4, 0xBD, 0xF6, 0x63, 0x2B, 0xEC, 0x1E, 0xDF, 0x0C, 0xBD, 0x50,
	0xEB, 0x71, 0xD9, 0x86, 0x31, 0x62, 0x5E, 0xE7, 0x4D, 0x8B, 0xD1, 0x11, 0x5B,
	0x26, 0x48, 0x9F, 0x8E, 0xE6, 0x7B, 0xE1, 0x0C, 0xF8, 0xCD, 0xF8, 0x90, 0x1E,
	0x4E, 0x24, 0xFE, 0x90, 0xD3, 0xA2, 0x2D, 0xFC, 0x4F, 0x3A, 0x2F, 0x1B, 0xE2,
	0xB8, 0xBF, 0x11, 0x68, 0x80, 0xCB, 0x26, 0xAD, 0x1C, 0x58, 0x4E, 0x57, 0x30,
	0x00, 0x00, 0x00, 0x86, 0x4A, 0x50, 0x36, 0x90, 0x5C, 0x40, 0xA7, 0x38, 0x92,
	0x03, 0xF0, 0x39, 0x82, 0x40, 0xED, 0x39, 0x22, 0x82, 0x90, 0x67, 0xDF, 0x95,
	0x34, 0x15, 0x8A, 0x0F, 0x25, 0x94, 0x56, 0xFD, 0x38, 0x85, 0x9B, 0x06, 0x22,
}

// randImageWrap advances a table cursor, wrapping modulo the table size.
func randImageWrap(x, advance uint32) uint32 {
	x += advance
	if x < randImageTableSize {
		return x
	}
	return x - randImageTableSize
}

// RandImage builds a filtered image buffer of h rows, each one filter byte
// plus w*bpp payload bytes. The first row always carries FilterNone so the
// buffer is valid without special-casing; remaining rows carry the given
// filter, or cycle through all five when filter == FilterCount.
func RandImage(w, h, bpp, filter, seed uint32) []byte {
	img := make([]byte, (w*bpp+1)*h)
	RandImageInto(img, w, h, bpp, filter, seed)
	return img
}

// RandImageInto fills dst, which must hold (w*bpp+1)*h bytes, with the same
// deterministic content RandImage would allocate. Callers that sweep many
// geometries reuse one pooled buffer instead of allocating per case.
func RandImageInto(dst []byte, w, h, bpp, filter, seed uint32) {
	idx0 := seed % randImageTableSize
	idx1 := (seed * 33) % randImageTableSize

	w *= bpp

	p := uint32(0)
	f := filter

	for y := uint32(0); y < h; y++ {
		switch {
		case y == 0:
			dst[p] = FilterNone
		case filter < FilterCount:
			dst[p] = uint8(filter)
		default:
			if f++; f >= FilterCount {
				f = 0
			}
			dst[p] = uint8(f)
		}
		p++

		x := w
		for {
			dst[p] = kImageTable[idx0]
			p++
			idx0 = randImageWrap(idx0, 1)
			if x--; x == 0 {
				break
			}

			dst[p] = kImageTable[idx1]
			p++
			idx1 = randImageWrap(idx1, 2)
			if x--; x == 0 {
				break
			}
		}
	}
}
