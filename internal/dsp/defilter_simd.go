package dsp

// Vector defilter kernel. Each filter body processes 8, 16 or 64 payload
// bytes per iteration through Vec128, flanked by a scalar head that brings the
// write cursor to a 16-byte buffer offset and a scalar tail that never reads
// past the row. Offsets stand in for the original pointer pair: x walks the
// current row payload and ux the previous row payload.
//
// The head is sized from the byte index within the buffer, so vector stores
// always land on 16-byte offsets and head sizes are deterministic; the
// output does not depend on where the head stops.

// DefilterSIMD reverses the per-scanline filters of p in place using the
// 128-bit vector bodies. Unsupported bpp values fall back to the reference
// kernel.
func DefilterSIMD(p []byte, h, bpp, bpl uint32) {
	switch bpp {
	case 1, 2, 3, 4, 6, 8:
	default:
		DefilterRef(p, h, bpp, bpl)
		return
	}

	n := bpl - 1

	off := uint32(0)
	for y := uint32(0); y < h; y++ {
		po := off + 1
		uo := po - bpl
		filter := uint32(p[off])

		if y == 0 {
			// The implicit zero row above the image degrades Up to a no-op,
			// Avg to half-Sub and Paeth to Sub.
			switch filter {
			case FilterUp:
				filter = FilterNone
			case FilterAvg:
				avgFirstRow(p, po, n, bpp)
				filter = FilterNone
			case FilterPaeth:
				filter = FilterSub
			}
		}

		switch filter {
		case FilterSub:
			simdSub(p, po, n, bpp)
		case FilterUp:
			simdUp(p, po, uo, n)
		case FilterAvg:
			simdAvg(p, po, uo, n, bpp)
		case FilterPaeth:
			simdPaeth(p, po, uo, n, bpp)
		}

		off += bpl
	}
}

// sllAdd performs one parallel prefix-sum step: add the register to itself
// shifted up by n byte lanes.
func sllAdd(v Vec128, n int) Vec128 {
	return v.Add8(v.BSll(n))
}

// sllAdd2 runs the same prefix-sum step on two registers, keeping the two
// dependency chains interleaved.
func sllAdd2(a, b Vec128, n int) (Vec128, Vec128) {
	return a.Add8(a.BSll(n)), b.Add8(b.BSll(n))
}

// simdSub reverses the Sub filter for one row. The reconstructed window is
// the mod-256 prefix sum of the raw window plus the running carry of the
// previous window, so each 16-byte block is rebuilt with log-step shifted
// adds; the top bpp bytes of a finished block seed the next one.
func simdSub(p []byte, po, n, bpp uint32) {
	i := n - bpp
	x := po

	if i >= 32 {
		j := alignDiff(x+bpp, 16)
		for i -= j; j != 0; j-- {
			p[x+bpp] = sum8(uint32(p[x+bpp]), uint32(p[x]))
			x++
		}

		switch bpp {
		case 1:
			x, i = simdSub1(p, x, i)
		case 2:
			x, i = simdSub2(p, x, i)
		case 3:
			x, i = simdSub3(p, x, i)
		case 4:
			x, i = simdSub4(p, x, i)
		case 6:
			x, i = simdSub6(p, x, i)
		case 8:
			x, i = simdSub8(p, x, i)
		}
	}

	for ; i != 0; i-- {
		p[x+bpp] = sum8(uint32(p[x+bpp]), uint32(p[x]))
		x++
	}
}

func simdSub1(p []byte, x, i uint32) (uint32, uint32) {
	// Seed the carry with the last reconstructed byte.
	p0 := vecU32(uint32(p[x]))

	// 64 bytes at a time: two interleaved prefix-sum pairs.
	for i >= 64 {
		p0 = p0.Add8(vecLoad(p[x+1:]))
		p1 := vecLoad(p[x+17:])
		p2 := vecLoad(p[x+33:])
		p3 := vecLoad(p[x+49:])

		p0, p2 = sllAdd2(p0, p2, 1)
		p0, p2 = sllAdd2(p0, p2, 2)
		p0, p2 = sllAdd2(p0, p2, 4)
		p0, p2 = sllAdd2(p0, p2, 8)
		p0.Store(p[x+1:])

		p0 = p0.BSrl(15)
		t2 := p2.BSrl(15)
		p1 = p1.Add8(p0)
		p3 = p3.Add8(t2)

		p1, p3 = sllAdd2(p1, p3, 1)
		p1, p3 = sllAdd2(p1, p3, 2)
		p1, p3 = sllAdd2(p1, p3, 4)
		p1, p3 = sllAdd2(p1, p3, 8)
		p1.Store(p[x+17:])

		// Splat the top byte of the finished second block.
		p1 = p1.UnpackHi8(p1)
		p1 = p1.UnpackHi16(p1)
		p1 = p1.Shuf32(shufImm(3, 3, 3, 3))

		p2 = p2.Add8(p1)
		p3 = p3.Add8(p1)

		p2.Store(p[x+33:])
		p3.Store(p[x+49:])
		p0 = p3.BSrl(15)

		x += 64
		i -= 64
	}

	// 16 bytes at a time.
	for i >= 16 {
		p0 = p0.Add8(vecLoad(p[x+1:]))

		p0 = sllAdd(p0, 1)
		p0 = sllAdd(p0, 2)
		p0 = sllAdd(p0, 4)
		p0 = sllAdd(p0, 8)

		p0.Store(p[x+1:])
		p0 = p0.BSrl(15)

		x += 16
		i -= 16
	}
	return x, i
}

func simdSub2(p []byte, x, i uint32) (uint32, uint32) {
	p0 := vecU32(uint32(p[x]) | uint32(p[x+1])<<8)

	for i >= 64 {
		p0 = p0.Add8(vecLoad(p[x+2:]))
		p1 := vecLoad(p[x+18:])
		p2 := vecLoad(p[x+34:])
		p3 := vecLoad(p[x+50:])

		p0, p2 = sllAdd2(p0, p2, 2)
		p0, p2 = sllAdd2(p0, p2, 4)
		p0, p2 = sllAdd2(p0, p2, 8)
		p0.Store(p[x+2:])

		p0 = p0.BSrl(14)
		t2 := p2.BSrl(14)
		p1 = p1.Add8(p0)
		p3 = p3.Add8(t2)

		p1, p3 = sllAdd2(p1, p3, 2)
		p1, p3 = sllAdd2(p1, p3, 4)
		p1, p3 = sllAdd2(p1, p3, 8)
		p1.Store(p[x+18:])

		// Splat the top word of the finished second block.
		p1 = p1.UnpackHi16(p1)
		p1 = p1.Shuf32(shufImm(3, 3, 3, 3))

		p2 = p2.Add8(p1)
		p3 = p3.Add8(p1)

		p2.Store(p[x+34:])
		p3.Store(p[x+50:])
		p0 = p3.BSrl(14)

		x += 64
		i -= 64
	}

	for i >= 16 {
		p0 = p0.Add8(vecLoad(p[x+2:]))

		p0 = sllAdd(p0, 2)
		p0 = sllAdd(p0, 4)
		p0 = sllAdd(p0, 8)

		p0.Store(p[x+2:])
		p0 = p0.BSrl(14)

		x += 16
		i -= 16
	}
	return x, i
}

func simdSub3(p []byte, x, i uint32) (uint32, uint32) {
	// 0x01000001 replicates a 24-bit value into bytes 0-2 and 3-5 when
	// multiplied, which is the first half of the 3-byte splat below.
	ext3b := vecSetU32(0x01000001, 0x01000001, 0x01000001, 0x01000001)

	p0 := vecU32(leU32(p[x:]) & 0x00FFFFFF)

	for i >= 64 {
		p0 = p0.Add8(vecLoad(p[x+3:]))
		p1 := vecLoad(p[x+19:])
		p2 := vecLoad(p[x+35:])

		p0, p2 = sllAdd2(p0, p2, 3)
		p0, p2 = sllAdd2(p0, p2, 6)
		p0, p2 = sllAdd2(p0, p2, 12)

		p3 := vecLoad(p[x+51:])
		t0 := p0.BSrl(13)
		t2 := p2.BSrl(13)

		p1 = p1.Add8(t0)
		p3 = p3.Add8(t2)

		p1, p3 = sllAdd2(p1, p3, 3)
		p1, p3 = sllAdd2(p1, p3, 6)
		p1, p3 = sllAdd2(p1, p3, 12)
		p0.Store(p[x+3:])

		// Splat the top 3 bytes of the finished second block across the
		// register: replicate them into six bytes with the even-lane
		// multiply, then rotate the word lanes into a repeating pattern.
		p0 = p1.Shuf32(shufImm(3, 3, 3, 3))
		p0 = p0.Srl32(8)
		p0 = p0.MulEvenU32(ext3b)

		p0 = p0.ShufLo16(shufImm(0, 2, 1, 0))
		p0 = p0.ShufHi16(shufImm(1, 0, 2, 1))

		p1.Store(p[x+19:])
		p2 = p2.Add8(p0)
		p0 = p0.Shuf32(shufImm(1, 3, 2, 1))

		p2.Store(p[x+35:])
		p0 = p0.Add8(p3)

		p0.Store(p[x+51:])
		p0 = p0.BSrl(13)

		x += 64
		i -= 64
	}

	for i >= 16 {
		p0 = p0.Add8(vecLoad(p[x+3:]))

		p0 = sllAdd(p0, 3)
		p0 = sllAdd(p0, 6)
		p0 = sllAdd(p0, 12)

		p0.Store(p[x+3:])
		p0 = p0.BSrl(13)

		x += 16
		i -= 16
	}
	return x, i
}

func simdSub4(p []byte, x, i uint32) (uint32, uint32) {
	p0 := vecU32(leU32(p[x:]))

	for i >= 64 {
		p0 = p0.Add8(vecLoad(p[x+4:]))
		p1 := vecLoad(p[x+20:])
		p2 := vecLoad(p[x+36:])
		p3 := vecLoad(p[x+52:])

		p0, p2 = sllAdd2(p0, p2, 4)
		p0, p2 = sllAdd2(p0, p2, 8)
		p0.Store(p[x+4:])

		p0 = p0.BSrl(12)
		t2 := p2.BSrl(12)

		p1 = p1.Add8(p0)
		p3 = p3.Add8(t2)

		p1, p3 = sllAdd2(p1, p3, 4)
		p1, p3 = sllAdd2(p1, p3, 8)

		p0 = p1.Shuf32(shufImm(3, 3, 3, 3))
		p1.Store(p[x+20:])

		p2 = p2.Add8(p0)
		p0 = p0.Add8(p3)

		p2.Store(p[x+36:])
		p0.Store(p[x+52:])
		p0 = p0.BSrl(12)

		x += 64
		i -= 64
	}

	for i >= 16 {
		p0 = p0.Add8(vecLoad(p[x+4:]))

		p0 = sllAdd(p0, 4)
		p0 = sllAdd(p0, 8)
		p0.Store(p[x+4:])
		p0 = p0.BSrl(12)

		x += 16
		i -= 16
	}
	return x, i
}

func simdSub6(p []byte, x, i uint32) (uint32, uint32) {
	p0 := vecLoad64(p[x:])
	p0 = p0.Sll64(16)
	p0 = p0.Srl64(16)

	for i >= 64 {
		p0 = p0.Add8(vecLoad(p[x+6:]))
		p1 := vecLoad(p[x+22:])
		p2 := vecLoad(p[x+38:])

		p0, p2 = sllAdd2(p0, p2, 6)
		p0, p2 = sllAdd2(p0, p2, 12)

		p3 := vecLoad(p[x+54:])
		p0.Store(p[x+6:])

		p0 = p0.BSrl(10)
		t1 := p2.BSrl(10)

		p1 = p1.Add8(p0)
		p3 = p3.Add8(t1)

		p1, p3 = sllAdd2(p1, p3, 6)
		p1, p3 = sllAdd2(p1, p3, 12)

		// Replicate the top 6 bytes of the finished second block into a
		// 6-byte-periodic pattern via word-lane rotations.
		p0 = p1.Shuf32(shufImm(3, 2, 3, 2))
		p0 = p0.ShufLo16(shufImm(1, 3, 2, 1))
		p0 = p0.ShufHi16(shufImm(2, 1, 3, 2))

		p1.Store(p[x+22:])
		p2 = p2.Add8(p0)
		p0 = p0.Shuf32(shufImm(1, 3, 2, 1))

		p2.Store(p[x+38:])
		p0 = p0.Add8(p3)

		p0.Store(p[x+54:])
		p0 = p0.BSrl(10)

		x += 64
		i -= 64
	}

	for i >= 16 {
		p0 = p0.Add8(vecLoad(p[x+6:]))

		p0 = sllAdd(p0, 6)
		p0 = sllAdd(p0, 12)

		p0.Store(p[x+6:])
		p0 = p0.BSrl(10)

		x += 16
		i -= 16
	}
	return x, i
}

func simdSub8(p []byte, x, i uint32) (uint32, uint32) {
	p0 := vecLoad64(p[x:])

	for i >= 64 {
		p0 = p0.Add8(vecLoad(p[x+8:]))
		p1 := vecLoad(p[x+24:])
		p2 := vecLoad(p[x+40:])
		p3 := vecLoad(p[x+56:])

		p0, p2 = sllAdd2(p0, p2, 8)
		p0.Store(p[x+8:])

		p0 = p0.BSrl(8)
		t2 := p2.Shuf32(shufImm(3, 2, 3, 2))
		p1 = p1.Add8(p0)

		p1, p3 = sllAdd2(p1, p3, 8)
		p0 = p1.Shuf32(shufImm(3, 2, 3, 2))
		p3 = p3.Add8(t2)
		p1.Store(p[x+24:])

		p2 = p2.Add8(p0)
		p0 = p0.Add8(p3)

		p2.Store(p[x+40:])
		p0.Store(p[x+56:])
		p0 = p0.BSrl(8)

		x += 64
		i -= 64
	}

	for i >= 16 {
		p0 = p0.Add8(vecLoad(p[x+8:]))
		p0 = sllAdd(p0, 8)

		p0.Store(p[x+8:])
		p0 = p0.BSrl(8)

		x += 16
		i -= 16
	}
	return x, i
}

// simdUp reverses the Up filter for one row. There is no intra-row
// dependency, so this is a straight vector add of the previous row.
func simdUp(p []byte, po, uo, n uint32) {
	i := n
	x, ux := po, uo

	if i >= 24 {
		j := alignDiff(x, 16)
		for i -= j; j != 0; j-- {
			p[x] = sum8(uint32(p[x]), uint32(p[ux]))
			x++
			ux++
		}

		// 64 bytes at a time.
		for i >= 64 {
			u0 := vecLoad(p[ux:])
			u1 := vecLoad(p[ux+16:])

			p0 := vecLoad(p[x:])
			p1 := vecLoad(p[x+16:])

			u2 := vecLoad(p[ux+32:])
			u3 := vecLoad(p[ux+48:])

			p0 = p0.Add8(u0)
			p1 = p1.Add8(u1)

			p2 := vecLoad(p[x+32:])
			p3 := vecLoad(p[x+48:])

			p2 = p2.Add8(u2)
			p3 = p3.Add8(u3)

			p0.Store(p[x:])
			p1.Store(p[x+16:])
			p2.Store(p[x+32:])
			p3.Store(p[x+48:])

			x += 64
			ux += 64
			i -= 64
		}

		// 8 bytes at a time.
		for i >= 8 {
			u0 := vecLoad64(p[ux:])
			p0 := vecLoad64(p[x:])

			p0 = p0.Add8(u0)
			p0.Store64(p[x:])

			x += 8
			ux += 8
			i -= 8
		}
	}

	for ; i != 0; i-- {
		p[x] = sum8(uint32(p[x]), uint32(p[ux]))
		x++
		ux++
	}
}

// leU32 assembles a 32-bit value from four bytes, low byte first. Vector
// seeds are defined in lane order, so the load is explicit rather than a
// host-endian word read.
func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
