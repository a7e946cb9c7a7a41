package dsp

// Avg filter vector bodies. Avg keeps an intra-row dependency through the
// floor average of the reconstructed left pixel, so each bpp gets its own
// strategy: a widened semi-scalar walk for bpp=1, two prefix-add stages in
// 16-bit lanes for bpp=4, serial triads for bpp=6 and two half-register
// chains for bpp=8. bpp=2 and bpp=3 have lags too short to amortize a
// vector body and stay on the scalar loop.
//
// The floor semantics rule out rounded hardware byte averages; all lane math
// happens in 16-bit precision and is masked back to byte range.

// simdAvg reverses the Avg filter for one row below the top one.
func simdAvg(p []byte, po, uo, n, bpp uint32) {
	x, ux := po, uo

	for i := uint32(0); i < bpp; i++ {
		p[x+i] = sum8(uint32(p[x+i]), uint32(p[ux+i])>>1)
	}

	i := n - bpp
	ux += bpp

	if i >= 32 {
		j := alignDiff(x+bpp, 16)
		for i -= j; j != 0; j-- {
			p[x+bpp] = sum8(uint32(p[x+bpp]), avg(uint32(p[x]), uint32(p[ux])))
			x++
			ux++
		}

		switch bpp {
		case 1:
			x, ux, i = simdAvg1(p, x, ux, i)
		case 4:
			x, ux, i = simdAvg4(p, x, ux, i)
		case 6:
			x, ux, i = simdAvg6(p, x, ux, i)
		case 8:
			x, ux, i = simdAvg8(p, x, ux, i)
		}
	}

	for ; i != 0; i-- {
		p[x+bpp] = sum8(uint32(p[x+bpp]), avg(uint32(p[x]), uint32(p[ux])))
		x++
		ux++
	}
}

// simdAvg1 walks the byte-serial chain with vector fetches: 8 bytes of the
// row and the row above are widened once and pre-doubled, then the eight
// lanes are consumed by scalar shifts. The chain itself cannot be cut
// without changing the output, so the win is purely in the loads.
func simdAvg1(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	t0 := uint32(p[x])
	var t1 uint32

	for i >= 8 {
		p0 := vecLoad64(p[x+1:])
		u0 := vecLoad64(p[ux:])

		p0 = p0.UnpackLo8(zero)
		u0 = u0.UnpackLo8(zero)

		p0 = p0.Sll16(1)
		p0 = p0.Add16(u0)

		t1 = p0.U32()
		p0 = p0.BSrl(4)
		t0 = ((t0 + t1) >> 1) & 0xFF
		t1 >>= 16
		p[x+1] = uint8(t0)

		t0 = ((t0 + t1) >> 1) & 0xFF
		t1 = p0.U32()
		p0 = p0.BSrl(4)
		p[x+2] = uint8(t0)

		t0 = ((t0 + t1) >> 1) & 0xFF
		t1 >>= 16
		p[x+3] = uint8(t0)

		t0 = ((t0 + t1) >> 1) & 0xFF
		t1 = p0.U32()
		p0 = p0.BSrl(4)
		p[x+4] = uint8(t0)

		t0 = ((t0 + t1) >> 1) & 0xFF
		t1 >>= 16
		p[x+5] = uint8(t0)

		t0 = ((t0 + t1) >> 1) & 0xFF
		t1 = p0.U32()
		p[x+6] = uint8(t0)

		t0 = ((t0 + t1) >> 1) & 0xFF
		t1 >>= 16
		p[x+7] = uint8(t0)

		t0 = ((t0 + t1) >> 1) & 0xFF
		p[x+8] = uint8(t0)

		x += 8
		ux += 8
		i -= 8
	}
	return x, ux, i
}

// simdAvg4 widens 16 bytes to words, forms 2*p + u + carry in 9-bit
// precision and runs two prefix-add stages across the 4-byte groups of each
// half, dropping back to byte range with >>2 after each stage. The last
// word group of the block carries into the next iteration.
func simdAvg4(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	m00FF := vecSet1U16(0x00FF)
	m01FF := vecSet1U16(0x01FF)

	t1 := vecU32(leU32(p[x:])).UnpackLo8(zero)

	for i >= 16 {
		p0 := vecLoad(p[x+4:])
		u0 := vecLoad(p[ux:])

		p1 := p0
		p0 = p0.UnpackLo8(zero)

		u1 := u0
		p0 = p0.Sll16(1)

		u0 = u0.UnpackLo8(zero)
		p0 = p0.Add16(t1)

		p1 = p1.UnpackHi8(zero)
		p0 = p0.Add16(u0)
		p0 = p0.And(m01FF)

		u1 = u1.UnpackHi8(zero)
		t1 = p0.BSll(8)
		p0 = p0.Sll16(1)

		p1 = p1.Sll16(1)
		p0 = p0.Add16(t1)
		p0 = p0.Srl16(2)

		p1 = p1.Add16(u1)
		p0 = p0.And(m00FF)
		t1 = p0.BSrl(8)

		p1 = p1.Add16(t1)
		p1 = p1.And(m01FF)

		t1 = p1.BSll(8)
		p1 = p1.Sll16(1)

		t1 = t1.Add16(p1)
		t1 = t1.Srl16(2)
		t1 = t1.And(m00FF)

		p0 = p0.PackU16(t1)
		t1 = t1.BSrl(8)
		p0.Store(p[x+4:])

		x += 16
		ux += 16
		i -= 16
	}
	return x, ux, i
}

// simdAvg6 widens three 6-byte triads per block and resolves them serially:
// each triad averages the previous reconstructed triad with the row above,
// then the three results are repacked and spliced into 16 output bytes.
func simdAvg6(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	t1 := vecLoad64(p[x:])

	for i >= 16 {
		u0 := vecLoad(p[ux:])
		t1 = t1.UnpackLo8(zero)
		p0 := vecLoad(p[x+6:])

		p1 := p0.BSrl(6)
		u1 := u0.BSrl(6)

		p2 := p0.BSrl(12)
		u2 := u0.BSrl(12)

		p0 = p0.UnpackLo8(zero)
		u0 = u0.UnpackLo8(zero)

		p1 = p1.UnpackLo8(zero)
		u1 = u1.UnpackLo8(zero)

		p2 = p2.UnpackLo8(zero)
		u2 = u2.UnpackLo8(zero)

		u0 = u0.Add16(t1)
		u0 = u0.Srl16(1)
		p0 = p0.Add8(u0)

		u1 = u1.Add16(p0)
		u1 = u1.Srl16(1)
		p1 = p1.Add8(u1)

		u2 = u2.Add16(p1)
		u2 = u2.Srl16(1)
		p2 = p2.Add8(u2)

		p0 = p0.BSll(4)
		p0 = p0.PackU16(p1)
		p0 = p0.BSll(2)
		p0 = p0.BSrl(4)

		p2 = p2.PackU16(p2)
		p2 = p2.BSll(12)
		p0 = p0.Or(p2)

		p0.Store(p[x+6:])
		t1 = p0.BSrl(10)

		x += 16
		ux += 16
		i -= 16
	}
	return x, ux, i
}

// simdAvg8 splits each 16-byte block into two 8-byte chains: the low half
// finishes first and feeds the high half as its carry.
func simdAvg8(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	t1 := vecLoad64(p[x:]).UnpackLo8(zero)

	for i >= 16 {
		u0 := vecLoad(p[ux:])
		p0 := vecLoad(p[x+8:])

		u1 := u0
		p1 := p0
		u0 = u0.UnpackLo8(zero)
		p0 = p0.UnpackLo8(zero)

		u0 = u0.Add16(t1)
		p1 = p1.UnpackHi8(zero)
		u0 = u0.Srl16(1)
		u1 = u1.UnpackHi8(zero)

		p0 = p0.Add8(u0)
		u1 = u1.Add16(p0)
		u1 = u1.Srl16(1)
		p1 = p1.Add8(u1)

		p0 = p0.PackU16(p1)
		t1 = p1
		p0.Store(p[x+8:])

		x += 16
		ux += 16
		i -= 16
	}
	return x, ux, i
}
