package dsp

// Paeth filter vector bodies. The predictor is evaluated branchlessly in
// 16-bit lanes: min/max of left and above, a divide-by-3 of their distance
// via unsigned multiply-high, and two sign masks that admit at most one of
// the two candidates over the corner byte. bpp=1 keeps a two-byte rolling
// window in scalars and bpp=2 has no vector body; 3, 4, 6 and 8 iterate
// pixel groups per block with the previous group carried in registers.

// rcp3 is 0xAB<<7: multiply-high by it divides a 16-bit lane by 3 for
// inputs up to 255, folding uDiv3's >>9 into the implicit >>16.
var rcp3 = vecSet1U16(0xAB << 7)

// paethVec is the lane-parallel Paeth predictor: a and b are the two
// interchangeable neighbors (left and above), c the shared corner.
func paethVec(a, b, c Vec128) Vec128 {
	minAB := a.MinI16(b)
	maxAB := b.MaxI16(a)
	divAB := maxAB.Sub16(minAB).MulHiU16(rcp3)

	minAB = minAB.Sub16(c)
	maxAB = maxAB.Sub16(c)

	d := c.Add16(divAB.Add16(minAB).Sra16(15).AndNot(maxAB))
	return d.Add16(divAB.Sub16(maxAB).Sra16(15).AndNot(minAB))
}

// simdPaeth reverses the Paeth filter for one row below the top one.
func simdPaeth(p []byte, po, uo, n, bpp uint32) {
	x, ux := po, uo

	if bpp == 1 {
		// Byte-serial; the only help is keeping the previous column pair
		// (reconstructed left, above-left) in registers across iterations.
		pz := uint32(0)
		uz := uint32(0)

		for i := uint32(0); i < n; i++ {
			u0 := uint32(p[ux+i])
			pz = (uint32(p[x+i]) + paethOpt(pz, u0, uz)) & 0xFF

			p[x+i] = uint8(pz)
			uz = u0
		}
		return
	}

	for i := uint32(0); i < bpp; i++ {
		p[x+i] = sum8(uint32(p[x+i]), uint32(p[ux+i]))
	}

	i := n - bpp

	if i >= 32 {
		j := alignDiff(x+bpp, 16)
		for i -= j; j != 0; j-- {
			p[x+bpp] = sum8(uint32(p[x+bpp]), paethOpt(uint32(p[x]), uint32(p[ux+bpp]), uint32(p[ux])))
			x++
			ux++
		}

		switch bpp {
		case 3:
			x, ux, i = simdPaeth3(p, x, ux, i)
		case 4:
			x, ux, i = simdPaeth4(p, x, ux, i)
		case 6:
			x, ux, i = simdPaeth6(p, x, ux, i)
		case 8:
			x, ux, i = simdPaeth8(p, x, ux, i)
		}
	}

	for ; i != 0; i-- {
		p[x+bpp] = sum8(uint32(p[x+bpp]), paethOpt(uint32(p[x]), uint32(p[ux+bpp]), uint32(p[ux])))
		x++
		ux++
	}
}

// simdPaeth3 resolves three 3-byte groups per 8-byte block, masking the
// inactive lanes of each prediction before folding it into the row.
func simdPaeth3(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	pz := vecU32(leU32(p[x:]) & 0x00FFFFFF).UnpackLo8(zero)
	uz := vecU32(leU32(p[ux:]) & 0x00FFFFFF).UnpackLo8(zero)
	mask := vecSetU32(0xFFFFFFFF, 0x0000FFFF, 0x00000000, 0x00000000)

	// 8 bytes at a time.
	for i >= 8 {
		u0 := vecLoad64(p[ux+3:])
		p0 := vecLoad64(p[x+3:])

		u0 = u0.UnpackLo8(zero)
		p0 = p0.UnpackLo8(zero)
		u1 := u0.BSrl(6)

		uz = paethVec(pz, u0, uz)
		uz = uz.And(mask)
		p0 = p0.Add8(uz)

		uz = paethVec(p0, u1, u0)
		uz = uz.And(mask)
		uz = uz.BSll(6)
		p0 = p0.Add8(uz)

		p1 := p0.BSrl(6)
		u0 = u1.BSrl(6)

		u0 = paethVec(p1, u0, u1)
		u0 = u0.BSll(12)

		p0 = p0.Add8(u0)
		pz = p0.BSrl(10)
		uz = u1.BSrl(4)

		p0 = p0.PackU16(p0)
		p0.Store64(p[x+3:])

		x += 8
		ux += 8
		i -= 8
	}
	return x, ux, i
}

// simdPaeth4 processes four 4-byte groups per 16-byte block, two per
// register half; the 32-bit lane swap brings each group's above-pixels next
// to the previous group's reconstruction.
func simdPaeth4(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	pz := vecU32(leU32(p[x:])).UnpackLo8(zero)
	uz := vecU32(leU32(p[ux:])).UnpackLo8(zero)
	mask := vecSetU32(0xFFFFFFFF, 0xFFFFFFFF, 0x00000000, 0x00000000)

	// 16 bytes at a time.
	for i >= 16 {
		p0 := vecLoad(p[x+4:])
		u0 := vecLoad(p[ux+4:])

		p1 := p0.UnpackHi8(zero)
		p0 = p0.UnpackLo8(zero)
		u1 := u0.UnpackHi8(zero)
		u0 = u0.UnpackLo8(zero)

		uz = paethVec(pz, u0, uz)
		uz = uz.And(mask)
		p0 = p0.Add8(uz)
		uz = u0.Shuf32(shufImm(1, 0, 3, 2))

		u0 = paethVec(p0, uz, u0)
		u0 = u0.BSll(8)
		p0 = p0.Add8(u0)
		pz = p0.BSrl(8)

		uz = paethVec(pz, u1, uz)
		uz = uz.And(mask)
		p1 = p1.Add8(uz)
		uz = u1.Shuf32(shufImm(1, 0, 3, 2))

		u1 = paethVec(p1, uz, u1)
		u1 = u1.BSll(8)
		p1 = p1.Add8(u1)
		pz = p1.BSrl(8)

		p0 = p0.PackU16(p1)
		p0.Store(p[x+4:])

		x += 16
		ux += 16
		i -= 16
	}
	return x, ux, i
}

// simdPaeth6 iterates three 6-byte groups per 16-byte block and rebuilds
// the carry pair for the next block from the high halves of the last two
// groups.
func simdPaeth6(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	pz := vecLoad64(p[x:]).UnpackLo8(zero)
	uz := vecLoad64(p[ux:]).UnpackLo8(zero)

	// 16 bytes at a time.
	for i >= 16 {
		p0 := vecLoad(p[x+6:])
		u0 := vecLoad(p[ux+6:])

		p1 := p0.BSrl(6)
		p0 = p0.UnpackLo8(zero)
		u1 := u0.BSrl(6)
		u0 = u0.UnpackLo8(zero)

		uz = paethVec(pz, u0, uz)
		p0 = p0.Add8(uz)
		p2 := p1.BSrl(6)
		u2 := u1.BSrl(6)
		p1 = p1.UnpackLo8(zero)
		u1 = u1.UnpackLo8(zero)

		u0 = paethVec(p0, u1, u0)
		p1 = p1.Add8(u0)
		p2 = p2.UnpackLo8(zero)
		u2 = u2.UnpackLo8(zero)

		u0 = paethVec(p1, u2, u1)
		p2 = p2.Add8(u0)

		p0 = p0.BSll(4)
		p0 = p0.PackU16(p1)
		p0 = p0.BSll(2)
		p0 = p0.BSrl(4)

		p2 = p2.Shuf32(shufImm(1, 0, 1, 0))
		u2 = u2.Shuf32(shufImm(1, 0, 1, 0))

		pz = p1.UnpackHi32(p2).Shuf32(shufImm(3, 3, 1, 0))
		uz = u1.UnpackHi32(u2).Shuf32(shufImm(3, 3, 1, 0))

		p2 = p2.PackU16(p2)
		p2 = p2.BSll(12)

		p0 = p0.Or(p2)
		p0.Store(p[x+6:])

		x += 16
		ux += 16
		i -= 16
	}
	return x, ux, i
}

// simdPaeth8 is the simplest multi-byte case: the group lag equals the
// register half, so each block is two chained half-register predictions.
func simdPaeth8(p []byte, x, ux, i uint32) (uint32, uint32, uint32) {
	var zero Vec128
	pz := vecLoad64(p[x:]).UnpackLo8(zero)
	uz := vecLoad64(p[ux:]).UnpackLo8(zero)

	// 16 bytes at a time.
	for i >= 16 {
		p0 := vecLoad(p[x+8:])
		u0 := vecLoad(p[ux+8:])

		p1 := p0.UnpackHi8(zero)
		p0 = p0.UnpackLo8(zero)
		u1 := u0.UnpackHi8(zero)
		u0 = u0.UnpackLo8(zero)

		uz = paethVec(pz, u0, uz)
		p0 = p0.Add8(uz)

		pz = paethVec(p0, u1, u0)
		pz = pz.Add8(p1)
		uz = u1

		p0 = p0.PackU16(pz)
		p0.Store(p[x+8:])

		x += 16
		ux += 16
		i -= 16
	}
	return x, ux, i
}
