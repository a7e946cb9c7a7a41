package dsp

import "testing"

func seqVec() Vec128 {
	var v Vec128
	for i := range v {
		v[i] = uint8(i + 1)
	}
	return v
}

func TestVecLoadStore(t *testing.T) {
	src := make([]byte, 16)
	for i := range src {
		src[i] = uint8(0xA0 + i)
	}
	v := vecLoad(src)
	dst := make([]byte, 16)
	v.Store(dst)
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, dst[i], src[i])
		}
	}

	v = vecLoad64(src)
	for i := 0; i < 8; i++ {
		if v[i] != src[i] {
			t.Fatalf("low byte %d: got %#x, want %#x", i, v[i], src[i])
		}
	}
	for i := 8; i < 16; i++ {
		if v[i] != 0 {
			t.Fatalf("high byte %d not zeroed: %#x", i, v[i])
		}
	}
}

func TestVecU32Lanes(t *testing.T) {
	v := vecU32(0x04030201)
	want := Vec128{1, 2, 3, 4}
	if v != want {
		t.Fatalf("vecU32 = %v, want %v", v, want)
	}
	if v.U32() != 0x04030201 {
		t.Fatalf("U32 = %#x", v.U32())
	}
}

func TestVecAdd8Wraps(t *testing.T) {
	a := vecSet1U16(0xFFFF) // all bytes 0xFF
	b := seqVec()
	r := a.Add8(b)
	for i := range r {
		if want := uint8(i); r[i] != want {
			t.Fatalf("byte %d: got %d, want %d", i, r[i], want)
		}
	}
}

func TestVecByteShifts(t *testing.T) {
	v := seqVec()

	l := v.BSll(3)
	for i := 0; i < 3; i++ {
		if l[i] != 0 {
			t.Fatalf("BSll low byte %d = %d", i, l[i])
		}
	}
	for i := 3; i < 16; i++ {
		if l[i] != v[i-3] {
			t.Fatalf("BSll byte %d = %d, want %d", i, l[i], v[i-3])
		}
	}

	r := v.BSrl(5)
	for i := 0; i < 11; i++ {
		if r[i] != v[i+5] {
			t.Fatalf("BSrl byte %d = %d, want %d", i, r[i], v[i+5])
		}
	}
	for i := 11; i < 16; i++ {
		if r[i] != 0 {
			t.Fatalf("BSrl high byte %d = %d", i, r[i])
		}
	}
}

func TestVecUnpack(t *testing.T) {
	var zero Vec128
	v := seqVec()

	lo := v.UnpackLo8(zero)
	for i := 0; i < 8; i++ {
		if lo.word(i) != uint16(v[i]) {
			t.Fatalf("UnpackLo8 word %d = %d, want %d", i, lo.word(i), v[i])
		}
	}

	hi := v.UnpackHi8(zero)
	for i := 0; i < 8; i++ {
		if hi.word(i) != uint16(v[8+i]) {
			t.Fatalf("UnpackHi8 word %d = %d, want %d", i, hi.word(i), v[8+i])
		}
	}

	h16 := v.UnpackHi16(v)
	for i := 0; i < 4; i++ {
		if h16.word(2*i) != v.word(4+i) || h16.word(2*i+1) != v.word(4+i) {
			t.Fatalf("UnpackHi16 pair %d = %d/%d, want %d", i, h16.word(2*i), h16.word(2*i+1), v.word(4+i))
		}
	}

	h32 := v.UnpackHi32(v)
	if h32.dword(0) != v.dword(2) || h32.dword(1) != v.dword(2) ||
		h32.dword(2) != v.dword(3) || h32.dword(3) != v.dword(3) {
		t.Fatalf("UnpackHi32 = %v", h32)
	}
}

func TestVecPackU16Saturates(t *testing.T) {
	var a, b Vec128
	a.setWord(0, 0x0012)
	a.setWord(1, 0x0100) // saturates to 0xFF
	a.setWord(2, 0x7FFF) // saturates to 0xFF
	a.setWord(3, 0x8000) // negative, saturates to 0
	b.setWord(0, 0x00FF)

	r := a.PackU16(b)
	want := [8]uint8{0x12, 0xFF, 0xFF, 0x00, 0, 0, 0, 0}
	for i, w := range want {
		if r[i] != w {
			t.Fatalf("low byte %d = %#x, want %#x", i, r[i], w)
		}
	}
	if r[8] != 0xFF {
		t.Fatalf("high byte 0 = %#x, want 0xFF", r[8])
	}
}

func TestVecShuffles(t *testing.T) {
	v := seqVec()

	s := v.Shuf32(shufImm(0, 1, 2, 3)) // reverse dwords
	for i := 0; i < 4; i++ {
		if s.dword(i) != v.dword(3-i) {
			t.Fatalf("Shuf32 dword %d = %#x, want %#x", i, s.dword(i), v.dword(3-i))
		}
	}

	lo := v.ShufLo16(shufImm(0, 1, 2, 3))
	for i := 0; i < 4; i++ {
		if lo.word(i) != v.word(3-i) {
			t.Fatalf("ShufLo16 word %d = %#x, want %#x", i, lo.word(i), v.word(3-i))
		}
	}
	for i := 4; i < 8; i++ {
		if lo.word(i) != v.word(i) {
			t.Fatalf("ShufLo16 copied word %d changed", i)
		}
	}

	hi := v.ShufHi16(shufImm(0, 1, 2, 3))
	for i := 0; i < 4; i++ {
		if hi.word(4+i) != v.word(4+3-i) {
			t.Fatalf("ShufHi16 word %d = %#x, want %#x", 4+i, hi.word(4+i), v.word(4+3-i))
		}
	}
	for i := 0; i < 4; i++ {
		if hi.word(i) != v.word(i) {
			t.Fatalf("ShufHi16 copied word %d changed", i)
		}
	}
}

func TestVecWordArithmetic(t *testing.T) {
	var a, b Vec128
	a.setWord(0, 0x8000) // -32768
	b.setWord(0, 0x7FFF) // 32767
	a.setWord(1, 100)
	b.setWord(1, 200)

	if m := a.MinI16(b); int16(m.word(0)) != -32768 || m.word(1) != 100 {
		t.Fatalf("MinI16 = %d/%d", int16(m.word(0)), m.word(1))
	}
	if m := a.MaxI16(b); int16(m.word(0)) != 32767 || m.word(1) != 200 {
		t.Fatalf("MaxI16 = %d/%d", int16(m.word(0)), m.word(1))
	}

	var c Vec128
	c.setWord(0, 0xFFFF)
	if s := c.Sra16(15); s.word(0) != 0xFFFF {
		t.Fatalf("Sra16 sign extension failed: %#x", s.word(0))
	}
	if s := c.Srl16(15); s.word(0) != 1 {
		t.Fatalf("Srl16 = %#x", s.word(0))
	}

	// mulhi(x, 0xAB<<7) == x/3 for byte-range x: the vector uDiv3 identity.
	for x := uint16(0); x <= 255; x++ {
		var v Vec128
		v.setWord(0, x)
		if got := v.MulHiU16(rcp3).word(0); got != x/3 {
			t.Fatalf("MulHiU16 div3: x=%d got %d", x, got)
		}
	}
}

func TestVecQwordShifts(t *testing.T) {
	v := seqVec()
	s := v.Sll64(16).Srl64(16)
	for i := 0; i < 6; i++ {
		if s[i] != v[i] || s[8+i] != v[8+i] {
			t.Fatalf("byte %d changed", i)
		}
	}
	if s[6] != 0 || s[7] != 0 || s[14] != 0 || s[15] != 0 {
		t.Fatalf("top qword bytes not cleared: %v", s)
	}
}

func TestVecMulEvenU32(t *testing.T) {
	a := vecSetU32(0x01000001, 7, 0x01000001, 9)
	b := vecSetU32(0x00123456, 11, 0x00ABCDEF, 13)
	r := b.MulEvenU32(a)
	if got := r.qword(0); got != uint64(0x00123456)*0x01000001 {
		t.Fatalf("qword 0 = %#x", got)
	}
	if got := r.qword(1); got != uint64(0x00ABCDEF)*0x01000001 {
		t.Fatalf("qword 1 = %#x", got)
	}
}

func TestVecLogic(t *testing.T) {
	a := seqVec()
	m := vecSet1U16(0x00FF)
	r := m.AndNot(a) // clears the even bytes, keeps the odd ones
	for i := 0; i < 16; i += 2 {
		if r[i] != 0 {
			t.Fatalf("AndNot kept masked byte %d", i)
		}
		if r[i+1] != a[i+1] {
			t.Fatalf("AndNot cleared unmasked byte %d", i+1)
		}
	}

	if x := a.And(m).Or(m.AndNot(a)); x != a {
		t.Fatalf("And/Or decomposition = %v, want %v", x, a)
	}
}
