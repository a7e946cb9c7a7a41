package dsp

// Specialized defilter kernel. The algorithm is identical to DefilterRef.
// Each wrapper below passes a literal bpp into defilterOptT. defilterOptT is
// larger than the gc inliner's budget, so it is not inlined into the
// wrappers: inside it bpp is an ordinary argument and the loops are not
// specialized per bpp. A switch on the runtime bpp value picks the wrapper.

// defilterOptT is the shared body. bpp must be one of the supported values.
func defilterOptT(p []byte, h, bpl, bpp uint32) {
	n := bpl - 1

	off := uint32(0)
	for y := uint32(0); y < h; y++ {
		po := off + 1
		uo := po - bpl
		filter := uint32(p[off])

		switch filter {
		case FilterNone:

		case FilterSub:
			for i := bpp; i < n; i++ {
				p[po+i] = sum8(uint32(p[po+i]), uint32(p[po+i-bpp]))
			}

		case FilterUp:
			if y > 0 {
				for i := uint32(0); i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[uo+i]))
				}
			}

		case FilterAvg:
			if y > 0 {
				for i := uint32(0); i < bpp; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[uo+i])>>1)
				}
				for i := bpp; i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]), avg(uint32(p[po+i-bpp]), uint32(p[uo+i])))
				}
			} else {
				avgFirstRow(p, po, n, bpp)
			}

		case FilterPaeth:
			if y > 0 {
				for i := uint32(0); i < bpp; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[uo+i]))
				}
				for i := bpp; i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]),
						paethRef(uint32(p[po+i-bpp]), uint32(p[uo+i]), uint32(p[uo+i-bpp])))
				}
			} else {
				for i := bpp; i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[po+i-bpp]))
				}
			}
		}

		off += bpl
	}
}

func defilterOpt1(p []byte, h, bpl uint32) { defilterOptT(p, h, bpl, 1) }
func defilterOpt2(p []byte, h, bpl uint32) { defilterOptT(p, h, bpl, 2) }
func defilterOpt3(p []byte, h, bpl uint32) { defilterOptT(p, h, bpl, 3) }
func defilterOpt4(p []byte, h, bpl uint32) { defilterOptT(p, h, bpl, 4) }
func defilterOpt6(p []byte, h, bpl uint32) { defilterOptT(p, h, bpl, 6) }
func defilterOpt8(p []byte, h, bpl uint32) { defilterOptT(p, h, bpl, 8) }

// DefilterOpt reverses the per-scanline filters of p in place using the
// instantiation specialized for bpp. Unsupported bpp values fall back to the
// reference kernel.
func DefilterOpt(p []byte, h, bpp, bpl uint32) {
	switch bpp {
	case 1:
		defilterOpt1(p, h, bpl)
	case 2:
		defilterOpt2(p, h, bpl)
	case 3:
		defilterOpt3(p, h, bpl)
	case 4:
		defilterOpt4(p, h, bpl)
	case 6:
		defilterOpt6(p, h, bpl)
	case 8:
		defilterOpt8(p, h, bpl)
	default:
		DefilterRef(p, h, bpp, bpl)
	}
}
