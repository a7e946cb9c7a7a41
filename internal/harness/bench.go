package harness

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/deepteams/depng/internal/dsp"
)

const (
	benchWidth    = 256
	benchHeight   = 256
	benchQuantity = 1000
)

// Bench times fn over a 256x256 image, benchQuantity runs per (filter, bpp)
// combination, and reports per-combination, per-filter and total wall time.
// The None filter is skipped: it reconstructs nothing and only measures the
// row loop.
func Bench(log zerolog.Logger, name string, fn dsp.FilterFunc) {
	var total time.Duration

	for filter := uint32(1); filter <= dsp.FilterCount; filter++ {
		var filterTime time.Duration

		for _, bpp := range dsp.SupportedBpp {
			bpl := uint32(benchWidth)*bpp + 1
			img := dsp.RandImage(benchWidth, benchHeight, bpp, filter, 0)

			start := time.Now()
			for i := 0; i < benchQuantity; i++ {
				fn(img, benchHeight, bpp, bpl)
			}
			elapsed := time.Since(start)

			filterTime += elapsed
			total += elapsed

			log.Info().Str("impl", name).
				Str("filter", dsp.FilterNames[filter]).Uint32("bpp", bpp).
				Dur("elapsed", elapsed).
				Msg("bench")
		}

		log.Info().Str("impl", name).
			Str("filter", dsp.FilterNames[filter]).
			Dur("elapsed", filterTime).
			Msg("bench filter total")
	}

	log.Info().Str("impl", name).Dur("elapsed", total).Msg("bench total")
}
