package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(2000),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d\n", cfg.SampleRate, cfg.BlockSize)

	// Output:
	// sampleRate=44100 blockSize=2048
}

func ExampleCents() {
	fmt.Printf("%.1f\n", core.Cents(445, 440))

	// Output:
	// 19.6
}
