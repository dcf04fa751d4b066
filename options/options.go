package options

// GlitchOptions holds the command line configuration of the goglitch binary.
type GlitchOptions struct {
	Help       *bool
	Mode       *string // live, record or trace
	Duration   *float64
	FPS        *int
	Width      *int
	Height     *int
	BitDepth   *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	Headless   *bool

	InputImage    *string // png, jpeg or webp shown behind the effects
	AnalogShader  *string // WebGL2 fragment source implementing the analog blend
	DigitalShader *string // WebGL2 fragment source implementing the digital blend

	// Initial parameter values, adjustable from the keyboard in live mode.
	ScanLineJitter  *float64
	VerticalJump    *float64
	HorizontalShake *float64
	ColorDrift      *float64
	Intensity       *float64

	IncludeInspection *bool
	MaxIdleFrames     *int
	Seed              *uint64 // 0 seeds the digital effect from the clock

	LFO *bool // sweep the parameters up to their initial values instead of holding them

	// Audio reactivity
	AudioReactive    *bool
	AudioInputDevice *bool   // capture from the default microphone
	AudioInputFile   *string // decode a file with ffmpeg instead
	AudioGain        *float64
}
