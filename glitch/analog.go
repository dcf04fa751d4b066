package glitch

import "fmt"

// AnalogEffectName identifies analog blend invocations.
const AnalogEffectName = "analog"

const (
	verticalJumpSpeed = 11.3
	colorDriftSpeed   = 606.11
)

// AnalogConstants are the values the analog blend consumes.
type AnalogConstants struct {
	ScanLineThreshold    float32
	ScanLineDisplacement float32
	VerticalJump         [2]float32 // amount, accumulated jump time
	HorizontalShake      float32
	ColorDrift           [2]float32 // amount, phase
}

// ComputeAnalogConstants derives the blend constants from clamped parameters,
// the accumulated vertical jump time and the total elapsed time.
func ComputeAnalogConstants(p AnalogParameters, verticalJumpTime, time float64) AnalogConstants {
	return AnalogConstants{
		ScanLineThreshold:    clamp01(1 - p.ScanLineJitter*1.2),
		ScanLineDisplacement: 0.002 + cube(p.ScanLineJitter)*0.05,
		VerticalJump:         [2]float32{p.VerticalJump, float32(verticalJumpTime)},
		HorizontalShake:      p.HorizontalShake * 0.2,
		ColorDrift:           [2]float32{p.ColorDrift * 0.04, float32(time * colorDriftSpeed)},
	}
}

// Bind writes the constants into inv.
func (c AnalogConstants) Bind(inv *Invocation) {
	inv.Vec2s[UniformScanLineJitter] = [2]float32{c.ScanLineDisplacement, c.ScanLineThreshold}
	inv.Vec2s[UniformVerticalJump] = c.VerticalJump
	inv.Floats[UniformHorizontalShake] = c.HorizontalShake
	inv.Vec2s[UniformColorDrift] = c.ColorDrift
}

// Analog is the scan-line jitter, vertical jump, horizontal shake and color
// drift effect.
type Analog struct {
	verticalJumpTime float64
}

func NewAnalog() *Analog { return &Analog{} }

func (a *Analog) Name() string { return AnalogEffectName }

// VerticalJumpTime is the accumulated vertical jump phase.
func (a *Analog) VerticalJumpTime() float64 { return a.verticalJumpTime }

func (a *Analog) Render(f *Frame, p AnalogParameters) error {
	dev := f.Device()
	main, err := f.Acquire(MainFrame)
	if err != nil {
		return err
	}
	if err := dev.Copy(main, f.Source()); err != nil {
		return fmt.Errorf("failed to capture main frame: %w", err)
	}

	jumpTime := a.verticalJumpTime + f.Context().DeltaTime()*float64(p.VerticalJump)*verticalJumpSpeed
	consts := ComputeAnalogConstants(p, jumpTime, f.Context().Time())

	inv := NewInvocation(AnalogEffectName, main, f.Source())
	inv.Textures[UniformMainTex] = main
	consts.Bind(inv)
	if err := dev.Blend(inv); err != nil {
		return fmt.Errorf("blend failed: %w", err)
	}

	a.verticalJumpTime = jumpTime
	return nil
}

func (a *Analog) Close(Device) {}

// NewAnalogPass builds the analog pipeline. A nil device or source yields a
// pass that never runs; see Pass.Err.
func NewAnalogPass(device Device, source AnalogSource, opts Options) *Pass[AnalogParameters] {
	var read func() (AnalogParameters, error)
	if source != nil {
		read = source.AnalogParameters
	}
	return newPass[AnalogParameters](device, NewAnalog(), read, opts)
}
