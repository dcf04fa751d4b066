package glitch

import (
	"errors"
	"reflect"
	"testing"
)

func TestDigitalTrashCadence(t *testing.T) {
	dev := &fakeDevice{}
	pass := NewDigitalPass(dev, &digitalValues{params: DigitalParameters{Intensity: 0.5}}, constStream(0.1), DefaultOptions())
	frame := newFakeFrame(32, 32)

	var refresh1, refresh2 []int
	for i := 0; i < 100; i++ {
		before1, before2 := 0, 0
		if i > 0 {
			before1, before2 = dev.copiesInto(dev.allocated[1]), dev.copiesInto(dev.allocated[2])
		}
		if err := pass.Execute(frame); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if dev.copiesInto(dev.allocated[1]) > before1 {
			refresh1 = append(refresh1, i)
		}
		if dev.copiesInto(dev.allocated[2]) > before2 {
			refresh2 = append(refresh2, i)
		}
	}
	if want := []int{0, 13, 26, 39, 52, 65, 78, 91}; !reflect.DeepEqual(refresh1, want) {
		t.Errorf("trash1 refreshed at %v, want %v", refresh1, want)
	}
	if want := []int{0, 73}; !reflect.DeepEqual(refresh2, want) {
		t.Errorf("trash2 refreshed at %v, want %v", refresh2, want)
	}
	if got := dev.copiesInto(dev.allocated[0]); got != 100 {
		t.Errorf("main frame captured %d times, want 100", got)
	}
	if got := pass.Effect().(*Digital).FrameCounter(); got != 100 {
		t.Errorf("FrameCounter = %d, want 100", got)
	}
	// main, two trash frames and the noise texture
	if len(dev.allocated) != 4 {
		t.Errorf("allocated %d textures, want 4", len(dev.allocated))
	}
}

func TestDigitalInvocation(t *testing.T) {
	for _, tt := range []struct {
		sample float32
		trash  int
	}{
		{0.95, 1},
		{0.1, 2},
	} {
		dev := &fakeDevice{}
		pass := NewDigitalPass(dev, &digitalValues{params: DigitalParameters{Intensity: 0.75}}, constStream(tt.sample), DefaultOptions())
		frame := newFakeFrame(32, 32)
		if err := pass.Execute(frame); err != nil {
			t.Fatal(err)
		}
		inv := dev.blends[0]
		if inv.Effect != DigitalEffectName || inv.Target != frame.source {
			t.Errorf("invocation %s -> %v", inv.Effect, inv.Target)
		}
		if inv.Textures[UniformMainTex] != dev.allocated[0] || inv.Source != dev.allocated[0] {
			t.Error("main frame not bound as source")
		}
		if inv.Textures[UniformTrashTex] != dev.allocated[tt.trash] {
			t.Errorf("sample %v: wrong trash frame bound", tt.sample)
		}
		if inv.Textures[UniformNoiseTex] != dev.allocated[3] {
			t.Error("noise texture not bound")
		}
		if inv.Floats[UniformIntensity] != 0.75 {
			t.Errorf("intensity = %v", inv.Floats[UniformIntensity])
		}
		if pass.Pool().Live() != 0 {
			t.Error("buffers still held after the pass")
		}
	}
}

func TestDigitalNoiseRegeneration(t *testing.T) {
	// Every sample is 0.95: the policy fires on each frame.
	dev := &fakeDevice{}
	pass := NewDigitalPass(dev, &digitalValues{params: DigitalParameters{Intensity: 0.01}}, constStream(0.95), DefaultOptions())
	for i := 0; i < 3; i++ {
		pass.Execute(newFakeFrame(8, 8))
	}
	if dev.writes != 3 {
		t.Errorf("noise uploaded %d times, want 3", dev.writes)
	}

	// Every sample is 0.1: the initial image is uploaded once and kept.
	dev = &fakeDevice{}
	pass = NewDigitalPass(dev, &digitalValues{params: DigitalParameters{Intensity: 1}}, constStream(0.1), DefaultOptions())
	for i := 0; i < 3; i++ {
		pass.Execute(newFakeFrame(8, 8))
	}
	if dev.writes != 1 {
		t.Errorf("noise uploaded %d times, want 1", dev.writes)
	}
}

func TestDigitalFrameCounterFreezesWhileInactive(t *testing.T) {
	dev := &fakeDevice{}
	values := &digitalValues{params: DigitalParameters{Intensity: 1}}
	pass := NewDigitalPass(dev, values, constStream(0.1), DefaultOptions())
	digital := pass.Effect().(*Digital)

	frame := newFakeFrame(8, 8)
	pass.Execute(frame)
	pass.Execute(frame)

	values.params.Intensity = 0
	for i := 0; i < 10; i++ {
		pass.Execute(frame)
	}
	if got := digital.FrameCounter(); got != 2 {
		t.Errorf("FrameCounter = %d after inactive frames, want 2", got)
	}
	if len(dev.blends) != 2 {
		t.Errorf("blends = %d, want 2", len(dev.blends))
	}
}

func TestDigitalAcquireFailure(t *testing.T) {
	dev := &fakeDevice{allocLimit: 2}
	stream := &scriptedStream{values: []float32{0.1}}
	pass := NewDigitalPass(dev, &digitalValues{params: DigitalParameters{Intensity: 1}}, stream, DefaultOptions())

	err := pass.Execute(newFakeFrame(8, 8))
	if !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("err = %v, want ErrResourceExhausted", err)
	}
	if len(dev.blends) != 0 {
		t.Error("blend issued after a failed acquisition")
	}
	if pass.Pool().Live() != 0 {
		t.Errorf("%d buffers held after a failed frame", pass.Pool().Live())
	}
	if got := pass.Effect().(*Digital).FrameCounter(); got != 0 {
		t.Errorf("FrameCounter = %d after a failed frame", got)
	}
}

func TestDigitalClose(t *testing.T) {
	dev := &fakeDevice{}
	pass := NewDigitalPass(dev, &digitalValues{params: DigitalParameters{Intensity: 1}}, constStream(0.1), DefaultOptions())
	pass.Execute(newFakeFrame(8, 8))
	pass.Close()
	if len(dev.deleted) != len(dev.allocated) {
		t.Errorf("deleted %d of %d textures", len(dev.deleted), len(dev.allocated))
	}
}
