package glitch

import (
	"fmt"
	"log"
)

// Logical buffer names used by the effects.
const (
	MainFrame   = "mainFrame"
	TrashFrame1 = "trashFrame1"
	TrashFrame2 = "trashFrame2"
)

type pooledTexture struct {
	tex      Texture
	desc     Descriptor
	owner    string // name it was last acquired under
	lastUsed uint64
}

// BufferPool hands out frame buffers keyed by logical name. Released textures
// stay with the pool and are handed back to the same name when the descriptor
// still matches, so a buffer that is only rewritten now and then keeps its
// pixels from one frame to the next.
//
// A BufferPool is not safe for concurrent use.
type BufferPool struct {
	device Device
	held   map[string]*pooledTexture
	idle   []*pooledTexture
	frame  uint64
}

// NewBufferPool creates an empty pool allocating from device.
func NewBufferPool(device Device) *BufferPool {
	return &BufferPool{
		device: device,
		held:   make(map[string]*pooledTexture),
	}
}

// Acquire returns the buffer for name, sized by desc. Depth is always disabled.
// Acquiring a name that is already held with the same descriptor returns the
// same texture.
func (p *BufferPool) Acquire(name string, desc Descriptor) (Texture, error) {
	desc.DepthBits = 0

	if b, ok := p.held[name]; ok {
		if b.desc == desc {
			return b.tex, nil
		}
		p.Release(name)
	}

	b := p.takeIdle(name, desc)
	if b == nil {
		tex, err := p.device.NewTexture(desc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (%v): %v", ErrResourceExhausted, name, desc, err)
		}
		if tex == nil {
			return nil, fmt.Errorf("%w: %s (%v): device returned no texture", ErrResourceExhausted, name, desc)
		}
		b = &pooledTexture{tex: tex, desc: desc}
	}

	b.owner = name
	b.lastUsed = p.frame
	p.held[name] = b
	return b.tex, nil
}

// takeIdle removes and returns an idle texture matching desc, preferring the
// one last held under name.
func (p *BufferPool) takeIdle(name string, desc Descriptor) *pooledTexture {
	match := -1
	for i, b := range p.idle {
		if b.desc != desc {
			continue
		}
		if b.owner == name {
			match = i
			break
		}
		if match < 0 {
			match = i
		}
	}
	if match < 0 {
		return nil
	}
	b := p.idle[match]
	p.idle = append(p.idle[:match], p.idle[match+1:]...)
	return b
}

// Release returns the buffer held under name to the pool. Releasing a name
// that is not held does nothing.
func (p *BufferPool) Release(name string) {
	b, ok := p.held[name]
	if !ok {
		return
	}
	delete(p.held, name)
	b.lastUsed = p.frame
	p.idle = append(p.idle, b)
}

// ReleaseAll releases every held buffer.
func (p *BufferPool) ReleaseAll() {
	for name := range p.held {
		p.Release(name)
	}
}

// EndFrame advances the pool's frame clock.
func (p *BufferPool) EndFrame() {
	p.frame++
}

// Trim deletes idle textures not used during the last maxIdle frames and
// returns how many were deleted.
func (p *BufferPool) Trim(maxIdle int) int {
	if maxIdle < 0 {
		return 0
	}
	kept := p.idle[:0]
	freed := 0
	for _, b := range p.idle {
		if p.frame-b.lastUsed > uint64(maxIdle) {
			p.device.DeleteTexture(b.tex)
			freed++
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(p.idle); i++ {
		p.idle[i] = nil
	}
	p.idle = kept
	return freed
}

// Destroy deletes every texture owned by the pool, held or idle.
func (p *BufferPool) Destroy() {
	p.ReleaseAll()
	for _, b := range p.idle {
		p.device.DeleteTexture(b.tex)
	}
	if n := len(p.idle); n > 0 {
		log.Printf("Buffer pool: deleted %d textures", n)
	}
	p.idle = nil
}

// Live is the number of held buffers.
func (p *BufferPool) Live() int { return len(p.held) }

// Idle is the number of released textures kept for reuse.
func (p *BufferPool) Idle() int { return len(p.idle) }

// Allocated is the number of textures the pool owns.
func (p *BufferPool) Allocated() int { return len(p.held) + len(p.idle) }
