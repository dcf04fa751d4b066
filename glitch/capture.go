package glitch

const (
	trash1Period = 13
	trash2Period = 73
)

// TrashSlot identifies one of the two stale capture buffers.
type TrashSlot int

const (
	Trash1 TrashSlot = iota + 1
	Trash2
)

// Name is the pool name of the slot's buffer.
func (s TrashSlot) Name() string {
	if s == Trash1 {
		return TrashFrame1
	}
	return TrashFrame2
}

// CapturePlan is the scheduler's decision for one frame.
type CapturePlan struct {
	RefreshTrash1 bool
	RefreshTrash2 bool
	Active        TrashSlot
}

// CaptureScheduler decides when the trash buffers are refreshed and which
// one feeds the blend. Both cadences are checked against the same counter.
type CaptureScheduler struct {
	random RandomStream
}

func NewCaptureScheduler(random RandomStream) *CaptureScheduler {
	return &CaptureScheduler{random: random}
}

// Plan returns the decision for the given frame count and consumes one sample.
func (s *CaptureScheduler) Plan(frame uint64) CapturePlan {
	plan := CapturePlan{
		RefreshTrash1: frame%trash1Period == 0,
		RefreshTrash2: frame%trash2Period == 0,
		Active:        Trash2,
	}
	if s.random.Float32() > 0.5 {
		plan.Active = Trash1
	}
	return plan
}
