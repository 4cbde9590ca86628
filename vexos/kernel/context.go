package kernel

// Mode is an ARM processor mode (the CPSR mode field).
type Mode uint32

const (
	ModeUsr Mode = 0x10
	ModeIRQ Mode = 0x12
	ModeSvc Mode = 0x13
	ModeSys Mode = 0x1F
)

// Context is the complete saved machine state needed to resume a task where
// it was interrupted. One per task slot, written only by the save path and
// read only by the restore path.
type Context struct {
	R    [13]uint32
	SP   uint32
	LR   uint32
	PC   uint32
	SPSR uint32
}

// CPU is the live register file of the emulated core. It belongs to
// whichever context currently holds the CPU; the running task may record
// values in it and the save/restore paths copy it whole.
type CPU struct {
	R    [13]uint32
	SP   uint32
	LR   uint32
	PC   uint32
	Mode Mode
}

// Emulated address map: DRAM at the Versatile Express base, entry vectors
// above the kernel image, one stack region per task slot growing down.
const (
	ramBase       = 0x60000000
	dispatchPC    = 0x60008000
	taskEntryBase = 0x60010000
	taskStackTop  = 0x60300000
	taskStackSize = 0x4000
)

func entryPC(id TaskID) uint32 {
	return taskEntryBase + uint32(id)*0x100
}

func stackTop(id TaskID) uint32 {
	return taskStackTop - uint32(id)*taskStackSize
}

// save copies the live register file into the task's context slot.
func (s *Sched) save(t *task) {
	t.ctx.R = s.cpu.R
	t.ctx.SP = s.cpu.SP
	t.ctx.LR = s.cpu.LR
	t.ctx.PC = s.cpu.PC
	t.ctx.SPSR = uint32(s.cpu.Mode)
}

// restore copies a task's saved context into the live register file.
func (s *Sched) restore(t *task) {
	s.cpu.R = t.ctx.R
	s.cpu.SP = t.ctx.SP
	s.cpu.LR = t.ctx.LR
	s.cpu.PC = t.ctx.PC
	s.cpu.Mode = Mode(t.ctx.SPSR)
}

// CPU exposes the live register file. Only the context holding the CPU may
// touch it.
func (s *Sched) CPU() *CPU { return &s.cpu }
