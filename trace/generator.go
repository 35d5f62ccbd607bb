package trace

import (
	"math/rand"

	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

// A Generator produces random but well-formed instruction streams. It keeps
// track of which pages each process has mapped, so most accesses land on
// live pages, the way a real workload would, while still leaving room for
// the faults a soak run should exercise.
type Generator struct {
	NumInstructions int
	MaxVPN          vm.VPN
	NumProcesses    int

	rng *rand.Rand

	currentPID vm.PID
	pids       []vm.PID
	mapped     map[vm.PID]map[vm.VPN]bool
}

// NewGenerator creates a Generator with a deterministic seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		NumInstructions: 1000,
		MaxVPN:          255,
		NumProcesses:    4,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

// Generate produces the instruction stream.
func (g *Generator) Generate() []Instruction {
	g.currentPID = 0
	g.pids = []vm.PID{0}
	g.mapped = map[vm.PID]map[vm.VPN]bool{0: {}}

	insts := make([]Instruction, 0, g.NumInstructions)
	for i := 0; i < g.NumInstructions; i++ {
		insts = append(insts, g.next())
	}

	return insts
}

func (g *Generator) next() Instruction {
	dice := g.rng.Float64()

	switch {
	case dice < 0.25:
		return g.alloc()
	case dice < 0.75:
		return g.access()
	case dice < 0.9:
		return g.free()
	default:
		return g.switchProcess()
	}
}

func (g *Generator) alloc() Instruction {
	vpn := vm.VPN(g.rng.Int63n(int64(g.MaxVPN) + 1))

	access := vm.AccessReadWrite
	if g.rng.Float64() < 0.3 {
		access = vm.AccessRead
	}

	g.mapped[g.currentPID][vpn] = true

	return Instruction{Op: OpAlloc, VPN: vpn, Access: access}
}

func (g *Generator) access() Instruction {
	vpn, ok := g.randomMappedVPN()
	if !ok {
		return g.alloc()
	}

	if g.rng.Float64() < 0.5 {
		return Instruction{Op: OpWrite, VPN: vpn, Access: vm.AccessWrite}
	}

	return Instruction{Op: OpRead, VPN: vpn, Access: vm.AccessRead}
}

func (g *Generator) free() Instruction {
	vpn, ok := g.randomMappedVPN()
	if !ok {
		return g.alloc()
	}

	delete(g.mapped[g.currentPID], vpn)

	return Instruction{Op: OpFree, VPN: vpn}
}

func (g *Generator) switchProcess() Instruction {
	pid := vm.PID(g.rng.Int63n(int64(g.NumProcesses)))

	if _, exists := g.mapped[pid]; !exists {
		// Forking: the child inherits the parent's mappings.
		inherited := map[vm.VPN]bool{}
		for vpn := range g.mapped[g.currentPID] {
			inherited[vpn] = true
		}

		g.mapped[pid] = inherited
		g.pids = append(g.pids, pid)
	}

	g.currentPID = pid

	return Instruction{Op: OpSwitch, PID: pid}
}

func (g *Generator) randomMappedVPN() (vm.VPN, bool) {
	pages := g.mapped[g.currentPID]
	if len(pages) == 0 {
		return 0, false
	}

	pick := g.rng.Intn(len(pages))
	for vpn := range pages {
		if pick == 0 {
			return vpn, true
		}
		pick--
	}

	return 0, false
}
