package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

// Parse reads an instruction trace. The format is one instruction per line:
//
//	a <vpn> [r|w]   allocate a page (write access if the flag is omitted)
//	r <vpn>         read access
//	w <vpn>         write access
//	f <vpn>         free a page
//	s <pid>         switch to a process, forking it if it does not exist
//
// Blank lines and lines starting with # are skipped.
func Parse(r io.Reader) ([]Instruction, error) {
	var insts []Instruction

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		inst, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		insts = append(insts, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	return insts, nil
}

// ParseFile reads an instruction trace from a file.
func ParseFile(path string) ([]Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func parseLine(line string) (Instruction, error) {
	fields := strings.Fields(line)

	op := fields[0]
	switch op {
	case "a":
		return parseAlloc(fields)
	case "r", "w", "f":
		return parsePageOp(fields)
	case "s":
		return parseSwitch(fields)
	}

	return Instruction{}, fmt.Errorf("unknown instruction %q", op)
}

func parseAlloc(fields []string) (Instruction, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return Instruction{}, fmt.Errorf("alloc takes a vpn and an optional access flag")
	}

	vpn, err := parseNumber(fields[1], "vpn")
	if err != nil {
		return Instruction{}, err
	}

	access := vm.AccessReadWrite
	if len(fields) == 3 {
		switch fields[2] {
		case "r":
			access = vm.AccessRead
		case "w":
			access = vm.AccessReadWrite
		default:
			return Instruction{}, fmt.Errorf("unknown access flag %q", fields[2])
		}
	}

	return Instruction{Op: OpAlloc, VPN: vm.VPN(vpn), Access: access}, nil
}

func parsePageOp(fields []string) (Instruction, error) {
	if len(fields) != 2 {
		return Instruction{}, fmt.Errorf("%q takes exactly a vpn", fields[0])
	}

	vpn, err := parseNumber(fields[1], "vpn")
	if err != nil {
		return Instruction{}, err
	}

	inst := Instruction{VPN: vm.VPN(vpn)}
	switch fields[0] {
	case "r":
		inst.Op = OpRead
		inst.Access = vm.AccessRead
	case "w":
		inst.Op = OpWrite
		inst.Access = vm.AccessWrite
	case "f":
		inst.Op = OpFree
	}

	return inst, nil
}

func parseSwitch(fields []string) (Instruction, error) {
	if len(fields) != 2 {
		return Instruction{}, fmt.Errorf("switch takes exactly a pid")
	}

	pid, err := parseNumber(fields[1], "pid")
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: OpSwitch, PID: vm.PID(pid)}, nil
}

func parseNumber(s, what string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}

	return n, nil
}
