package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// machineState is the JSON-serializable snapshot of the CPU.
type machineState struct {
	Regs      map[string]int32 `json:"regs"`
	Mem       map[string]int32 `json:"mem"`
	PC        int              `json:"pc"`
	Z         bool             `json:"z"`
	L         bool             `json:"l"`
	Halted    bool             `json:"halted"`
	Steps     int              `json:"steps"`
	CallDepth int              `json:"call_depth"`
	ExitCode  int32            `json:"exit_code"`
	Printed   []int32          `json:"printed"`
}

// SnapshotToBytes packs the machine state into a ZIP archive holding
// state.json, stack.json and a listing of the loaded program.
func (c *CPU) SnapshotToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := machineState{
		Regs:      c.Regs,
		Mem:       c.Mem,
		PC:        c.PC,
		Z:         c.Z,
		L:         c.L,
		Halted:    c.Halted,
		Steps:     c.Steps,
		CallDepth: c.CallDepth,
		ExitCode:  c.ExitCode,
		Printed:   c.Printed,
	}
	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	if err := writeZipEntry(zw, "state.json", stateJSON); err != nil {
		return nil, err
	}

	// JSON object keys must be strings
	stack := make(map[string]int32, len(c.Stack))
	for addr, v := range c.Stack {
		stack[fmt.Sprintf("0x%x", addr)] = v
	}
	stackJSON, err := json.MarshalIndent(stack, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal stack: %w", err)
	}
	if err := writeZipEntry(zw, "stack.json", stackJSON); err != nil {
		return nil, err
	}

	if c.prog != nil {
		var sb strings.Builder
		for i, in := range c.prog.Text {
			marker := "  "
			if i == c.PC {
				marker = "=>"
			}
			fmt.Fprintf(&sb, "%s %4d  %s\n", marker, in.Line, in)
		}
		if err := writeZipEntry(zw, "program.txt", []byte(sb.String())); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes applies a snapshot produced by SnapshotToBytes. The
// program itself is not part of the snapshot; Load it first.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	stateJSON, err := readZipEntry(fileMap, "state.json")
	if err != nil {
		return err
	}
	var state machineState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}

	stackJSON, err := readZipEntry(fileMap, "stack.json")
	if err != nil {
		return err
	}
	var stack map[string]int32
	if err := json.Unmarshal(stackJSON, &stack); err != nil {
		return fmt.Errorf("unmarshal stack: %w", err)
	}

	c.Regs = state.Regs
	c.Mem = state.Mem
	if c.Mem == nil {
		c.Mem = make(map[string]int32)
	}
	c.PC = state.PC
	c.Z, c.L = state.Z, state.L
	c.Halted = state.Halted
	c.Steps = state.Steps
	c.CallDepth = state.CallDepth
	c.ExitCode = state.ExitCode
	c.Printed = state.Printed

	c.Stack = make(map[int32]int32, len(stack))
	for key, v := range stack {
		var addr int32
		if _, err := fmt.Sscanf(key, "0x%x", &addr); err != nil {
			return fmt.Errorf("bad stack address %q: %w", key, err)
		}
		c.Stack[addr] = v
	}
	return nil
}

// SnapshotToFile writes the snapshot archive to path.
func (c *CPU) SnapshotToFile(path string) error {
	data, err := c.SnapshotToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
