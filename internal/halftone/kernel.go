package halftone

import (
	"fmt"
	"strconv"
	"strings"
)

// KernelID identifies an error-diffusion kernel. The numeric values match
// the identifiers accepted on the command line.
type KernelID int

const (
	FloydSteinberg KernelID = iota + 1
	JarvisJudiceNinke
	Stucki
)

// Kernel is a (2s+1)×(2s+1) diffusion weight matrix centred at (s,s).
type Kernel [][]float64

var kernelNames = map[KernelID]string{
	FloydSteinberg:    "FLOYD_STEINBERG",
	JarvisJudiceNinke: "JARVIS_JUDICE_NINKE",
	Stucki:            "STUCKI",
}

// The catalog is built once and never mutated; LookupKernel hands out copies.
var kernelCatalog = map[KernelID]Kernel{
	FloydSteinberg: {
		{0, 0, 0},
		{0, 0, 7. / 16},
		{3. / 16, 5. / 16, 1. / 16},
	},
	JarvisJudiceNinke: {
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 7. / 48, 5. / 48},
		{3. / 48, 5. / 48, 7. / 48, 5. / 48, 3. / 48},
		{1. / 48, 3. / 48, 5. / 48, 3. / 48, 1. / 48},
	},
	Stucki: {
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 8. / 42, 4. / 42},
		{2. / 42, 4. / 42, 8. / 42, 4. / 42, 2. / 42},
		{1. / 42, 2. / 42, 4. / 42, 2. / 42, 1. / 42},
	},
}

func (id KernelID) String() string {
	if name, ok := kernelNames[id]; ok {
		return name
	}
	return fmt.Sprintf("KernelID(%d)", int(id))
}

// Kernels returns every catalogued kernel id in ascending order.
func Kernels() []KernelID {
	return []KernelID{FloydSteinberg, JarvisJudiceNinke, Stucki}
}

// ParseKernel resolves a kernel by name ("FLOYD_STEINBERG", "floyd-steinberg",
// "stucki", ...) or by numeric id ("1".."3").
func ParseKernel(s string) (KernelID, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	if n, err := strconv.Atoi(norm); err == nil {
		id := KernelID(n)
		if _, ok := kernelCatalog[id]; ok {
			return id, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownKernel, s)
	}

	for id, name := range kernelNames {
		if name == norm {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (allowed: %s)", ErrUnknownKernel, s, strings.Join(kernelNameList(), ", "))
}

func kernelNameList() []string {
	names := make([]string, 0, len(kernelNames))
	for _, id := range Kernels() {
		names = append(names, id.String())
	}
	return names
}

// LookupKernel returns a copy of the catalogued weights for id.
func LookupKernel(id KernelID) (Kernel, error) {
	k, ok := kernelCatalog[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKernel, id)
	}
	return k.clone(), nil
}

// Radius returns s for a (2s+1)-sided kernel.
func (k Kernel) Radius() int {
	return len(k) / 2
}

// FlipLR mirrors the kernel horizontally. The kernel must be square with an
// odd side length.
func (k Kernel) FlipLR() (Kernel, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	out := k.clone()
	for _, row := range out {
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
	return out, nil
}

func (k Kernel) validate() error {
	n := len(k)
	if n == 0 || n%2 == 0 {
		return fmt.Errorf("%w: kernel side %d is not odd", ErrInvalidParameter, n)
	}
	for i, row := range k {
		if len(row) != n {
			return fmt.Errorf("%w: kernel is not square (row %d has %d weights, want %d)", ErrInvalidParameter, i, len(row), n)
		}
	}
	return nil
}

func (k Kernel) clone() Kernel {
	out := make(Kernel, len(k))
	for i, row := range k {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
