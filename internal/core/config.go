package core

import "fmt"

// Config fixes the accelerator's geometry. All dimensions are set once at
// construction; there is no run-time resizing.
type Config struct {
	// Width is the operand width in bits. Products, bias terms and output
	// elements are 2*Width bits wide.
	Width int
	// Lanes is the number of parallel MAC units, one per vector element
	// contracted per step.
	Lanes int
	// Hidden is the number of rows of the output matrix (hidden dimension).
	Hidden int
	// Patches is the number of columns of the output matrix.
	Patches int
	// WideBias reads bias terms at their full 2*Width storage width. The
	// source design sign-extends the low Width bits of each bias slot
	// instead, which looks like an indexing slip but is the convention
	// results were produced under, so it is the default here.
	WideBias bool
}

// Validate reports the first configuration error, if any.
func (c Config) Validate() error {
	if c.Width < 2 || c.Width > 16 {
		return fmt.Errorf("operand width %d out of range [2, 16]", c.Width)
	}
	if c.Lanes < 1 {
		return fmt.Errorf("lane count %d must be positive", c.Lanes)
	}
	if c.Hidden < 1 {
		return fmt.Errorf("hidden dimension %d must be positive", c.Hidden)
	}
	if c.Patches < 1 {
		return fmt.Errorf("patch count %d must be positive", c.Patches)
	}
	return nil
}

// wide returns the product width in bits.
func (c Config) wide() uint { return uint(2 * c.Width) }
