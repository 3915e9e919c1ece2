package reviewpresenter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Presenter delivers formatted text and board images without coupling to the command layer.
type Presenter struct {
	out        io.Writer
	writeImage func(name string, png []byte) error
}

func NewPresenter(out io.Writer, writeImage func(name string, png []byte) error) *Presenter {
	return &Presenter{out: out, writeImage: writeImage}
}

func (p *Presenter) Text(message string) error {
	if p == nil || p.out == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	_, err := io.WriteString(p.out, message)
	return err
}

// JSON writes v indented, one document per call.
func (p *Presenter) JSON(v any) error {
	if p == nil || p.out == nil {
		return nil
	}
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Presenter) Image(name string, png []byte) error {
	if p == nil || len(png) == 0 || p.writeImage == nil {
		return nil
	}
	if err := p.writeImage(name, png); err != nil {
		return fmt.Errorf("write image %s: %w", name, err)
	}
	return nil
}
