package surface

import (
	"encoding/json"
	"io"

	"github.com/redline-eval/redline/pkg/arena"
)

// JSONRenderer marshals results to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, report *Report) error {
	return encode(w, report)
}

func (r *JSONRenderer) RenderArena(w io.Writer, result *arena.ArenaResult) error {
	return encode(w, result)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
