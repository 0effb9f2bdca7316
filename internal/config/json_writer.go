package config

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes opts to w as an indented JSON document containing only
// the settings that are present. Values are written verbatim (no HTML
// escaping) so keys can be pasted into a settings file unchanged.
func WriteJSON(w io.Writer, opts *RootOptions) error {
	if opts == nil {
		opts = &RootOptions{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(opts); err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return nil
}
