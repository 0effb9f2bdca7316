package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AntonPalyok/dotnet-monitor/internal/config"
	"github.com/AntonPalyok/dotnet-monitor/internal/domain/auth"
)

// authorizationHeader is the HTTP header clients present the token in.
const authorizationHeader = "Authorization"

// Message IDs resolved through Messages.
const (
	msgIntro               = "generate_key_intro"
	msgAuthorizationHeader = "generate_key_authorization_header"
	msgSettingsDump        = "generate_key_settings_dump"
	msgSubject             = "generate_key_subject"
	msgPublicKey           = "generate_key_public_key"
)

// envTemplates maps each shell dialect to the statement setting one variable.
// The verbs receive the configuration path and the value, in that order.
var envTemplates = map[OutputFormat]string{
	Cmd:        "set %s=%s",
	PowerShell: `$env:%s="%s"`,
	Shell:      `export %s="%s"`,
}

// Messages resolves operator-facing message IDs.
type Messages interface {
	T(messageID string, data map[string]any) string
}

// Flattener converts a configuration fragment into ordered (path, value) pairs.
type Flattener interface {
	Flatten(opts *config.RootOptions) []config.KeyValue
}

// fragmentWriter renders the configuration fragment for one format.
type fragmentWriter interface {
	writeFragment(b *strings.Builder, opts *config.RootOptions) error
}

// Renderer composes the text block shown after a key is generated.
type Renderer struct {
	messages Messages
	writers  map[OutputFormat]fragmentWriter
}

// NewRenderer creates a Renderer resolving labels through messages and
// flattening configuration paths with flattener for the shell formats.
func NewRenderer(messages Messages, flattener Flattener) *Renderer {
	writers := map[OutputFormat]fragmentWriter{
		Json: jsonFragment{},
		Text: textFragment{messages: messages},
	}
	for format, tmpl := range envTemplates {
		writers[format] = envFragment{template: tmpl, flattener: flattener}
	}
	return &Renderer{messages: messages, writers: writers}
}

// Render returns the intro, the Authorization header line and the server
// configuration for key in the requested format. The token only appears in
// the header line; the fragment only carries the subject and public key.
// An unknown format fails with *UnknownFormatError before anything is rendered,
// and a key missing its subject or public key fails instead of rendering a
// partial fragment.
func (r *Renderer) Render(key *auth.GeneratedKey, format OutputFormat) (string, error) {
	w, ok := r.writers[format]
	if !ok {
		return "", &UnknownFormatError{Value: format.String()}
	}
	if key == nil {
		return "", errors.New("key is required")
	}

	opts := config.NewMonitorAPIKeyOptions(key.Subject, key.PublicKey)
	if err := opts.Validate(); err != nil {
		return "", fmt.Errorf("invalid key: %w", err)
	}

	var b strings.Builder
	b.WriteString(r.messages.T(msgIntro, nil))
	b.WriteString("\n\n")
	b.WriteString(r.messages.T(msgAuthorizationHeader, map[string]any{
		"Header": authorizationHeader,
		"Scheme": auth.APIKeyScheme,
		"Token":  key.Token,
	}))
	b.WriteString("\n\n")
	b.WriteString(r.messages.T(msgSettingsDump, map[string]any{"Format": format.String()}))
	b.WriteString("\n\n")
	if err := w.writeFragment(&b, opts); err != nil {
		return "", fmt.Errorf("render %s settings: %w", format, err)
	}
	b.WriteString("\n")

	return b.String(), nil
}

// jsonFragment writes the fragment as a settings document.
type jsonFragment struct{}

func (jsonFragment) writeFragment(b *strings.Builder, opts *config.RootOptions) error {
	return config.WriteJSON(b, opts)
}

// textFragment writes labeled subject and public key lines.
type textFragment struct {
	messages Messages
}

func (f textFragment) writeFragment(b *strings.Builder, opts *config.RootOptions) error {
	key := opts.Authentication.MonitorAPIKey
	b.WriteString(f.messages.T(msgSubject, map[string]any{"Subject": key.Subject}))
	b.WriteString("\n")
	b.WriteString(f.messages.T(msgPublicKey, map[string]any{"PublicKey": key.PublicKey}))
	b.WriteString("\n")
	return nil
}

// envFragment writes one shell statement per flattened setting.
type envFragment struct {
	template  string
	flattener Flattener
}

func (f envFragment) writeFragment(b *strings.Builder, opts *config.RootOptions) error {
	for _, kv := range f.flattener.Flatten(opts) {
		fmt.Fprintf(b, f.template, kv.Path, kv.Value)
		b.WriteString("\n")
	}
	return nil
}
