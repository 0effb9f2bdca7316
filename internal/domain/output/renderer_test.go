package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AntonPalyok/dotnet-monitor/internal/config"
	"github.com/AntonPalyok/dotnet-monitor/internal/domain/auth"
	"github.com/AntonPalyok/dotnet-monitor/internal/i18n"
)

// recordingFlattener returns fixed pairs and records what it was asked to flatten.
type recordingFlattener struct {
	pairs []config.KeyValue
	calls []*config.RootOptions
}

func (f *recordingFlattener) Flatten(opts *config.RootOptions) []config.KeyValue {
	f.calls = append(f.calls, opts)
	return f.pairs
}

// Compile-time check that PathFlattener satisfies Flattener.
var _ Flattener = (*config.PathFlattener)(nil)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	catalog, err := i18n.New("en")
	if err != nil {
		t.Fatalf("i18n.New() error: %v", err)
	}
	return NewRenderer(catalog, config.NewPathFlattener(config.EnvironmentConfig{}))
}

func testKey() *auth.GeneratedKey {
	return &auth.GeneratedKey{
		Token:     "tok-xyz789",
		Subject:   "subj-abc123",
		PublicKey: "pk-deadbeef",
		Kind:      auth.KeyKindJWT,
	}
}

// splitOutput returns the Authorization header line and the fragment
// following the settings label.
func splitOutput(t *testing.T, out string) (header, fragment string) {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Authorization: ") {
			header = line
			break
		}
	}
	if header == "" {
		t.Fatalf("no Authorization line in output:\n%s", out)
	}
	_, fragment, ok := strings.Cut(out, " format:\n\n")
	if !ok {
		t.Fatalf("no settings label in output:\n%s", out)
	}
	return header, fragment
}

func TestRender_ShellExample(t *testing.T) {
	t.Parallel()

	key := &auth.GeneratedKey{Token: "xyz789", Subject: "abc123", PublicKey: "deadbeef"}
	got, err := newTestRenderer(t).Render(key, Shell)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	want := `Generated ApiKey for dotnet-monitor; use the following header for authorization:

Authorization: Bearer xyz789

Settings in Shell format:

export Authentication:MonitorApiKey:Subject="abc123"
export Authentication:MonitorApiKey:PublicKey="deadbeef"

`
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_AllFormats_TokenOnlyInHeader(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	key := testKey()

	for _, format := range Formats() {
		t.Run(format.String(), func(t *testing.T) {
			out, err := r.Render(key, format)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}

			if n := strings.Count(out, key.Token); n != 1 {
				t.Errorf("token appears %d times, want exactly 1", n)
			}

			header, fragment := splitOutput(t, out)
			if header != "Authorization: Bearer "+key.Token {
				t.Errorf("header line = %q", header)
			}
			if strings.Contains(header, key.Subject) || strings.Contains(header, key.PublicKey) {
				t.Errorf("header line leaks subject or public key: %q", header)
			}
			if strings.Contains(fragment, key.Token) {
				t.Errorf("fragment leaks token:\n%s", fragment)
			}
			if !strings.Contains(fragment, key.Subject) || !strings.Contains(fragment, key.PublicKey) {
				t.Errorf("fragment missing subject or public key:\n%s", fragment)
			}
			if !strings.Contains(out, fmt.Sprintf("Settings in %s format:", format)) {
				t.Errorf("settings label missing format name %s", format)
			}
			if !strings.HasSuffix(out, "\n\n") {
				t.Errorf("output should end with a blank line: %q", out)
			}
		})
	}
}

func TestRender_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	key := testKey()
	out, err := newTestRenderer(t).Render(key, Json)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	_, fragment := splitOutput(t, out)

	var doc map[string]any
	if err := json.Unmarshal([]byte(fragment), &doc); err != nil {
		t.Fatalf("fragment is not JSON: %v\n%s", err, fragment)
	}
	if len(doc) != 1 {
		t.Errorf("top-level keys = %v, want only Authentication", doc)
	}
	authn, ok := doc["Authentication"].(map[string]any)
	if !ok || len(authn) != 1 {
		t.Fatalf("Authentication = %v, want only MonitorApiKey", doc["Authentication"])
	}
	apiKey, ok := authn["MonitorApiKey"].(map[string]any)
	if !ok {
		t.Fatalf("MonitorApiKey = %v", authn["MonitorApiKey"])
	}
	if len(apiKey) != 2 {
		t.Errorf("MonitorApiKey fields = %v, want Subject and PublicKey", apiKey)
	}
	if apiKey["Subject"] != key.Subject {
		t.Errorf("Subject = %v, want %q", apiKey["Subject"], key.Subject)
	}
	if apiKey["PublicKey"] != key.PublicKey {
		t.Errorf("PublicKey = %v, want %q", apiKey["PublicKey"], key.PublicKey)
	}
}

func TestRender_Text(t *testing.T) {
	t.Parallel()

	key := testKey()
	out, err := newTestRenderer(t).Render(key, Text)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	_, fragment := splitOutput(t, out)

	want := "Subject: subj-abc123\nPublicKey: pk-deadbeef\n\n"
	if fragment != want {
		t.Errorf("fragment = %q, want %q", fragment, want)
	}
}

func TestRender_EnvironmentFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format OutputFormat
		want   []string
	}{
		{Cmd, []string{
			"set Authentication:MonitorApiKey:Subject=subj-abc123",
			"set Authentication:MonitorApiKey:PublicKey=pk-deadbeef",
		}},
		{PowerShell, []string{
			`$env:Authentication:MonitorApiKey:Subject="subj-abc123"`,
			`$env:Authentication:MonitorApiKey:PublicKey="pk-deadbeef"`,
		}},
		{Shell, []string{
			`export Authentication:MonitorApiKey:Subject="subj-abc123"`,
			`export Authentication:MonitorApiKey:PublicKey="pk-deadbeef"`,
		}},
	}

	r := newTestRenderer(t)
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			out, err := r.Render(testKey(), tt.format)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			_, fragment := splitOutput(t, out)
			lines := strings.Split(strings.TrimRight(fragment, "\n"), "\n")
			if len(lines) != 2 {
				t.Fatalf("fragment has %d lines, want 2:\n%s", len(lines), fragment)
			}
			for i := range lines {
				if lines[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, lines[i], tt.want[i])
				}
			}
		})
	}
}

func TestRender_ValuesVerbatim(t *testing.T) {
	t.Parallel()

	key := &auth.GeneratedKey{Token: "t", Subject: `s"&<x>`, PublicKey: `p%d$HOME`}
	out, err := newTestRenderer(t).Render(key, Shell)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, `export Authentication:MonitorApiKey:Subject="s"&<x>"`) {
		t.Errorf("subject was re-encoded:\n%s", out)
	}
	if !strings.Contains(out, `export Authentication:MonitorApiKey:PublicKey="p%d$HOME"`) {
		t.Errorf("public key was re-encoded:\n%s", out)
	}
}

func TestRender_UsesFlattener(t *testing.T) {
	t.Parallel()

	catalog, err := i18n.New("en")
	if err != nil {
		t.Fatalf("i18n.New() error: %v", err)
	}
	flattener := &recordingFlattener{pairs: []config.KeyValue{
		{Path: "A__B", Value: "1"},
		{Path: "A__C", Value: "2"},
	}}
	r := NewRenderer(catalog, flattener)

	out, err := r.Render(testKey(), Cmd)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasSuffix(out, "set A__B=1\nset A__C=2\n\n") {
		t.Errorf("output does not use flattened pairs:\n%s", out)
	}
	if len(flattener.calls) != 1 {
		t.Fatalf("Flatten called %d times, want 1", len(flattener.calls))
	}
	got := flattener.calls[0].Authentication.MonitorAPIKey
	if got.Subject != "subj-abc123" || got.PublicKey != "pk-deadbeef" {
		t.Errorf("Flatten received %+v", got)
	}

	// JSON and Text do not flatten.
	if _, err := r.Render(testKey(), Json); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if _, err := r.Render(testKey(), Text); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(flattener.calls) != 1 {
		t.Errorf("Flatten called %d times after Json/Text, want 1", len(flattener.calls))
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	for _, format := range []OutputFormat{OutputFormat(5), OutputFormat(99), OutputFormat(-1)} {
		out, err := r.Render(testKey(), format)
		if out != "" {
			t.Errorf("Render(%d) produced output %q, want none", int(format), out)
		}
		var ufe *UnknownFormatError
		if !errors.As(err, &ufe) {
			t.Fatalf("Render(%d) error = %v, want *UnknownFormatError", int(format), err)
		}
		if ufe.Value != format.String() {
			t.Errorf("UnknownFormatError.Value = %q, want %q", ufe.Value, format.String())
		}
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Render(%d) error should match ErrUnknownFormat", int(format))
		}
	}
}

func TestRender_NilKey(t *testing.T) {
	t.Parallel()

	if _, err := newTestRenderer(t).Render(nil, Json); err == nil {
		t.Error("Render(nil) expected error")
	}
}

func TestRender_IncompleteKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  *auth.GeneratedKey
		want string
	}{
		{"empty subject", &auth.GeneratedKey{Token: "tok", PublicKey: "pk"}, "Subject is required"},
		{"empty public key", &auth.GeneratedKey{Token: "tok", Subject: "subj"}, "PublicKey is required"},
	}

	r := newTestRenderer(t)
	for _, tt := range tests {
		for _, format := range Formats() {
			t.Run(tt.name+"/"+format.String(), func(t *testing.T) {
				out, err := r.Render(tt.key, format)
				if err == nil {
					t.Fatalf("Render() expected error, got output:\n%s", out)
				}
				if !strings.Contains(err.Error(), tt.want) {
					t.Errorf("Render() error = %v, want %q", err, tt.want)
				}
				if out != "" {
					t.Errorf("Render() produced output %q, want none", out)
				}
			})
		}
	}
}

func TestRender_GeneratedKeys(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	for _, kind := range []auth.KeyKind{auth.KeyKindJWT, auth.KeyKindOpaque} {
		gen, err := auth.NewKeyGenerator(kind)
		if err != nil {
			t.Fatalf("NewKeyGenerator(%q) error: %v", kind, err)
		}
		key, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		for _, format := range Formats() {
			out, err := r.Render(key, format)
			if err != nil {
				t.Fatalf("%s/%s: Render() error: %v", kind, format, err)
			}
			if n := strings.Count(out, key.Token); n != 1 {
				t.Errorf("%s/%s: token appears %d times, want 1", kind, format, n)
			}
		}
	}
}
