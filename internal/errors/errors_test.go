package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E103",
			wantMsg: "Invalid log level",
			wantCat: CategoryConfig,
		},
		{
			name:    "schema error",
			code:    "E201",
			wantMsg: "Invalid schema file",
			wantCat: CategorySchema,
		},
		{
			name:    "catalog error",
			code:    "E204",
			wantMsg: "Schema and catalog disagree",
			wantCat: CategoryCatalog,
		},
		{
			name:    "input error",
			code:    "E302",
			wantMsg: "Form is not valid",
			wantCat: CategoryInput,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "values.yaml")
	if err.Message != `file "values.yaml" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "values.yaml" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	if got, want := New("E104").Error(), "E104: Invalid log format"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E101").Wrap(fmt.Errorf("unexpected end of JSON input"))
	if got, want := wrapped.Error(), "E101: Invalid config file: unexpected end of JSON input"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "schema.yaml")
	content := `fields:
  - name: fullName
    rules:
      - rule: long
        value: 5
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E201").WithLocation(tmpFile, 4, 0)
	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 4 {
		t.Errorf("Location.Line = %d, want %d", err.Location.Line, 4)
	}
	want := []string{"  - name: fullName", "    rules:", "      - rule: long", "        value: 5"}
	if len(err.Context) != len(want) {
		t.Fatalf("expected %d context lines, got %d: %q", len(want), len(err.Context), err.Context)
	}
	for i, w := range want {
		if err.Context[i] != w {
			t.Errorf("Context[%d] = %q, want %q", i, err.Context[i], w)
		}
	}

	DisableColors()
	defer EnableColors()
	out := err.Format()
	if !strings.Contains(out, "→    4 │       - rule: long") {
		t.Errorf("Format should mark line 4, got:\n%s", out)
	}
	if !strings.Contains(out, "     2 │   - name: fullName") {
		t.Errorf("Format should number context lines, got:\n%s", out)
	}
}

func TestError_WithLocationNearStart(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "values.yaml")
	if err := os.WriteFile(tmpFile, []byte("fullName: [\nshirtSize: M\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E301").WithLocation(tmpFile, 1, 0)
	DisableColors()
	defer EnableColors()
	if out := err.Format(); !strings.Contains(out, "→    1 │ fullName: [") {
		t.Errorf("Format should mark line 1, got:\n%s", out)
	}
}

func TestError_Builders(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("E200").
		WithFile("schema.yaml").
		WithDetail("Custom detail").
		WithSuggestion("Check the path").
		Wrap(cause)

	if err.Location.String() != "schema.yaml" {
		t.Errorf("Location = %q, want %q", err.Location.String(), "schema.yaml")
	}
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q, want %q", err.Detail, "Custom detail")
	}
	if err.Suggestion != "Check the path" {
		t.Errorf("Suggestion = %q, want %q", err.Suggestion, "Check the path")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E101") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New("E101")
	if FromError(e, "E201") != e {
		t.Error("FromError should return *Error as-is")
	}
	if FromError(fmt.Errorf("loading: %w", e), "E201") != e {
		t.Error("FromError should unwrap to the *Error")
	}

	std := stderrors.New("test error")
	result := FromError(std, "E301")
	if result.Wrapped != std || result.Code != "E301" {
		t.Errorf("standard error should be wrapped under E301, got %+v", result)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil location", nil, ""},
		{"file only", &Location{File: "a.yaml"}, "a.yaml"},
		{"with line", &Location{File: "a.yaml", Line: 3}, "a.yaml:3"},
		{"with column", &Location{File: "a.yaml", Line: 3, Column: 7}, "a.yaml:3:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{stderrors.New("yaml: line 3: did not find expected key"), 3},
		{stderrors.New("yaml: unmarshal errors:\n  line 12: cannot unmarshal !!map into string"), 12},
		{stderrors.New("unexpected EOF"), 0},
	}
	for _, tt := range tests {
		if got := LineOf(tt.err); got != tt.want {
			t.Errorf("LineOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E105").
		WithSuggestion(`Set validation.mode to "sync" or "async"`).
		Wrap(stderrors.New(`unknown mode "eager"`))
	out := err.Format()

	for _, want := range []string{
		"ERROR E105: Invalid validation mode",
		"validation.mode must be sync or async.",
		`Cause: unknown mode "eager"`,
		`Hint: Set validation.mode to "sync" or "async"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E301").WithLocation("values.yaml", 0, 0)
	if got, want := err.FormatCompact(), "values.yaml: E301: Invalid values file"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E107").WithSuggestion("Use /metrics").Wrap(stderrors.New("bad"))

	var got map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", jerr)
	}
	if got["code"] != "E107" || got["category"] != "config" || got["cause"] != "bad" {
		t.Errorf("unexpected JSON: %v", got)
	}
	if got["suggestion"] != "Use /metrics" {
		t.Errorf("suggestion = %v", got["suggestion"])
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, fmt.Errorf("serve: %w", New("E304")))
	if !strings.Contains(buf.String(), "ERROR E304: Server failed") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("", 10); got != nil {
		t.Errorf("expected nil, got %q", got)
	}
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %q", lines)
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("registry is empty")
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has an incomplete template", code)
		}
		switch code[1] {
		case '1':
			if tmpl.Category != CategoryConfig {
				t.Errorf("code %s should be a config error", code)
			}
		case '2':
			if tmpl.Category != CategorySchema && tmpl.Category != CategoryCatalog {
				t.Errorf("code %s should be a schema or catalog error", code)
			}
		}
	}

	Register("E399", ErrorTemplate{Category: CategoryCLI, Message: "Custom"})
	defer delete(registry, "E399")
	if New("E399").Message != "Custom" {
		t.Error("registered template not used")
	}
}
