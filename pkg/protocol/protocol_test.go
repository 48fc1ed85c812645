package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/shirtform/pkg/form"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Event
		wantErr error
	}{
		{
			name: "input",
			in:   `{"type":"input","name":"fullName","value":"Jacob"}`,
			want: Event{Type: EventInput, Name: "fullName", Value: "Jacob"},
		},
		{
			name: "toggle",
			in:   `{"type":"toggle","name":"1","checked":true}`,
			want: Event{Type: EventToggle, Name: "1", Checked: true},
		},
		{name: "submit", in: `{"type":"submit"}`, want: Event{Type: EventSubmit}},
		{name: "reset", in: `{"type":"reset"}`, want: Event{Type: EventReset}},
		{name: "not json", in: `hello`, wantErr: ErrInvalidEvent},
		{name: "missing type", in: `{}`, wantErr: ErrInvalidEvent},
		{name: "unknown type", in: `{"type":"click"}`, wantErr: ErrInvalidEvent},
		{name: "input without name", in: `{"type":"input","value":"x"}`, wantErr: ErrInvalidEvent},
		{name: "unknown key", in: `{"type":"submit","hid":"h1"}`, wantErr: ErrInvalidEvent},
		{name: "too large", in: `{"type":"input","name":"fullName","value":"` + strings.Repeat("a", MaxEventSize) + `"}`, wantErr: ErrEventTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tt.in))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStateMessageShape(t *testing.T) {
	msg := State(form.State{
		Values: form.Values{FullName: "abcd"},
		Errors: form.Errors{form.FieldFullName: "Full name must be at least 5 characters"},
	})

	data, err := msg.Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := `{"type":"state","values":{"fullName":"abcd","shirtSize":"","animals":[]},` +
		`"errors":{"animals":"","fullName":"Full name must be at least 5 characters","shirtSize":""},` +
		`"submitEnabled":false}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestErrorAndSubmittedMessages(t *testing.T) {
	data, err := Error(CodeUnknownAnimal, "no such animal").Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"error","code":"unknown_animal","message":"no such animal"}` {
		t.Errorf("unexpected error message %s", data)
	}

	data, err = Submitted(form.Values{FullName: "Jacob Smith", ShirtSize: "M", Animals: []string{"1"}}).Encode()
	if err != nil {
		t.Fatal(err)
	}
	m, err := DecodeMessage(data)
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != MessageSubmitted || m.Values == nil || m.Values.FullName != "Jacob Smith" {
		t.Errorf("unexpected submitted message %+v", m)
	}
}
