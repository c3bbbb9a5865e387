package parser

import (
	"testing"
	"time"
)

func TestFixedResolver_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		field   string
		want    time.Time
		wantErr bool
	}{
		{
			name:   "default layout",
			layout: "",
			field:  "2024-12-25 14:30:00",
			want:   time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC),
		},
		{
			name:   "single digit hour",
			layout: DefaultTimestampLayout,
			field:  "2024-01-01 0:00:00",
			want:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "strftime layout",
			layout: "%Y-%m-%d %H:%M:%S",
			field:  "2024-12-25 14:30:00",
			want:   time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC),
		},
		{
			name:   "surrounding whitespace",
			layout: DefaultTimestampLayout,
			field:  " 2024-12-25 14:30:00 ",
			want:   time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC),
		},
		{
			name:    "wrong format",
			layout:  DefaultTimestampLayout,
			field:   "12/25/2024 14:30:00",
			wantErr: true,
		},
		{
			name:    "empty field",
			layout:  DefaultTimestampLayout,
			field:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFixedResolver(tt.layout)
			if err != nil {
				t.Fatalf("NewFixedResolver() error = %v", err)
			}
			got, err := r.Resolve(tt.field)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoLayout(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2006-01-02 15:04:05", "2006-01-02 15:04:05"},
		{"%Y-%m-%d %H:%M:%S", "2006-01-02 15:04:05"},
		{"%d/%m/%Y", "02/01/2006"},
	}

	for _, tt := range tests {
		got, err := GoLayout(tt.in)
		if err != nil {
			t.Fatalf("GoLayout(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("GoLayout(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewTimestampResolver(t *testing.T) {
	if _, err := NewTimestampResolver("bogus", ""); err == nil {
		t.Error("NewTimestampResolver() expected error for unknown mode")
	}

	r, err := NewTimestampResolver(TimestampModeAuto, "ignored")
	if err != nil {
		t.Fatalf("NewTimestampResolver(auto) error = %v", err)
	}
	if _, ok := r.(*AutoResolver); !ok {
		t.Errorf("auto mode returned %T", r)
	}

	r, err = NewTimestampResolver("", "")
	if err != nil {
		t.Fatalf("NewTimestampResolver(\"\") error = %v", err)
	}
	fixed, ok := r.(*FixedResolver)
	if !ok {
		t.Fatalf("empty mode returned %T, want fixed", r)
	}
	if fixed.Layout() != DefaultTimestampLayout {
		t.Errorf("Layout() = %q, want default", fixed.Layout())
	}
}

func TestAutoResolver_SameInputSameResult(t *testing.T) {
	r, err := NewTimestampResolver(TimestampModeAuto, "")
	if err != nil {
		t.Fatal(err)
	}

	first, err := r.Resolve("25-12-2024 14:30")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := r.Resolve("25-12-2024 14:30")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("Resolve() not deterministic: %v vs %v", first, second)
	}
	if _, err := r.Resolve("garbage"); err == nil {
		t.Error("Resolve(garbage) expected error")
	}
}
