package service

import (
	"testing"
	"time"
)

func TestDefaultGrid(t *testing.T) {
	g := DefaultGrid()
	times := g.Times()

	if len(times) != 27 || g.Size() != 27 {
		t.Fatalf("slots = %d (size %d), want 27", len(times), g.Size())
	}
	if times[0] != "09:00" || times[1] != "09:20" || times[26] != "17:40" {
		t.Errorf("times = %v", times)
	}

	seen := map[string]bool{}
	for _, tm := range times {
		if seen[tm] {
			t.Errorf("duplicate slot time %s", tm)
		}
		seen[tm] = true
	}
}

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		step    int
		want    int
		wantErr bool
	}{
		{name: "default", start: "09:00", end: "18:00", step: 20, want: 27},
		{name: "half hours", start: "08:30", end: "12:00", step: 30, want: 7},
		{name: "uneven tail", start: "09:00", end: "10:00", step: 25, want: 3},
		{name: "end before start", start: "18:00", end: "09:00", step: 20, wantErr: true},
		{name: "zero step", start: "09:00", end: "18:00", step: 0, wantErr: true},
		{name: "bad clock", start: "9am", end: "18:00", step: 20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.start, tt.end, tt.step)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGrid() error = %v", err)
			}
			if len(g.Times()) != tt.want || g.Size() != tt.want {
				t.Errorf("slots = %d (size %d), want %d", len(g.Times()), g.Size(), tt.want)
			}
		})
	}
}

func TestGrid_Contains(t *testing.T) {
	g := DefaultGrid()
	for in, want := range map[string]bool{
		"09:00": true,
		"10:00": true,
		"17:40": true,
		"10:10": false,
		"18:00": false,
		"08:40": false,
		"xx":    false,
	} {
		if got := g.Contains(in); got != want {
			t.Errorf("Contains(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGrid_Build(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	slots := DefaultGrid().Build("2025-06-10", now)
	for _, s := range slots {
		if s.Date != "2025-06-10" || s.Status != "open" || !s.CreatedAt.Equal(now) {
			t.Fatalf("unexpected slot %+v", s)
		}
	}
}
