package gstat

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestStashCount(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log := filepath.Join(dir, "stash")
	writeFile(t, log, "a b c\n\nd e f\ng h i\n")

	if got := StashCount(log); got != 3 {
		t.Fatalf("StashCount = %d, want 3", got)
	}
	if got := StashCount(filepath.Join(dir, "missing")); got != 0 {
		t.Fatalf("StashCount(missing) = %d, want 0", got)
	}
}

func TestMergeInProgress(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	marker := filepath.Join(dir, "MERGE_HEAD")
	if MergeInProgress(marker) {
		t.Fatal("expected no merge")
	}
	writeFile(t, marker, "deadbeef\n")
	if !MergeInProgress(marker) {
		t.Fatal("expected merge in progress")
	}
}

func TestReadRebaseProgress(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "rebase-apply")
	got, err := ReadRebaseProgress(dir)
	if err != nil {
		t.Fatalf("ReadRebaseProgress: %v", err)
	}
	if got.Active() || got.String() != "0" {
		t.Fatalf("missing dir: got %+v (%q)", got, got.String())
	}

	writeFile(t, filepath.Join(dir, "next"), "2\n")
	got, err = ReadRebaseProgress(dir)
	if err != nil {
		t.Fatalf("ReadRebaseProgress: %v", err)
	}
	if got.Active() {
		t.Fatalf("only next present: got %+v", got)
	}

	writeFile(t, filepath.Join(dir, "last"), "5\n")
	got, err = ReadRebaseProgress(dir)
	if err != nil {
		t.Fatalf("ReadRebaseProgress: %v", err)
	}
	if got.String() != "2/5" {
		t.Fatalf("progress = %q, want 2/5", got.String())
	}
}

func TestReadRebaseMergeProgress(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "rebase-merge")
	writeFile(t, filepath.Join(dir, "msgnum"), "3\n")
	writeFile(t, filepath.Join(dir, "end"), "7\n")

	got, err := ReadRebaseMergeProgress(dir)
	if err != nil {
		t.Fatalf("ReadRebaseMergeProgress: %v", err)
	}
	if got != (RebaseProgress{Current: 3, Total: 7}) {
		t.Fatalf("progress = %+v", got)
	}
}

func TestReadRebaseProgress_BadCounter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "next"), "two\n")
	writeFile(t, filepath.Join(dir, "last"), "5\n")

	if _, err := ReadRebaseProgress(dir); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestReadRebaseProgress_EmptyCounter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		next string
		last string
	}{
		{name: "empty_next", next: "", last: "5\n"},
		{name: "empty_last", next: "2\n", last: ""},
		{name: "blank_next", next: "\n", last: "5\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "next"), tt.next)
			writeFile(t, filepath.Join(dir, "last"), tt.last)

			got, err := ReadRebaseProgress(dir)
			if err != nil {
				t.Fatalf("ReadRebaseProgress: %v", err)
			}
			if got.Active() || got.String() != "0" {
				t.Fatalf("progress = %+v (%q), want inactive", got, got.String())
			}
		})
	}
}
