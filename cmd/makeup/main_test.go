package main

import (
	"bytes"
	"testing"
)

// execute runs the command tree with args and returns its standard output.
func execute(tb testing.TB, args ...string) (string, error) {
	tb.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCheck(t *testing.T) {
	t.Run("Makable", func(t *testing.T) {
		out, err := execute(t, "check", "-f", "0x55", "-f", "0x33", "-f", "0x0f", "0b101")
		if err != nil {
			t.Fatal(err)
		} else if out != "00000101: makable\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
	t.Run("NotMakable", func(t *testing.T) {
		out, err := execute(t, "check", "-f", "0b100", "-f", "0b011", "-f", "0b000", "-f", "0b111", "0b101")
		if err != errFailed {
			t.Fatalf("unexpected error: %v", err)
		} else if out != "00000101: not makable\n\t00000011\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
	t.Run("ErrNoTargets", func(t *testing.T) {
		if _, err := execute(t, "check", "-f", "0x55"); err == nil || err.Error() != "at least one target required" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrWidth", func(t *testing.T) {
		if _, err := execute(t, "check", "--width", "12", "1"); err == nil || err.Error() != "invalid width: 12" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestMake(t *testing.T) {
	t.Run("Recursive", func(t *testing.T) {
		out, err := execute(t, "make", "-f", "0x55", "-f", "0x33", "-f", "0x0f", "0b101")
		if err != nil {
			t.Fatal(err)
		} else if out != "00000101: 0 and(00001111, 01010101)\n\t(15 & 85)\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
	t.Run("Problem", func(t *testing.T) {
		out, err := execute(t, "make", "--problem", "../../testdata/unmakable.yaml")
		if err != errFailed {
			t.Fatalf("unexpected error: %v", err)
		} else if out != "00000101: unreachable\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
	t.Run("StepLimit", func(t *testing.T) {
		out, err := execute(t, "make", "--max-steps", "1", "-f", "0x55", "-f", "0x33", "-f", "0x0f", "0b10000")
		if err != errFailed {
			t.Fatalf("unexpected error: %v", err)
		} else if out != "00010000: step limit exceeded\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
	t.Run("ProblemMaxSteps", func(t *testing.T) {
		out, err := execute(t, "make", "--problem", "../../testdata/scenario.yaml", "--max-steps", "1")
		if err != errFailed {
			t.Fatalf("unexpected error: %v", err)
		} else if out != "00000101: step limit exceeded\n00010000: step limit exceeded\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
	t.Run("ProblemOverrides", func(t *testing.T) {
		out, err := execute(t, "make", "--problem", "../../testdata/unmakable.yaml",
			"-f", "0b100", "-f", "0b001", "--strategy", "recursive")
		if err != nil {
			t.Fatal(err)
		} else if out != "00000101: 0 or(00000001, 00000100)\n\t(1 | 4)\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
	t.Run("Wide", func(t *testing.T) {
		out, err := execute(t, "make", "--problem", "../../testdata/wide.yaml")
		if err != nil {
			t.Fatal(err)
		} else if out != "0001000100010001: 0 and(0011001100110011, 0101010101010101)\n\t(13107 & 21845)\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})
}

func TestTable(t *testing.T) {
	out, err := execute(t, "table", "-f", "0xf0", "-f", "0xcc", "0xcc")
	if err != nil {
		t.Fatal(err)
	} else if out != "11001100\t0 exist\n11110000\t0 exist\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTable_Derived(t *testing.T) {
	out, err := execute(t, "table", "-f", "0xf0", "-f", "0xcc", "0x0f")
	if err != nil {
		t.Fatal(err)
	} else if out != "00001111\t1 not(11110000)\n"+
		"11000000\t0 and(11001100, 11110000)\n"+
		"11001100\t0 exist\n"+
		"11110000\t0 exist\n"+
		"11111100\t0 or(11001100, 11110000)\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}
