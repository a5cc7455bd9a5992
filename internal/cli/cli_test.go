package cli_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/pipette/internal/cli"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeSnapshot writes a 100x50 PNG: left half #3366CC, right half #FF8800.
func writeSnapshot(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{R: 0x33, G: 0x66, B: 0xCC, A: 255}
			if x >= 50 {
				c = color.RGBA{R: 0xFF, G: 0x88, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create snapshot: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode snapshot: %v", err)
	}
	return path
}

func TestPaletteCommandList(t *testing.T) {
	out, _, err := run(t, "palette", "3366cc", "--format", "list")
	if err != nil {
		t.Fatalf("palette error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("Expected 6 palettes, got %d:\n%s", len(lines), out)
	}
	want := "Triadic: #E9EAED, #3366CC, #CC3366, #66CC33, #292C32"
	if lines[3] != want {
		t.Errorf("triadic line = %q, want %q", lines[3], want)
	}
	if !strings.HasPrefix(lines[0], "Complementary: #3366CC, ") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestPaletteCommandScheme(t *testing.T) {
	out, _, err := run(t, "palette", "#3366CC", "--scheme", "Split Complementary", "--format", "list")
	if err != nil {
		t.Fatalf("palette error: %v", err)
	}
	if !strings.HasPrefix(out, "Split Complementary: #3366CC, ") || strings.Count(out, "\n") != 1 {
		t.Errorf("output = %q", out)
	}
}

func TestPaletteCommandText(t *testing.T) {
	out, _, err := run(t, "palette", "#3366CC", "--scheme", "analogous")
	if err != nil {
		t.Fatalf("palette error: %v", err)
	}
	for _, want := range []string{"Base colour: #3366CC", "Analogous", "rgb(51, 102, 204)", "hsl(220, 60%, 50%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("ANSI codes written to a non-terminal")
	}

	out, _, err = run(t, "palette", "#3366CC", "--scheme", "analogous", "--preview")
	if err != nil {
		t.Fatalf("palette --preview error: %v", err)
	}
	if !strings.Contains(out, "\x1b[48;2;51;102;204m") {
		t.Error("--preview did not draw swatches")
	}
	if !strings.Contains(out, "Base colour: \x1b[48;2;51;102;204m\x1b[38;2;255;255;255m #3366CC ") {
		t.Errorf("--preview base colour line not labelled in a readable colour:\n%q", out)
	}
}

func TestPaletteCommandJSON(t *testing.T) {
	out, _, err := run(t, "palette", "ff8800", "--format", "json")
	if err != nil {
		t.Fatalf("palette error: %v", err)
	}
	var decoded struct {
		Base     string `json:"base"`
		Palettes []struct {
			Scheme string `json:"scheme"`
		} `json:"palettes"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if decoded.Base != "#FF8800" || len(decoded.Palettes) != 6 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestPaletteCommandErrors(t *testing.T) {
	tests := [][]string{
		{"palette", "blue"},
		{"palette", "#12345"},
		{"palette", "#123456", "--scheme", "rainbow"},
		{"palette", "#123456", "--format", "yaml"},
		{"palette"},
	}
	for _, args := range tests {
		if _, _, err := run(t, args...); err == nil {
			t.Errorf("%v succeeded, want error", args)
		}
	}
}

func TestPickCommand(t *testing.T) {
	snapshotPath := writeSnapshot(t)

	out, stderr, err := run(t, "pick", "--snapshot", snapshotPath, "--move", "10,10", "--at", "70,20", "--format", "list", "--scheme", "complementary")
	if err != nil {
		t.Fatalf("pick error: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(out, "Complementary: #FF8800, ") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(stderr, "Color #FF8800 saved! Click the extension icon.") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestPickCommandScale(t *testing.T) {
	snapshotPath := writeSnapshot(t)

	// At scale 2, CSS x=30 reads device pixel 60, in the orange half.
	out, _, err := run(t, "pick", "--snapshot", snapshotPath, "--at", "30,10", "--scale", "2", "--format", "list", "--scheme", "triadic")
	if err != nil {
		t.Fatalf("pick error: %v", err)
	}
	if !strings.Contains(out, "#FF8800") {
		t.Errorf("output = %q", out)
	}
}

func TestPickCommandCancelled(t *testing.T) {
	snapshotPath := writeSnapshot(t)

	for _, args := range [][]string{
		{"pick", "--snapshot", snapshotPath, "--escape"},
		{"pick", "--snapshot", snapshotPath, "--at", "500,500"},
	} {
		out, _, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v error: %v", args, err)
		}
		if strings.TrimSpace(out) != "Picking cancelled" {
			t.Errorf("%v output = %q", args, out)
		}
	}
}

func TestPickCommandErrors(t *testing.T) {
	snapshotPath := writeSnapshot(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing snapshot flag", args: []string{"pick", "--at", "1,1"}},
		{name: "missing click", args: []string{"pick", "--snapshot", snapshotPath}},
		{name: "bad point", args: []string{"pick", "--snapshot", snapshotPath, "--at", "1;1"}},
		{name: "bad viewport", args: []string{"pick", "--snapshot", snapshotPath, "--at", "1,1", "--viewport", "big"}},
		{name: "missing file", args: []string{"pick", "--snapshot", filepath.Join(t.TempDir(), "none.png"), "--at", "1,1"}},
		{name: "restricted page", args: []string{"pick", "--url", "about:blank", "--snapshot", snapshotPath, "--at", "1,1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(t, tt.args...); err == nil {
				t.Error("pick succeeded, want error")
			}
		})
	}
}

func TestPickCommandRejectsNonImageSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.txt")
	if err := os.WriteFile(path, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := run(t, "pick", "--snapshot", path, "--at", "1,1")
	if err == nil || !strings.Contains(err.Error(), "invalid snapshot") {
		t.Errorf("pick error = %v, want snapshot validation failure", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "pipette version ") {
		t.Errorf("output = %q", out)
	}
}
