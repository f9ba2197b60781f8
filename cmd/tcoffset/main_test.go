package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMetaEdit answers like bwfmetaedit for 48 kHz files at 96000 samples.
// Files named *broken* cannot be read.
const fakeMetaEdit = `#!/bin/sh
case "$1" in
  --version) echo "BWF MetaEdit 23.04" ;;
  --out-core)
    case "$2" in
      *broken*) echo "cannot open $2" >&2; exit 1 ;;
      *) printf 'FileName,Description,Originator,TimeReference\n"%s","",ACME,96000\n' "$2" ;;
    esac
    ;;
  --out-tech) printf 'FileName,Channels,SampleRate\n"%s",2,48000\n' "$2" ;;
  --Timereference=*) echo "$1 $2" >> "$FAKE_BWF_LOG" ;;
  *) exit 2 ;;
esac
`

// setup points the config at a fake tool and returns a folder for WAV files
// and the path of the write log.
func setup(t *testing.T, toolScript string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake bwfmetaedit is a shell script")
	}

	base := t.TempDir()
	bin := filepath.Join(base, "bwfmetaedit")
	require.NoError(t, os.WriteFile(bin, []byte(toolScript), 0755))

	logPath := filepath.Join(base, "writes.log")
	t.Setenv("FAKE_BWF_LOG", logPath)
	t.Setenv("TCTOOL_BATCH_TOOL_PATH", bin)
	t.Setenv("TCTOOL_LOGGING_LEVEL", "error")

	wavs := filepath.Join(base, "wavs")
	require.NoError(t, os.Mkdir(wavs, 0755))
	return wavs, logPath
}

func addWAV(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0644))
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"missing dir", nil, 2, "Usage: tcoffset"},
		{"bad rate", []string{"-dir", ".", "-rate", "fast"}, 2, `Invalid -rate "fast"`},
		{"rate above ceiling", []string{"-dir", ".", "-rate", "1001"}, 2, "exceeds 1000 fps"},
		{"unknown flag", []string{"-frames", "3"}, 2, "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI("-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "tcoffset")
}

func TestRun_MissingTool(t *testing.T) {
	t.Setenv("TCTOOL_BATCH_TOOL_PATH", filepath.Join(t.TempDir(), "no-such-tool"))
	t.Setenv("TCTOOL_LOGGING_LEVEL", "error")

	code, _, _ := runCLI("-dir", t.TempDir(), "-offset", "10")
	assert.Equal(t, 1, code)
}

func TestRun_PreflightFails(t *testing.T) {
	dir, _ := setup(t, "#!/bin/sh\necho \"ffmpeg version 6.0\"\n")
	addWAV(t, dir, "take1.wav")

	code, stdout, _ := runCLI("-dir", dir, "-offset", "10")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout, "no file is touched when the tool is wrong")
}

func TestRun_NoFiles(t *testing.T) {
	dir, _ := setup(t, fakeMetaEdit)

	code, stdout, _ := runCLI("-dir", dir, "-offset", "10")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "No WAV files in "+dir)
}

func TestRun_Offsets(t *testing.T) {
	dir, logPath := setup(t, fakeMetaEdit)
	addWAV(t, dir, "take1.wav")

	code, stdout, _ := runCLI("-dir", dir, "-offset", "146", "-rate", "24")
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "✓ take1.wav  00:00:02:00 -> 00:00:08:02  [96000 -> 388000]")
	assert.Contains(t, stdout, "1 succeeded, 0 failed, 0 skipped")

	writes, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(writes), "--Timereference=388000")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dir, logPath := setup(t, fakeMetaEdit)
	addWAV(t, dir, "take1.wav")

	code, stdout, _ := runCLI("-dir", dir, "-offset", "146", "-rate", "24", "-dry-run")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "(dry run, nothing written)")
	assert.NoFileExists(t, logPath)
}

func TestRun_FailedFileExitsNonZero(t *testing.T) {
	dir, _ := setup(t, fakeMetaEdit)
	addWAV(t, dir, "take1.wav")
	addWAV(t, dir, "broken.wav")

	code, stdout, _ := runCLI("-dir", dir, "-offset", "1", "-rate", "24")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "✗ broken.wav")
	assert.Contains(t, stdout, "1 succeeded, 1 failed, 0 skipped")
}
